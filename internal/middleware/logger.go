package middleware

import (
	"context"
	"time"

	"github.com/questx-lab/discord-exporter/pkg/router"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
)

// Logger writes one line per request once the handler finished.
func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return
		}

		elapsed := time.Since(xcontext.StartTime(ctx))
		if err := xcontext.Error(ctx); err != nil {
			xcontext.Logger(ctx).Warnf("%s %s failed after %s: %v",
				req.Method, req.URL.Path, elapsed, err)
			return
		}

		xcontext.Logger(ctx).Infof("%s %s done in %s", req.Method, req.URL.Path, elapsed)
	}
}
