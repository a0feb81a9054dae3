package middleware

import (
	"context"
	"time"

	"github.com/questx-lab/discord-exporter/internal/common"
	"github.com/questx-lab/discord-exporter/pkg/router"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
)

// Prometheus records request count and duration per method and path.
func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return
		}

		status := "ok"
		if xcontext.Error(ctx) != nil {
			status = "error"
		}

		common.PromCounters["http_request_total"].
			WithLabelValues(req.Method, req.URL.Path, status).Inc()
		common.PromHistograms["http_request_duration_seconds"].
			WithLabelValues(req.Method, req.URL.Path).
			Observe(time.Since(xcontext.StartTime(ctx)).Seconds())
	}
}
