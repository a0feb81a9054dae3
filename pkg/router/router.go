package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/questx-lab/discord-exporter/pkg/errorx"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

type MiddlewareFunc func(ctx context.Context) (context.Context, error)

type CloserFunc func(ctx context.Context)

// RawHandlerFunc serves endpoints whose response is not a json object, such
// as the prometheus exposition or the rss feed.
type RawHandlerFunc func(ctx context.Context, w http.ResponseWriter, req *http.Request)

type Router struct {
	mux     *http.ServeMux
	baseCtx context.Context

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	return &Router{mux: http.NewServeMux(), baseCtx: ctx}
}

// Branch returns a router sharing the same mux but with an independent copy
// of the middleware chain.
func (r *Router) Branch() *Router {
	return &Router{
		mux:     r.mux,
		baseCtx: r.baseCtx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]MiddlewareFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Handler() http.Handler {
	return cors.AllowAll().Handler(r.mux)
}

func GET[Request, Response any](router *Router, pattern string, handler HandlerFunc[Request, Response]) {
	router.mux.HandleFunc(pattern, router.handle(http.MethodGet,
		func(ctx context.Context) (any, error) {
			var req Request
			if err := parseQuery(xcontext.HTTPRequest(ctx), &req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot parse query: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Cannot parse the request")
			}

			return handler(ctx, &req)
		}))
}

func POST[Request, Response any](router *Router, pattern string, handler HandlerFunc[Request, Response]) {
	router.mux.HandleFunc(pattern, router.handle(http.MethodPost,
		func(ctx context.Context) (any, error) {
			var req Request
			if err := json.NewDecoder(xcontext.HTTPRequest(ctx).Body).Decode(&req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot parse body: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Cannot parse the request")
			}

			return handler(ctx, &req)
		}))
}

func (r *Router) GETRaw(pattern string, handler RawHandlerFunc) {
	befores := r.befores
	afters := r.afters
	closers := r.closers

	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.newRequestContext(w, req)
		defer func() {
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		var err error
		for _, middleware := range befores {
			if ctx, err = middleware(ctx); err != nil {
				writeError(ctx, w, err)
				return
			}
		}

		handler(ctx, w, req)

		for _, middleware := range afters {
			if ctx, err = middleware(ctx); err != nil {
				return
			}
		}
	})
}

func (r *Router) handle(method string, fn func(ctx context.Context) (any, error)) http.HandlerFunc {
	befores := r.befores
	afters := r.afters
	closers := r.closers

	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.newRequestContext(w, req)
		defer func() {
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		var err error
		for _, middleware := range befores {
			if ctx, err = middleware(ctx); err != nil {
				ctx = xcontext.WithError(ctx, err)
				writeError(ctx, w, err)
				return
			}
		}

		resp, err := fn(ctx)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, w, err)
		} else {
			ctx = xcontext.WithResponse(ctx, resp)
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot encode the response: %v", err)
			}
		}

		for _, middleware := range afters {
			if ctx, err = middleware(ctx); err != nil {
				return
			}
		}
	}
}

// newRequestContext carries the request cancellation but resolves values from
// the server base context first, so handlers can reach configs and logger.
func (r *Router) newRequestContext(w http.ResponseWriter, req *http.Request) context.Context {
	ctx := context.Context(requestContext{Context: req.Context(), values: r.baseCtx})
	ctx = xcontext.WithHTTPRequest(ctx, req)
	ctx = xcontext.WithHTTPWriter(ctx, w)
	ctx = xcontext.WithStartTime(ctx, time.Now())
	return ctx
}

type requestContext struct {
	context.Context
	values context.Context
}

func (c requestContext) Value(key any) any {
	if v := c.values.Value(key); v != nil {
		return v
	}

	return c.Context.Value(key)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	errx, ok := err.(errorx.Error)
	if !ok {
		errx = errorx.Unknown
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusOf(errx.Code))
	if err := json.NewEncoder(w).Encode(map[string]any{
		"code":    errx.Code,
		"message": errx.Message,
	}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode the error response: %v", err)
	}
}

func statusOf(code errorx.Code) int {
	switch code {
	case errorx.BadRequest:
		return http.StatusBadRequest
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
