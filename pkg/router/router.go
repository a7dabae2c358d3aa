package router

import (
	"context"
	"net/http"
	"time"

	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(context.Context, *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It may return a new context to replace the current one,
// or nil to keep it. Returning an error stops the chain and the error is sent to client.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc always runs at the end of a request, after the handler and even if a middleware failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	root   context.Context
	engine *gin.Engine

	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(root context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{
		root:    root,
		engine:  engine,
		closers: []CloserFunc{handleResponse()},
	}
}

// Branch creates a child router sharing the same engine. Middlewares added to the child don't
// affect the parent.
func (r *Router) Branch() *Router {
	return &Router{
		root:    r.root,
		engine:  r.engine,
		befores: append([]MiddlewareFunc{}, r.befores...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

// AddCloser registers a closer. Closers run in reverse order of registration, so the response
// writer registered by New always runs last.
func (r *Router) AddCloser(c CloserFunc) {
	r.closers = append(r.closers, c)
}

func (r *Router) Handle(method, pattern string, h http.Handler) {
	r.engine.Handle(method, pattern, gin.WrapH(h))
}

func (r *Router) Handler(allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r.engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.GET(pattern, wrap(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.POST(pattern, wrap(r, http.MethodPost, handler))
}

func wrap[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	befores := append([]MiddlewareFunc{}, r.befores...)
	closers := append([]CloserFunc{}, r.closers...)

	return func(c *gin.Context) {
		var ctx context.Context = requestContext{Context: c.Request.Context(), values: r.root}
		ctx = xcontext.WithHTTPRequest(ctx, c.Request)
		ctx = xcontext.WithHTTPWriter(ctx, c.Writer)
		ctx = xcontext.WithStartTime(ctx, time.Now())

		defer func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i](ctx)
			}
		}()

		for _, before := range befores {
			newCtx, err := before(ctx)
			if err != nil {
				ctx = xcontext.WithError(ctx, err)
				return
			}

			if newCtx != nil {
				ctx = newCtx
			}
		}

		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = c.ShouldBindQuery(&req)
		case http.MethodPost:
			if c.Request.ContentLength != 0 {
				err = c.ShouldBindJSON(&req)
			}
		}

		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		ctx = xcontext.WithResponse(ctx, resp)
	}
}
