package server

import (
	"net/http"
)

// BasicRouter is a minimal [Router] backed by [http.ServeMux].
//
// Method filtering relies on the ServeMux "METHOD /path" patterns, so a path registered for GET answers other
// methods with 405.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends to the middleware stack. Only routes registered afterwards are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method and path, wrapped with the current middleware.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(method+" "+path, r.Apply(handler))
}

// Handler registers every route of h as a GET route.
func (r *BasicRouter) Handler(h Handler) {
	for _, route := range h.Routes() {
		r.Handle(http.MethodGet, route, h)
	}
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler so the first middleware added is the outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
