package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	State   http.HandlerFunc
	Refresh http.HandlerFunc
	WS      http.HandlerFunc
	Health  http.HandlerFunc
	Metrics http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.State != nil {
		mux.Handle("/api/dashboard", method(http.MethodGet, routes.State))
	}
	if routes.Refresh != nil {
		mux.Handle("/api/dashboard/refresh", method(http.MethodPost, routes.Refresh))
	}
	if routes.WS != nil {
		mux.Handle("/ws", method(http.MethodGet, routes.WS))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, routes.Metrics.ServeHTTP))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
