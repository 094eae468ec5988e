package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Ingest  http.HandlerFunc
	Query   http.HandlerFunc
	Health  http.HandlerFunc
	Metrics http.Handler
	Static  http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Ingest != nil {
		mux.Handle("/data", method(http.MethodPost, routes.Ingest))
	}
	if routes.Query != nil {
		mux.Handle("/api/data", method(http.MethodGet, routes.Query))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, routes.Metrics.ServeHTTP))
	}
	if routes.Static != nil {
		mux.Handle("/public/", http.StripPrefix("/public/", routes.Static))
		mux.Handle("/", method(http.MethodGet, routes.Static.ServeHTTP))
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
