package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes groups handlers.
type Routes struct {
	ChargePoints     http.HandlerFunc
	Connectors       http.HandlerFunc
	Transactions     http.HandlerFunc
	Availability     http.HandlerFunc
	LoadOptimization http.HandlerFunc
	Passthrough      func(path string) http.HandlerFunc
	SystemUsage      http.HandlerFunc
	Health           http.HandlerFunc
	Metrics          http.Handler

	// Instrument wraps every API route when set.
	Instrument func(route string, handler http.Handler) http.Handler
}

// passthroughPaths are ML endpoints forwarded without parameters.
var passthroughPaths = []string{"/predict/maintenance", "/analytics/users", "/health/score"}

// NewRouter registers GET endpoints. Known paths with another method get 405.
func NewRouter(routes Routes) http.Handler {
	r := mux.NewRouter()
	handle := func(path string, h http.HandlerFunc) {
		if h == nil {
			return
		}
		var handler http.Handler = h
		if routes.Instrument != nil {
			handler = routes.Instrument(path, handler)
		}
		r.Handle(path, handler).Methods(http.MethodGet)
	}

	handle("/cps", routes.ChargePoints)
	handle("/connectors/{cp_id}", routes.Connectors)
	handle("/transactions", routes.Transactions)
	handle("/predict/availability", routes.Availability)
	handle("/optimize/load", routes.LoadOptimization)
	handle("/system/usage", routes.SystemUsage)
	if routes.Passthrough != nil {
		for _, path := range passthroughPaths {
			handle(path, routes.Passthrough(path))
		}
	}

	if routes.Health != nil {
		r.Handle("/health", routes.Health).Methods(http.MethodGet)
	}
	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics).Methods(http.MethodGet)
	}
	return r
}
