// Package api wires the demo gateway routes onto a chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cosmosolder/sparkbridge/internal/api/handlers"
	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
)

// NewRouter creates the gateway router. bus and recorder may be nil when
// auditing is disabled; the invocation log route is only mounted when a
// recorder exists.
func NewRouter(d *dispatch.Dispatcher, bus eventbus.EventBus, recorder *audit.Recorder) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check — used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	invokeHandler := handlers.NewInvokeHandler(d, bus)
	r.Route("/api", func(r chi.Router) {
		r.Post("/invoke", invokeHandler.Invoke)                     // POST /api/invoke
		r.Get("/scenarios", invokeHandler.ListScenarios)           // GET /api/scenarios
		r.Post("/scenarios/{name}/run", invokeHandler.RunScenario) // POST /api/scenarios/{name}/run

		if recorder != nil {
			invocationsHandler := handlers.NewInvocationsHandler(recorder)
			r.Get("/invocations", invocationsHandler.List) // GET /api/invocations
		}
	})

	return r
}
