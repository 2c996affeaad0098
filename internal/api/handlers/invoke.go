package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/domain/payload"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
)

// InvokeHandler serves the invocation endpoints of the demo gateway.
type InvokeHandler struct {
	dispatcher *dispatch.Dispatcher
	bus        eventbus.EventBus
}

// NewInvokeHandler returns an InvokeHandler. bus may be nil.
func NewInvokeHandler(d *dispatch.Dispatcher, bus eventbus.EventBus) *InvokeHandler {
	return &InvokeHandler{dispatcher: d, bus: bus}
}

type invokeRequest struct {
	Endpoint string            `json:"endpoint,omitempty"`
	Method   string            `json:"method,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Body     json.RawMessage   `json:"body,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Invoke handles POST /api/invoke: one dispatch against the remote API.
// The HTTP status is always 200 for a completed dispatch; the tagged result
// carries the remote outcome.
func (h *InvokeHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Body) > 0 && !json.Valid(req.Body) {
		writeError(w, http.StatusBadRequest, "body must be valid JSON")
		return
	}

	h.dispatchAndRespond(w, r, dispatch.CallRequest{
		Endpoint: req.Endpoint,
		Method:   req.Method,
		Params:   req.Params,
		Body:     dispatch.Envelope(req.Body),
		Headers:  req.Headers,
	})
}

type scenarioResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListScenarios handles GET /api/scenarios.
func (h *InvokeHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := payload.Scenarios()
	out := make([]scenarioResponse, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, scenarioResponse{Name: s.Name, Description: s.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out, "meta": map[string]int{"total": len(out)}})
}

// RunScenario handles POST /api/scenarios/{name}/run: build the predefined
// envelope and dispatch it.
func (h *InvokeHandler) RunScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	scenario, ok := payload.ScenarioByName(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown scenario")
		return
	}

	env, err := scenario.Build()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build scenario payload")
		return
	}
	h.dispatchAndRespond(w, r, dispatch.CallRequest{Body: env})
}

func (h *InvokeHandler) dispatchAndRespond(w http.ResponseWriter, r *http.Request, call dispatch.CallRequest) {
	start := time.Now()
	res := h.dispatcher.Dispatch(r.Context(), call)
	if h.bus != nil {
		endpoint := call.Endpoint
		if endpoint == "" {
			endpoint = h.dispatcher.Config().BaseURL
		}
		h.bus.Publish(audit.TopicInvocationCompleted,
			audit.NewEntry(audit.ModeGateway, endpoint, res, time.Since(start)))
	}
	writeJSON(w, http.StatusOK, res)
}
