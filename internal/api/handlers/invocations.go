package handlers

import (
	"net/http"
	"time"

	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
)

// InvocationsHandler serves the invocation log.
type InvocationsHandler struct {
	recorder *audit.Recorder
}

func NewInvocationsHandler(recorder *audit.Recorder) *InvocationsHandler {
	return &InvocationsHandler{recorder: recorder}
}

type invocationResponse struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	Endpoint   string `json:"endpoint"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
	CreatedAt  string `json:"createdAt"`
}

// List handles GET /api/invocations.
func (h *InvocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.recorder.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list invocations")
		return
	}

	out := make([]invocationResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, invocationResponse{
			ID:         e.ID,
			Mode:       string(e.Mode),
			Endpoint:   e.Endpoint,
			Outcome:    e.Outcome,
			Error:      e.Error,
			DurationMs: e.Duration.Milliseconds(),
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out, "meta": map[string]int{"total": len(out)}})
}
