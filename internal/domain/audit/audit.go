// Package audit records completed invocations in the optional SQLite log.
// Recording is best-effort and decoupled from the call path: dispatch sites
// publish entries on the event bus and a Recorder goroutine persists them.
package audit

import (
	"time"

	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/pkg/uuid"
)

// TopicInvocationCompleted is the event bus topic entries are published on.
const TopicInvocationCompleted = "invocation.completed"

// Mode identifies which surface performed the invocation.
type Mode string

const (
	ModeRunOnce Mode = "run_once"
	ModeTool    Mode = "tool"
	ModeGateway Mode = "gateway"
)

// Entry is one row of the invocation log.
type Entry struct {
	ID        string
	Mode      Mode
	Endpoint  string
	Outcome   string // "success" or "failure"
	Error     string // empty on success
	Duration  time.Duration
	CreatedAt time.Time
}

// NewEntry builds an Entry from a finished dispatch.
func NewEntry(mode Mode, endpoint string, res dispatch.Result, elapsed time.Duration) Entry {
	e := Entry{
		ID:        uuid.NewV7().String(),
		Mode:      mode,
		Endpoint:  endpoint,
		Outcome:   "failure",
		Duration:  elapsed,
		CreatedAt: time.Now().UTC(),
	}
	if res.OK() {
		e.Outcome = "success"
	} else {
		e.Error = res.ErrorMessage()
	}
	return e
}
