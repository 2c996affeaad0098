// Package runner implements the one-shot mode: read a request file, dispatch
// it once, and write the tagged result next to the input.
package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/domain/payload"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
)

// RunOnce loads the envelope at requestFile, dispatches it to the configured
// endpoint, and writes the pretty-printed tagged result to the derived
// results path. A remote failure is still a completed run: the failure variant
// is written to the file and err stays nil. err is reserved for local
// problems — unreadable input, unwritable output.
//
// bus may be nil when auditing is disabled.
func RunOnce(ctx context.Context, d *dispatch.Dispatcher, requestFile string, bus eventbus.EventBus) (string, dispatch.Result, error) {
	env, err := payload.Load(requestFile)
	if err != nil {
		return "", dispatch.Result{}, err
	}

	start := time.Now()
	res := d.Dispatch(ctx, dispatch.CallRequest{Body: env})
	if bus != nil {
		bus.Publish(audit.TopicInvocationCompleted,
			audit.NewEntry(audit.ModeRunOnce, d.Config().BaseURL, res, time.Since(start)))
	}

	pretty, err := res.Pretty()
	if err != nil {
		return "", res, fmt.Errorf("runner: encode result: %w", err)
	}

	outPath := payload.ResultsPath(requestFile)
	if err := os.WriteFile(outPath, append(pretty, '\n'), 0o644); err != nil {
		return "", res, fmt.Errorf("runner: write results: %w", err)
	}
	return outPath, res, nil
}
