// Package payload loads request envelopes from disk and provides the
// model-specific payload builders as plain data functions. The loader is
// fail-fast: missing configuration, unreadable files and malformed JSON all
// abort before any network call is attempted. No retries, no substituted
// defaults.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
)

// ErrNoRequestFile is returned when no input path is configured. It is a
// configuration error, not an I/O error: the process must halt before
// dispatching.
var ErrNoRequestFile = errors.New("no request file configured")

const resultsSuffix = "_results.json"

// Load reads and validates the request envelope at path. The file must hold a
// single well-formed JSON value (object, array or primitive); the content is
// returned verbatim so the remote API sees exactly what the operator wrote.
func Load(path string) (dispatch.Envelope, error) {
	if path == "" {
		return nil, ErrNoRequestFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("payload: read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("payload: parse %s: not valid JSON", path)
	}
	return dispatch.Envelope(data), nil
}

// ResultsPath derives the companion output path for a one-shot run:
// "req.json" becomes "req_results.json". Inputs without the .json extension
// get the suffix appended whole, so the result file is always identifiable.
func ResultsPath(path string) string {
	if base, found := strings.CutSuffix(path, ".json"); found {
		return base + resultsSuffix
	}
	return path + resultsSuffix
}
