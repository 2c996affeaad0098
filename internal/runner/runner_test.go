package runner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/domain/payload"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
)

func testConfig(baseURL string) dispatch.EndpointConfig {
	return dispatch.EndpointConfig{
		BaseURL:      baseURL,
		TenantName:   "presales",
		SyntheticKey: "test-key",
	}
}

func writeRequest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "req.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunOnce_WritesSuccessResultFile(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	reqPath := writeRequest(t, `{"a":1}`)
	outPath, res, err := RunOnce(context.Background(), dispatch.New(testConfig(backend.URL)), reqPath, nil)
	if err != nil {
		t.Fatalf("RunOnce error = %v", err)
	}
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if want := payload.ResultsPath(reqPath); outPath != want {
		t.Errorf("output path = %q; want %q", outPath, want)
	}
	if string(gotBody) != `{"a":1}` {
		t.Errorf("backend received %q; want request file verbatim", gotBody)
	}

	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read results file: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(written, &decoded); err != nil {
		t.Fatalf("results file is not JSON: %v", err)
	}
	if decoded["status"] != "success" {
		t.Errorf("status = %v", decoded["status"])
	}
	body, ok := decoded["body"].(map[string]any)
	if !ok || body["ok"] != true {
		t.Errorf("body = %v", decoded["body"])
	}

	// Pretty form: indented, keys sorted, trailing newline.
	text := string(written)
	if !strings.HasPrefix(text, "{\n    ") {
		t.Errorf("results file not indented: %q", text[:min(len(text), 20)])
	}
	if strings.Index(text, `"body"`) > strings.Index(text, `"status"`) {
		t.Error("keys not sorted")
	}
	if !strings.HasSuffix(text, "\n") {
		t.Error("missing trailing newline")
	}
}

func TestRunOnce_WritesFailureResultFile(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tenant unknown", http.StatusForbidden)
	}))
	defer backend.Close()

	reqPath := writeRequest(t, `{"a":1}`)
	outPath, res, err := RunOnce(context.Background(), dispatch.New(testConfig(backend.URL)), reqPath, nil)
	if err != nil {
		t.Fatalf("RunOnce error = %v; remote failure must still complete", err)
	}
	if res.OK() {
		t.Fatal("result reported success for a 403")
	}

	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(written, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["status"] != "failure" {
		t.Errorf("status = %v", decoded["status"])
	}
	errText, _ := decoded["error"].(string)
	if !strings.Contains(errText, "403") || !strings.Contains(errText, "tenant unknown") {
		t.Errorf("error = %q", errText)
	}
}

func TestRunOnce_MissingRequestFilePath(t *testing.T) {
	t.Parallel()

	_, _, err := RunOnce(context.Background(), dispatch.New(testConfig("http://unused.invalid")), "", nil)
	if !errors.Is(err, payload.ErrNoRequestFile) {
		t.Errorf("error = %v; want ErrNoRequestFile", err)
	}
}

func TestRunOnce_PublishesAuditEvent(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	bus := eventbus.New()
	events := bus.Subscribe(audit.TopicInvocationCompleted)

	reqPath := writeRequest(t, `{}`)
	if _, _, err := RunOnce(context.Background(), dispatch.New(testConfig(backend.URL)), reqPath, bus); err != nil {
		t.Fatalf("RunOnce error = %v", err)
	}

	select {
	case evt := <-events:
		entry, ok := evt.Payload.(audit.Entry)
		if !ok {
			t.Fatalf("payload type %T", evt.Payload)
		}
		if entry.Mode != audit.ModeRunOnce || entry.Outcome != "success" {
			t.Errorf("audit entry = %+v", entry)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event published")
	}
}
