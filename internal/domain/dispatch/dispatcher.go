// Package dispatch implements the request dispatcher: it forwards opaque JSON
// envelopes to the remote calculation API and folds every outcome — transport
// failure, non-2xx status, unparseable body — into a single tagged Result.
// Retries are deliberately absent; the remote execute operation has
// unspecified idempotency semantics, so retry policy belongs to the caller.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	mimeJSON           = "application/json"
	headerContentType  = "Content-Type"
	headerTenantName   = "x-tenant-name"
	headerSyntheticKey = "x-synthetic-key"

	// CallTimeout bounds one whole dispatch, connect through body read.
	CallTimeout = 60 * time.Second
)

// EndpointConfig identifies and authenticates against the remote API. It is
// constructed once at startup and treated as immutable; the Dispatcher copies
// it by value and never mutates it.
type EndpointConfig struct {
	BaseURL      string
	TenantName   string
	SyntheticKey string
}

// Validate rejects an EndpointConfig with any empty field. Absence of any of
// the three values is a fatal startup error, not a per-call failure.
func (c EndpointConfig) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "base URL")
	}
	if c.TenantName == "" {
		missing = append(missing, "tenant name")
	}
	if c.SyntheticKey == "" {
		missing = append(missing, "synthetic key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("endpoint config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// CallRequest describes one invocation. All fields except Body are optional:
// Endpoint defaults to the configured base URL, Method to POST, and Headers
// are overrides merged on top of the configured defaults (caller wins).
type CallRequest struct {
	Endpoint string
	Method   string
	Params   map[string]string
	Body     Envelope
	Headers  map[string]string
}

// Dispatcher issues calls against the remote API. It holds no mutable state
// across calls and is safe for concurrent use.
type Dispatcher struct {
	cfg        EndpointConfig
	httpClient *http.Client
}

// New creates a Dispatcher bound to cfg with the fixed per-call timeout.
func New(cfg EndpointConfig) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: CallTimeout,
		},
	}
}

// Config returns the endpoint configuration the dispatcher was built with.
func (d *Dispatcher) Config() EndpointConfig { return d.cfg }

// Dispatch performs exactly one call and returns exactly one Result. It never
// returns an error and never panics past its boundary; failures are checked
// in priority order: transport, HTTP status, response parse.
func (d *Dispatcher) Dispatch(ctx context.Context, call CallRequest) Result {
	target, err := d.buildURL(call)
	if err != nil {
		return Failuref("request failed: %v", err)
	}

	method := call.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(call.Body))
	if err != nil {
		return Failuref("request failed: %v", err)
	}
	d.setHeaders(req, call.Headers)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return Failuref("request failed: %v", unwrapURLError(err))
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failuref("request failed: read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The remote API often embeds a human-readable diagnostic in the
		// non-2xx body; carry it verbatim.
		return Failuref("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if !json.Valid(raw) {
		return Failure("invalid response body")
	}
	return Success(raw)
}

// buildURL resolves the target endpoint and appends query parameters.
func (d *Dispatcher) buildURL(call CallRequest) (string, error) {
	endpoint := call.Endpoint
	if endpoint == "" {
		endpoint = d.cfg.BaseURL
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if len(call.Params) > 0 {
		q := u.Query()
		for key, value := range call.Params {
			q.Set(key, value)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// setHeaders applies the fixed outbound header set, then the caller's
// overrides on top. Overrides win.
func (d *Dispatcher) setHeaders(req *http.Request, overrides map[string]string) {
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set(headerTenantName, d.cfg.TenantName)
	req.Header.Set(headerSyntheticKey, d.cfg.SyntheticKey)
	for key, value := range overrides {
		req.Header.Set(key, value)
	}
}

// unwrapURLError strips the *url.Error wrapper so failure messages carry the
// cause ("context deadline exceeded", "connection refused") without repeating
// the full request URL and its embedded secret-free query string.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
