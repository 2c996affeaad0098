package dispatch

import (
	"encoding/json"
	"fmt"
)

// Envelope is the caller-supplied request body forwarded verbatim to the
// remote API. The bridge never inspects its shape beyond JSON validity.
type Envelope = json.RawMessage

// Result is the tagged outcome of one dispatch. Exactly one variant is ever
// populated: a success body or a failure message. The tag is structural —
// consumers switch on it instead of probing the body for sentinel keys, so a
// legitimate upstream "error" field can never be mistaken for a failure.
type Result struct {
	ok   bool
	body json.RawMessage
	err  string
}

// Success wraps a parsed response body.
func Success(body json.RawMessage) Result {
	return Result{ok: true, body: body}
}

// Failure wraps a failure message.
func Failure(msg string) Result {
	return Result{err: msg}
}

// Failuref wraps a formatted failure message.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

// OK reports whether the result is the success variant.
func (r Result) OK() bool { return r.ok }

// Body returns the response body. Nil for failures.
func (r Result) Body() json.RawMessage {
	if !r.ok {
		return nil
	}
	return r.body
}

// ErrorMessage returns the failure message. Empty for successes.
func (r Result) ErrorMessage() string {
	if r.ok {
		return ""
	}
	return r.err
}

// AsMap returns the wire representation of the result:
//
//	{"status": "success", "body": <decoded body>}
//	{"status": "failure", "error": "<message>"}
//
// The body is decoded into generic values so downstream marshalling emits
// sorted keys at every nesting level.
func (r Result) AsMap() map[string]any {
	if !r.ok {
		return map[string]any{
			"status": "failure",
			"error":  r.err,
		}
	}

	var body any
	if err := json.Unmarshal(r.body, &body); err != nil {
		// Success bodies are only ever built from validated JSON; keep the
		// raw bytes if that invariant is somehow broken.
		body = string(r.body)
	}
	return map[string]any{
		"status": "success",
		"body":   body,
	}
}

// MarshalJSON emits the tagged wire representation.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.AsMap())
}

// Pretty returns the result as indented JSON with sorted keys, the format
// written to the one-shot output file.
func (r Result) Pretty() ([]byte, error) {
	return json.MarshalIndent(r.AsMap(), "", "    ")
}
