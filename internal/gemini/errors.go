package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// UpstreamError is a non-success response from Gemini. Body is kept verbatim.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini: upstream status %d: %s", e.Status, e.Message())
}

// Message returns error.message from the upstream body, or the status text
// when the body does not carry one.
func (e *UpstreamError) Message() string {
	if msg := gjson.GetBytes(e.Body, "error.message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return "Upstream error"
}

// Reason returns the canonical error.status value, e.g. NOT_FOUND.
func (e *UpstreamError) Reason() string {
	return gjson.GetBytes(e.Body, "error.status").String()
}

// TransportError is a failure to reach Gemini at all. Err never carries the
// request URL, so the API key cannot leak through it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gemini: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsModelUnavailable classifies err as "this model cannot be used, try the
// next one". Only not-found signals qualify; quota, auth and server errors
// do not.
func IsModelUnavailable(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Status == http.StatusNotFound || ue.Reason() == "NOT_FOUND"
}
