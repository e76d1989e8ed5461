package apierror

import "fmt"

// Kind classifies a failed chat call.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuth means the API rejected the key (HTTP 401). Never retried.
	KindAuth
	// KindUpstreamUnavailable means the model backend was unreachable
	// (HTTP 502). Retryable.
	KindUpstreamUnavailable
	// KindServerLogic means the API failed to produce valid structured
	// output (HTTP 500). Never retried; Body carries the detail for a bug
	// report.
	KindServerLogic
	// KindTimeout covers attempt deadlines and connection-level failures.
	// Retryable.
	KindTimeout
	// KindRateLimited means HTTP 429. Treated as retryable, same as 502.
	KindRateLimited
	// KindUnexpectedStatus is the catch-all for any other non-2xx status.
	KindUnexpectedStatus
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindServerLogic:
		return "server_logic"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindUnexpectedStatus:
		return "unexpected_status"
	}
	return "unknown"
}

// SchemaError reports a local validation failure. It is raised before
// anything goes over the wire and never carries server data.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Field, e.Reason)
}

// Error is a failed call to the chat endpoint after any retries. Status is
// zero for connection-level failures. Body is the response body with the
// API key masked out.
type Error struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func New(kind Kind, status int, body string) *Error {
	return &Error{Kind: kind, Status: status, Body: body}
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("bayen: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("bayen: %s", e.Kind)
	}
	if e.Body != "" {
		return fmt.Sprintf("bayen: %s: status %d: %s", e.Kind, e.Status, e.Body)
	}
	return fmt.Sprintf("bayen: %s: status %d", e.Kind, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt against the endpoint could
// succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindUpstreamUnavailable, KindTimeout, KindRateLimited:
		return true
	}
	return false
}
