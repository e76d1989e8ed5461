package internal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bayen-ai/bayen-go/pkg/apierror"
	"github.com/bayen-ai/bayen-go/pkg/models"
	"github.com/bayen-ai/bayen-go/pkg/role"
)

// ValidateRequest checks a request against the documented contract before
// it is serialized. The returned error, when non-nil, is always a
// *apierror.SchemaError and never reaches the wire.
func ValidateRequest(req *ChatRequest) error {
	if !models.Valid(req.Model) {
		return &apierror.SchemaError{Field: "model", Reason: fmt.Sprintf("unknown model %q", req.Model)}
	}
	if len(req.Messages) == 0 {
		return &apierror.SchemaError{Field: "messages", Reason: "must not be empty"}
	}
	if req.Messages[0].Role != role.User {
		return &apierror.SchemaError{Field: "messages", Reason: "first message role must be user"}
	}
	for i, m := range req.Messages {
		if !role.Valid(m.Role) {
			return &apierror.SchemaError{
				Field:  fmt.Sprintf("messages[%d].role", i),
				Reason: fmt.Sprintf("unknown role %q", m.Role),
			}
		}
		if m.Content == "" {
			return &apierror.SchemaError{
				Field:  fmt.Sprintf("messages[%d].content", i),
				Reason: "must not be empty",
			}
		}
	}
	// zero means unset and is dropped by omitempty
	if req.MaxTokens < 0 {
		return &apierror.SchemaError{Field: "max_tokens", Reason: "must be a positive integer"}
	}
	return nil
}

// assistantResponseWire mirrors AssistantResponse with pointer fields so
// that absent keys can be told apart from zero values.
type assistantResponseWire struct {
	Think     *string           `json:"think"`
	Message   *string           `json:"message"`
	Citations *[]string         `json:"citations"`
	Metadata  *ResponseMetadata `json:"metadata"`
}

// ParseStructured validates and normalizes a structured-mode response body.
// It never returns a partially filled response: any missing field fails the
// whole parse with a *apierror.SchemaError.
func ParseStructured(body []byte) (*AssistantResponse, error) {
	var wire assistantResponseWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &apierror.SchemaError{Field: "response", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if wire.Message == nil || *wire.Message == "" {
		return nil, &apierror.SchemaError{Field: "response.message", Reason: "missing or empty"}
	}
	if wire.Citations == nil {
		return nil, &apierror.SchemaError{Field: "response.citations", Reason: "missing"}
	}
	if wire.Metadata == nil {
		return nil, &apierror.SchemaError{Field: "response.metadata", Reason: "missing"}
	}
	md := *wire.Metadata
	if _, err := uuid.Parse(md.ID); err != nil {
		return nil, &apierror.SchemaError{Field: "response.metadata.id", Reason: "not a valid UUID"}
	}
	if md.Model == "" {
		return nil, &apierror.SchemaError{Field: "response.metadata.model", Reason: "missing"}
	}
	if md.Created <= 0 {
		return nil, &apierror.SchemaError{Field: "response.metadata.created", Reason: "missing or not a Unix timestamp"}
	}
	if md.Object == "" {
		return nil, &apierror.SchemaError{Field: "response.metadata.object", Reason: "missing"}
	}
	if md.Title == "" {
		return nil, &apierror.SchemaError{Field: "response.metadata.title", Reason: "missing"}
	}

	citations := *wire.Citations
	if citations == nil {
		citations = []string{}
	}
	return &AssistantResponse{
		Think:     wire.Think,
		Message:   *wire.Message,
		Citations: citations,
		Metadata:  md,
	}, nil
}

// ParsePlain validates a non-structured response body, which the API
// returns as bare markdown text rather than JSON.
func ParsePlain(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", &apierror.SchemaError{Field: "response", Reason: "empty body"}
	}
	return string(body), nil
}
