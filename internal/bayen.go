package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model            string        `json:"model"`
	Messages         []ChatMessage `json:"messages"`
	StructuredOutput *bool         `json:"structured_output,omitempty"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
}

type ResponseMetadata struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Object  string `json:"object"`
	Title   string `json:"title"`
}

type AssistantResponse struct {
	Think     *string          `json:"think"`
	Message   string           `json:"message"`
	Citations []string         `json:"citations"`
	Metadata  ResponseMetadata `json:"metadata"`
}

// RawResult is the outcome of a single transport attempt that reached the
// server, regardless of status.
type RawResult struct {
	Status int
	Body   []byte
}

type Wrapper interface {
	Call(ctx context.Context, request *ChatRequest) (*RawResult, error)
}

var httpClient = &http.Client{
	// per-attempt deadlines come from the request context
	Transport: &http.Transport{
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     30 * time.Second,
	},
}

type WrapperImpl struct {
	endPoint string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
}

// NewWrapperImpl returns a single-attempt transport for the chat endpoint.
// Retries are layered on top by Retryer so the two stay testable apart.
func NewWrapperImpl(endPoint, apiKey string, timeout time.Duration) *WrapperImpl {
	return &WrapperImpl{
		endPoint: endPoint,
		apiKey:   apiKey,
		timeout:  timeout,
		client:   httpClient,
	}
}

func (w *WrapperImpl) Call(ctx context.Context, requestBody *ChatRequest) (*RawResult, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	req, err := w.prepareRequest(ctx, requestBody)
	if err != nil {
		return nil, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &RawResult{Status: resp.StatusCode, Body: bodyBytes}, nil
}

func (w *WrapperImpl) prepareRequest(ctx context.Context, requestBody *ChatRequest) (*http.Request, error) {
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endPoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", w.apiKey)

	return req, nil
}
