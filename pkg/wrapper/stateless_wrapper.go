package wrapper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bayen-ai/bayen-go/internal"
	"github.com/bayen-ai/bayen-go/internal/secrets"
	"github.com/bayen-ai/bayen-go/pkg/message"
	"github.com/bayen-ai/bayen-go/pkg/models"
)

const (
	DefaultBaseURL     = "https://api.bayen.ai/v1"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 100 * time.Millisecond
)

// Config is the per-wrapper configuration. The zero value gets sensible
// defaults at construction; the wrapper holds no other state, so one
// instance is safe for concurrent use.
type Config struct {
	// BaseURL overrides the endpoint root; the client always POSTs to
	// {BaseURL}/chat.
	BaseURL string
	// Timeout bounds each individual attempt, not the whole call.
	Timeout time.Duration
	// MaxRetries caps the total number of attempts.
	MaxRetries int
	// BackoffBase is the delay before the first retry; it doubles per
	// attempt with jitter.
	BackoffBase time.Duration
	// RateLimit throttles outgoing calls client-side when positive, as a
	// guard against tripping the documented per-key limits.
	RateLimit rate.Limit
	// Logger receives debug-level retry events. The API key is never
	// logged. Defaults to a disabled logger.
	Logger *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	return c
}

// ChatRequest is a single question for the legal assistant. The first
// message must come from the user; system and assistant turns may precede
// further user turns when replaying a conversation client-side.
type ChatRequest struct {
	Model     string
	Messages  []message.Message
	MaxTokens int
}

type Metadata struct {
	ID      string
	Model   string
	Created int64
	Object  string
	Title   string
}

// AssistantResponse is a structured-mode answer. Think is nil when the
// model produced no reasoning trace. Citations is never nil.
type AssistantResponse struct {
	Think     *string
	Message   string
	Citations []string
	Metadata  Metadata
}

type StatelessWrapper interface {
	// Chat sends a structured-mode request and returns the parsed answer.
	Chat(ctx context.Context, request ChatRequest) (*AssistantResponse, error)
	// ChatPlain sends the request with structured_output=false and returns
	// the raw markdown answer.
	ChatPlain(ctx context.Context, request ChatRequest) (string, error)
}

type StatelessWrapperImpl struct {
	transport internal.Wrapper
	retryer   *internal.Retryer
	limiter   *rate.Limiter
}

func NewStatelessWrapper(apiKey string, config Config) (StatelessWrapper, error) {
	if apiKey == "" {
		return nil, errors.New("wrapper: API key must not be empty")
	}
	config = config.withDefaults()

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(config.RateLimit, 1)
	}

	endPoint := strings.TrimRight(config.BaseURL, "/") + "/chat"
	return &StatelessWrapperImpl{
		transport: internal.NewWrapperImpl(endPoint, apiKey, config.Timeout),
		retryer:   internal.NewRetryer(config.MaxRetries, config.BackoffBase, secrets.Masker(apiKey), logger),
		limiter:   limiter,
	}, nil
}

func (w *StatelessWrapperImpl) Chat(ctx context.Context, request ChatRequest) (*AssistantResponse, error) {
	// structured_output omitted on the wire; the API defaults it to true
	res, err := w.call(ctx, request, nil)
	if err != nil {
		return nil, err
	}

	parsed, err := internal.ParseStructured(res.Body)
	if err != nil {
		return nil, err
	}

	return &AssistantResponse{
		Think:     parsed.Think,
		Message:   parsed.Message,
		Citations: parsed.Citations,
		Metadata: Metadata{
			ID:      parsed.Metadata.ID,
			Model:   parsed.Metadata.Model,
			Created: parsed.Metadata.Created,
			Object:  parsed.Metadata.Object,
			Title:   parsed.Metadata.Title,
		},
	}, nil
}

func (w *StatelessWrapperImpl) ChatPlain(ctx context.Context, request ChatRequest) (string, error) {
	structured := false
	res, err := w.call(ctx, request, &structured)
	if err != nil {
		return "", err
	}
	return internal.ParsePlain(res.Body)
}

func (w *StatelessWrapperImpl) call(ctx context.Context, request ChatRequest, structured *bool) (*internal.RawResult, error) {
	model := request.Model
	if model == "" {
		model = models.DefaultModel
	}

	conversation := make([]internal.ChatMessage, 0, len(request.Messages))
	for _, m := range request.Messages {
		conversation = append(conversation, internal.ChatMessage{Role: m.Role, Content: m.Content})
	}

	requestBody := &internal.ChatRequest{
		Model:            model,
		Messages:         conversation,
		StructuredOutput: structured,
		MaxTokens:        request.MaxTokens,
	}

	if err := internal.ValidateRequest(requestBody); err != nil {
		return nil, err
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return w.retryer.Do(ctx, func(ctx context.Context) (*internal.RawResult, error) {
		return w.transport.Call(ctx, requestBody)
	})
}
