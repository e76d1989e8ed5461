package internal

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bayen-ai/bayen-go/pkg/apierror"
)

const maxBackoffFactor = 16

// Classify maps an HTTP status to its error kind and whether another
// attempt is worth making. 2xx statuses are never passed in.
func Classify(status int) (apierror.Kind, bool) {
	switch status {
	case http.StatusUnauthorized:
		return apierror.KindAuth, false
	case http.StatusInternalServerError:
		// documented as "invalid structured output"
		return apierror.KindServerLogic, false
	case http.StatusBadGateway:
		return apierror.KindUpstreamUnavailable, true
	case http.StatusTooManyRequests:
		return apierror.KindRateLimited, true
	default:
		return apierror.KindUnexpectedStatus, false
	}
}

// classifyNetErr maps a connection-level failure. Timeouts and resets are
// retryable; anything else is surfaced as-is.
func classifyNetErr(err error) (apierror.Kind, bool) {
	var netErr net.Error
	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apierror.KindTimeout, true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return apierror.KindUpstreamUnavailable, true
	}
	return apierror.KindUnknown, false
}

// Retryer runs transport attempts under the backoff policy. Sleep is a
// field so tests can observe delays without waiting them out.
type Retryer struct {
	MaxAttempts int
	Base        time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
	Mask        func(string) string
	Logger      zerolog.Logger
}

func NewRetryer(maxAttempts int, base time.Duration, mask func(string) string, logger zerolog.Logger) *Retryer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if mask == nil {
		mask = func(s string) string { return s }
	}
	return &Retryer{
		MaxAttempts: maxAttempts,
		Base:        base,
		Sleep:       sleepContext,
		Mask:        mask,
		Logger:      logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Backoff returns the delay before the given retry (1 = first retry):
// base doubling per attempt, capped, plus jitter so that a burst of
// failing callers does not hammer the upstream in lockstep.
func (r *Retryer) Backoff(retry int) time.Duration {
	d := r.Base * time.Duration(1<<uint(retry-1))
	if max := r.Base * maxBackoffFactor; d > max {
		d = max
	}
	if quarter := int64(d / 4); quarter > 0 {
		d += time.Duration(rand.Int63n(quarter))
	}
	return d
}

// Do runs call until it yields a 2xx result, a fatal classification, the
// attempt cap, or cancellation. The last classified error is returned on
// exhaustion, never swallowed.
func (r *Retryer) Do(ctx context.Context, call func(ctx context.Context) (*RawResult, error)) (*RawResult, error) {
	var lastErr *apierror.Error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := r.Backoff(attempt - 1)
			r.Logger.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("kind", lastErr.Kind.String()).
				Msg("retrying chat call")
			if err := r.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		res, err := call(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			kind, retryable := classifyNetErr(err)
			if !retryable {
				return nil, err
			}
			lastErr = &apierror.Error{Kind: kind, Err: err}
			continue
		}

		if res.Status >= 200 && res.Status < 300 {
			return res, nil
		}

		kind, retryable := Classify(res.Status)
		apiErr := apierror.New(kind, res.Status, r.Mask(string(res.Body)))
		if !retryable {
			return nil, apiErr
		}
		lastErr = apiErr
	}

	return nil, lastErr
}
