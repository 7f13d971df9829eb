package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*retryEmbedding)(nil)
	_ driven.LLMService       = (*retryLLM)(nil)
)

// DefaultRetryBackoff is the pause before the single retry.
const DefaultRetryBackoff = 500 * time.Millisecond

// RetryPolicy bounds each provider call. A call that times out or fails
// with a transient error is retried once; if the retry fails too the error
// wraps domain.ErrProviderUnavailable.
type RetryPolicy struct {
	// Timeout applies to each attempt. Zero disables the per-call timeout.
	Timeout time.Duration

	// Backoff is the pause before the retry.
	Backoff time.Duration
}

// do runs fn under the policy.
func (p RetryPolicy) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			logger.Debug("%s: retrying after %v", op, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff):
			}
		}

		err = p.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		// Caller cancellation is never retried.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsTransient(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrProviderUnavailable, op, err)
}

func (p RetryPolicy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return fn(callCtx)
}

// IsTransient reports whether err is worth retrying: timeouts, rate limits
// and server-side failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr interface{ HTTPStatus() int }
	if errors.As(err, &statusErr) {
		return transientStatus(statusErr.HTTPStatus())
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.StatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

var transientMarkers = []string{
	"rate limit",
	"too many requests",
	"server_error",
	"connection refused",
	"connection reset",
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// WithEmbeddingRetry decorates an embedding service with the policy.
// A nil service stays nil.
func WithEmbeddingRetry(svc driven.EmbeddingService, policy RetryPolicy) driven.EmbeddingService {
	if svc == nil {
		return nil
	}
	return &retryEmbedding{next: svc, policy: policy}
}

type retryEmbedding struct {
	next   driven.EmbeddingService
	policy RetryPolicy
}

func (r *retryEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := r.policy.do(ctx, "embed", func(ctx context.Context) error {
		var err error
		out, err = r.next.Embed(ctx, text)
		return err
	})
	return out, err
}

func (r *retryEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := r.policy.do(ctx, "embed batch", func(ctx context.Context) error {
		var err error
		out, err = r.next.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

func (r *retryEmbedding) Dimensions() int { return r.next.Dimensions() }
func (r *retryEmbedding) ModelName() string { return r.next.ModelName() }
func (r *retryEmbedding) Ping(ctx context.Context) error { return r.next.Ping(ctx) }
func (r *retryEmbedding) Close() error { return r.next.Close() }

// WithLLMRetry decorates an LLM service with the policy.
// A nil service stays nil.
func WithLLMRetry(svc driven.LLMService, policy RetryPolicy) driven.LLMService {
	if svc == nil {
		return nil
	}
	return &retryLLM{next: svc, policy: policy}
}

type retryLLM struct {
	next   driven.LLMService
	policy RetryPolicy
}

func (r *retryLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var out string
	err := r.policy.do(ctx, "chat", func(ctx context.Context) error {
		var err error
		out, err = r.next.Chat(ctx, messages, opts)
		return err
	})
	return out, err
}

func (r *retryLLM) ModelName() string { return r.next.ModelName() }
func (r *retryLLM) Ping(ctx context.Context) error { return r.next.Ping(ctx) }
func (r *retryLLM) Close() error { return r.next.Close() }
