package llm

import (
	"context"
	"time"

	"github.com/JoseCortezz25/craft-canvas/internal/logger"
)

// Settings configure one model instance.
type Settings struct {
	Model          string
	Temperature    *float64
	MaxRetries     int
	RetryBaseDelay time.Duration
	MaxRepairs     int
	MaxTokens      int
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for retry and repair diagnostics.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithSleep replaces the backoff sleep; tests use it to avoid waiting.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) { c.sleep = fn }
}

// Client is a model instance over a Provider. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	provider Provider
	settings Settings
	log      *logger.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

var (
	_ TextCompleter       = (*Client)(nil)
	_ StructuredGenerator = (*Client)(nil)
)

// NewClient wraps p with the retry and validation policy in s.
func NewClient(p Provider, s Settings, opts ...ClientOption) *Client {
	if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	if s.MaxRepairs < 0 {
		s.MaxRepairs = 0
	}
	c := &Client{
		provider: p,
		settings: s,
		log:      logger.Nop(),
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the instance settings.
func (c *Client) Settings() Settings { return c.settings }

func (c *Client) request(prompt string) Request {
	return Request{
		Model:       c.settings.Model,
		Prompt:      prompt,
		Temperature: c.settings.Temperature,
		MaxTokens:   c.settings.MaxTokens,
	}
}

// CompleteText sends prompt and returns the generated text. Transient
// provider failures are retried up to MaxRetries times; when the budget runs
// out the last failure is wrapped in ModelUnavailableError.
func (c *Client) CompleteText(ctx context.Context, prompt string) (string, error) {
	req := c.request(prompt)
	return c.withRetry(ctx, func() (string, error) {
		return c.provider.Complete(ctx, req)
	})
}

func (c *Client) withRetry(ctx context.Context, call func() (string, error)) (string, error) {
	var lastErr error
	attempts := c.settings.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.log.Warn("retrying model call",
				"provider", c.provider.Name(),
				"model", c.settings.Model,
				"attempt", attempt+1,
				"delay", delay,
				"error", lastErr,
			)
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		out, err := call()
		if err == nil {
			return out, nil
		}
		if !IsTransient(err) {
			return "", err
		}
		lastErr = err
	}
	return "", &ModelUnavailableError{Provider: c.provider.Name(), Attempts: attempts, Err: lastErr}
}

func (c *Client) backoff(attempt int) time.Duration {
	base := c.settings.RetryBaseDelay
	if base <= 0 {
		return 0
	}
	return base << (attempt - 1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
