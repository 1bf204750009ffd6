package shopify

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
)

// RetryPolicy runs an operation until it succeeds, gives up, or ctx is done
type RetryPolicy interface {
	Do(ctx context.Context, op func() error) error
}

// NoRetry runs the operation once
type NoRetry struct{}

func (NoRetry) Do(ctx context.Context, op func() error) error {
	return op()
}

// BackoffPolicy retries transient failures with capped exponential backoff
type BackoffPolicy struct {
	cfg    config.RetryConfig
	logger *zap.Logger
}

// NewBackoffPolicy creates a policy making at most cfg.MaxAttempts attempts
func NewBackoffPolicy(cfg config.RetryConfig, logger *zap.Logger) *BackoffPolicy {
	return &BackoffPolicy{cfg: cfg, logger: logger}
}

func (p *BackoffPolicy) Do(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.InitialInterval
	b.MaxInterval = p.cfg.MaxInterval
	b.MaxElapsedTime = 0

	retries := 0
	if p.cfg.MaxAttempts > 1 {
		retries = p.cfg.MaxAttempts - 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)

	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		p.logger.Warn("Retrying Shopify request",
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}

// IsRetryable reports whether err is a transient failure: throttling, a server
// error or a transport error
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	var gqlErrs GraphQLErrors
	if errors.As(err, &gqlErrs) {
		for _, e := range gqlErrs {
			if strings.EqualFold(e.Message, "Throttled") {
				return true
			}
		}
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
