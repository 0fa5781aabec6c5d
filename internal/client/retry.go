package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"

	"pubdocs/internal/model"
)

// ErrUnavailable is the terminal error after retries are exhausted. It is
// distinct from permanent client errors, which surface immediately.
var ErrUnavailable = errors.New("document unavailable")

// StatusError reports a non-200 response from the store.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// retryable classifies an attempt failure. Network-level failures, 404 and
// 5xx are transient; any other HTTP status is permanent. Context errors mean
// the caller lost interest, so they are never retried.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound || se.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// GetDocument fetches a single document by id or slug with bounded
// exponential backoff: the delay before retry n is retryInitial * 1.5^n with
// no jitter. Retries stop as soon as ctx is done, checked both before each
// sleep and before the result is delivered.
func (c *Client) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, errors.New("id is required")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	b.RandomizationFactor = 0
	b.Multiplier = 1.5
	b.MaxInterval = 10 * time.Minute

	operation := func() (*model.Document, error) {
		var doc model.Document
		if err := c.getJSON(ctx, "/documents/"+url.PathEscape(id), &doc); err != nil {
			if !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return &doc, nil
	}

	doc, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if retryable(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	// A slow final attempt must not deliver a result the caller abandoned.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
