package labeling

import (
	"context"
	"time"

	"github.com/rgriggs0072/fliptrack-ai/internal/flterror"
	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// DefaultRetries is the number of retries after the initial attempt.
const DefaultRetries = 2

// DefaultBackoff is the base delay before the first retry; it doubles on
// each subsequent one.
const DefaultBackoff = 500 * time.Millisecond

// RetryingAdapter wraps an Adapter with bounded retries and exponential
// backoff. When every attempt fails it returns a LabelingError; the caller
// degrades to conservative defaults rather than failing the batch.
type RetryingAdapter struct {
	inner   Adapter
	retries int
	backoff time.Duration
	logger  logging.Logger
}

// NewRetryingAdapter wraps inner. Negative retries are treated as zero.
func NewRetryingAdapter(inner Adapter, retries int, backoff time.Duration, logger logging.Logger) *RetryingAdapter {
	if retries < 0 {
		retries = 0
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &RetryingAdapter{
		inner:   inner,
		retries: retries,
		backoff: backoff,
		logger:  logger,
	}
}

// Name identifies the wrapped adapter.
func (a *RetryingAdapter) Name() string {
	return a.inner.Name() + "+retry"
}

// Classify calls the wrapped adapter, retrying on failure with exponential
// backoff. Context cancellation aborts waiting between attempts.
func (a *RetryingAdapter) Classify(ctx context.Context, description string, bindings models.BindingSet) (Result, error) {
	attempts := a.retries + 1
	delay := a.backoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := a.inner.Classify(ctx, description, bindings)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if attempt < attempts {
			a.logger.WithError(err).WithFields(
				logging.Field{Key: "adapter", Value: a.inner.Name()},
				logging.Field{Key: "attempt", Value: attempt},
				logging.Field{Key: "retry_in", Value: delay.String()},
			).Warn("Labeling call failed, retrying")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return Result{}, &flterror.LabelingError{
					Description: description,
					Attempts:    attempt,
					Err:         ctx.Err(),
				}
			}
			delay *= 2
		}
	}

	return Result{}, &flterror.LabelingError{
		Description: description,
		Attempts:    attempts,
		Err:         lastErr,
	}
}
