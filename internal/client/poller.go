package client

import (
	"codedx-client/internal/application/common/logging"
	"context"
	"time"
)

// DefaultPollInterval is the wait between job status checks.
const DefaultPollInterval = 2 * time.Second

// Strategy decides, after a check that was not ready, whether to keep polling and how
// long to wait first. iteration starts at 1.
type Strategy[T any] interface {
	NextWait(iteration int, state T) (time.Duration, bool)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc[T any] func(iteration int, state T) (time.Duration, bool)

// NextWait calls f.
func (f StrategyFunc[T]) NextWait(iteration int, state T) (time.Duration, bool) {
	return f(iteration, state)
}

// PollingStrategy is a Strategy over job statuses.
type PollingStrategy = Strategy[JobStatus]

// FixedInterval waits d between every check and never stops on its own.
func FixedInterval[T any](d time.Duration) Strategy[T] {
	return StrategyFunc[T](func(int, T) (time.Duration, bool) {
		return d, true
	})
}

// MaxAttempts stops once n checks have been made and delegates otherwise.
func MaxAttempts[T any](n int, inner Strategy[T]) Strategy[T] {
	return StrategyFunc[T](func(iteration int, state T) (time.Duration, bool) {
		if iteration >= n {
			return 0, false
		}
		return inner.NextWait(iteration, state)
	})
}

// ContextStrategy stops as soon as ctx is done. A wait already in progress is not
// interrupted.
func ContextStrategy[T any](ctx context.Context, inner Strategy[T]) Strategy[T] {
	return StrategyFunc[T](func(iteration int, state T) (time.Duration, bool) {
		if ctx.Err() != nil {
			return 0, false
		}
		return inner.NextWait(iteration, state)
	})
}

// Decision is one outcome of a Strategy, reported to observers.
type Decision[T any] struct {
	Iteration int
	State     T
	Wait      time.Duration
	Continue  bool
}

// Observed reports every decision of inner to observer without altering it.
func Observed[T any](inner Strategy[T], observer func(Decision[T])) Strategy[T] {
	return StrategyFunc[T](func(iteration int, state T) (time.Duration, bool) {
		wait, ok := inner.NextWait(iteration, state)
		observer(Decision[T]{Iteration: iteration, State: state, Wait: wait, Continue: ok})
		return wait, ok
	})
}

// Poll fetches until ready reports true, fetch fails, or strategy stops. It returns the
// last fetched state; a stop by the strategy is not an error.
func Poll[T any](
	fetch func() (T, error),
	ready func(T) bool,
	strategy Strategy[T],
	sleep func(time.Duration),
) (T, error) {
	for iteration := 1; ; iteration++ {
		state, err := fetch()
		if err != nil {
			return state, err
		}
		if ready(state) {
			return state, nil
		}

		wait, ok := strategy.NextWait(iteration, state)
		if !ok {
			return state, nil
		}
		sleep(wait)
	}
}

// PollJobCompletion polls a job until it is completed or failed, the strategy stops, or
// a status check fails. The first failed check ends polling; there are no retries.
func (c *Client) PollJobCompletion(ctx context.Context, jobID string, strategy PollingStrategy) (JobStatus, error) {
	fetch := func() (JobStatus, error) {
		resp, err := c.GetJobStatus(ctx, jobID)
		if err != nil {
			return 0, err
		}
		return resp.Status, nil
	}

	counted := Observed(strategy, func(d Decision[JobStatus]) {
		c.metrics.recordPollIteration(ctx, d.State)
		c.logger.Debug(ctx, "Job not ready", logging.Fields{
			"job_id":    jobID,
			"iteration": d.Iteration,
			"status":    d.State.String(),
			"continue":  d.Continue,
			"wait":      d.Wait.String(),
		})
	})

	return Poll(fetch, JobStatus.IsReady, counted, c.sleep)
}
