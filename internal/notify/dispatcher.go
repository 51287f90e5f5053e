package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FailureHook observes failed dispatches, e.g. to count them.
type FailureHook func(op string)

// Dispatcher runs best-effort side effects off the request path. Each job
// gets its own deadline detached from the caller, so a finished request
// does not cancel its notification. Failures are logged and never returned.
type Dispatcher struct {
	timeout   time.Duration
	logger    zerolog.Logger
	onFailure FailureHook
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. onFailure may be nil.
func NewDispatcher(timeout time.Duration, logger zerolog.Logger, onFailure FailureHook) *Dispatcher {
	return &Dispatcher{
		timeout:   timeout,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
		onFailure: onFailure,
	}
}

// Go runs fn in the background.
func (d *Dispatcher) Go(op string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.run(ctx, fn); err != nil {
			d.logger.Error().Err(err).Str("op", op).Msg("background dispatch failed")
			if d.onFailure != nil {
				d.onFailure(op)
			}
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every dispatched job has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
