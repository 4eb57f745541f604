package messaging

import (
	"context"
	"log/slog"
	"time"
)

// Dispatcher runs side effects detached from the calling request. Each task
// gets its own bounded context; panics and errors are logged and dropped so
// they can never propagate into the primary state transition.
type Dispatcher struct {
	timeout time.Duration
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Dispatcher{timeout: timeout}
}

func (d *Dispatcher) Go(name string, fn func(context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("dispatch panicked", "task", name, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			slog.Error("dispatch failed", "task", name, "error", err)
		}
	}()
}
