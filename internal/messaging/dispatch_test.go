package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deallock/deallock/internal/messaging"
)

func TestDispatcher_Go(t *testing.T) {
	t.Run("RunsTaskWithDeadline", func(t *testing.T) {
		d := messaging.NewDispatcher(time.Second)
		done := make(chan time.Time, 1)

		d.Go("task", func(ctx context.Context) error {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			done <- deadline

			return nil
		})

		select {
		case deadline := <-done:
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 5*time.Second)
		case <-time.After(2 * time.Second):
			t.Fatal("task never ran")
		}
	})

	t.Run("PanicDoesNotCrash", func(t *testing.T) {
		d := messaging.NewDispatcher(time.Second)
		ran := make(chan struct{}, 1)

		d.Go("boom", func(ctx context.Context) error {
			defer close(ran)
			panic("exploded")
		})

		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("task never ran")
		}

		// A follow-up task still runs after the panic.
		ok := make(chan struct{}, 1)

		d.Go("next", func(ctx context.Context) error {
			close(ok)
			return nil
		})

		select {
		case <-ok:
		case <-time.After(2 * time.Second):
			t.Fatal("dispatcher stopped running tasks")
		}
	})
}
