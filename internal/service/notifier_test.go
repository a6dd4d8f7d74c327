package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_DeliversToSubscribers(t *testing.T) {
	n := NewNotifier(8, slog.Default())

	received := make(chan any, 8)
	n.Subscribe(func(_ context.Context, event any) {
		received <- event
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Start(ctx)

	n.Publish(ctx, "first")
	n.Publish(ctx, "second")

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %q", want)
		}
	}
}

func TestNotifier_PublishNeverBlocks(t *testing.T) {
	// No consumer running and a single-slot buffer: the second publish must
	// drop instead of hanging the caller.
	n := NewNotifier(1, slog.Default())

	done := make(chan struct{})
	go func() {
		n.Publish(context.Background(), "fits")
		n.Publish(context.Background(), "dropped")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full buffer")
	}

	require.Len(t, n.events, 1)
}
