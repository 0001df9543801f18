package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agentpages/internal/domain/event"
	portlocker "github.com/alanyang/agentpages/internal/port/locker"
)

func TestEventBus_DeliversByChannel(t *testing.T) {
	ctx := context.Background()
	bus := NewEventBus()

	got := make(chan event.Event, 1)
	sub, err := bus.Subscribe(ctx, event.ChannelDirectory, func(_ context.Context, e event.Event) {
		got <- e
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	var crawl atomic.Int32
	crawlSub, err := bus.Subscribe(ctx, event.ChannelCrawl, func(context.Context, event.Event) { crawl.Add(1) })
	require.NoError(t, err)
	defer crawlSub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypeAgentRegistered, uuid.New(), "bot")))

	select {
	case e := <-got:
		assert.Equal(t, event.TypeAgentRegistered, e.Type)
		assert.Equal(t, "bot", e.Name)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Zero(t, crawl.Load())
}

func TestEventBus_UnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	bus := NewEventBus()

	var n atomic.Int32
	sub, err := bus.Subscribe(ctx, event.ChannelDirectory, func(context.Context, event.Event) { n.Add(1) })
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypeAgentDeleted, uuid.New(), "bot")))
	bus.mu.RLock()
	assert.Empty(t, bus.subs[event.ChannelDirectory])
	bus.mu.RUnlock()
	assert.Zero(t, n.Load())
}

func TestLocker_Serialises(t *testing.T) {
	ctx := context.Background()
	l := NewLocker()

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- l.WithLock(ctx, 1, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := l.WithLock(short, 1, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, l.WithLock(ctx, 2, func(context.Context) error { return nil }), "other keys are independent")

	ran := false
	err = l.TryWithLock(ctx, 1, func(context.Context) error { ran = true; return nil })
	assert.ErrorIs(t, err, portlocker.ErrLocked)
	assert.False(t, ran)

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, l.WithLock(ctx, 1, func(context.Context) error { return nil }))
	require.NoError(t, l.TryWithLock(ctx, 1, func(context.Context) error { return nil }))
}
