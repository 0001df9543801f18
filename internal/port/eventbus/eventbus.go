package eventbus

import (
	"context"

	"github.com/alanyang/agentpages/internal/domain/event"
)

// Handler receives one event. It runs on the subscription's goroutine, so a
// slow handler delays later events on the same subscription only.
type Handler func(ctx context.Context, e event.Event)

type Subscription interface {
	// Unsubscribe stops delivery and waits for the handler goroutine to exit.
	Unsubscribe()
}

// EventBus fans directory and crawl events out to listeners: the stats cache,
// the WebSocket feed and MCP sessions.
// [DIP] Services publish through this port; Postgres NOTIFY carries events
// across processes, the in-memory bus serves single-process runs and tests.
type EventBus interface {
	// Publish routes e to the channel for its type. Delivery is best effort.
	Publish(ctx context.Context, e event.Event) error
	// Subscribe delivers every event on ch to handler until ctx is done or
	// the subscription is dropped.
	Subscribe(ctx context.Context, ch event.Channel, handler Handler) (Subscription, error)
}
