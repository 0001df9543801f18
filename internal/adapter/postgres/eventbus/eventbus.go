package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/agentpages/internal/domain/event"
	porteventbus "github.com/alanyang/agentpages/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

const (
	// maxPayload stays under the 8000 byte NOTIFY limit.
	maxPayload = 7900

	minRetry = 250 * time.Millisecond
	maxRetry = 10 * time.Second
)

// EventBus carries directory events between processes over Postgres
// LISTEN/NOTIFY, so a crawler run in another process reaches the server's
// listeners.
type EventBus struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	subs map[*subscription]event.Channel
}

func New(pool *pgxpool.Pool) *EventBus {
	return &EventBus{
		pool: pool,
		subs: make(map[*subscription]event.Channel),
	}
}

// Publish sends e via NOTIFY on the channel for its type.
func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if len(payload) > maxPayload {
		return fmt.Errorf("event payload of %d bytes exceeds NOTIFY limit", len(payload))
	}

	channel := channelName(event.ChannelFor(e.Type))
	if _, err := eb.pool.Exec(ctx, "SELECT pg_notify($1, $2)", channel, string(payload)); err != nil {
		return fmt.Errorf("publishing event on channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe LISTENs on ch and calls handler for every event until ctx is done
// or Unsubscribe is called. The first LISTEN runs before Subscribe returns;
// after a dropped connection the subscription re-acquires one and LISTENs
// again, backing off between attempts. Events sent while disconnected are lost.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	channel := channelName(ch)
	conn, err := eb.listen(ctx, channel)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	eb.mu.Lock()
	eb.subs[sub] = ch
	eb.mu.Unlock()

	go func() {
		defer func() {
			eb.mu.Lock()
			delete(eb.subs, sub)
			eb.mu.Unlock()
			close(sub.done)
		}()

		retry := minRetry
		for {
			err := eb.receive(subCtx, conn, channel, handler)
			if subCtx.Err() != nil {
				return
			}
			slog.WarnContext(subCtx, "event listener disconnected", "channel", channel, "error", err)

			for {
				select {
				case <-subCtx.Done():
					return
				case <-time.After(retry):
				}
				conn, err = eb.listen(subCtx, channel)
				if err == nil {
					retry = minRetry
					slog.InfoContext(subCtx, "event listener reconnected", "channel", channel)
					break
				}
				retry = min(retry*2, maxRetry)
				slog.WarnContext(subCtx, "event listener reconnect failed", "channel", channel, "error", err, "retry_in", retry)
			}
		}
	}()

	return sub, nil
}

func (eb *EventBus) listen(ctx context.Context, channel string) (*pgxpool.Conn, error) {
	conn, err := eb.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection for LISTEN: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("executing LISTEN on channel %s: %w", channel, err)
	}
	return conn, nil
}

// receive dispatches notifications until ctx is done or the connection fails.
// It always releases conn.
func (eb *EventBus) receive(ctx context.Context, conn *pgxpool.Conn, channel string, handler porteventbus.Handler) error {
	defer func() {
		if ctx.Err() != nil {
			conn.Exec(context.Background(), "UNLISTEN "+channel) //nolint:errcheck
			conn.Release()
			return
		}
		// The connection is broken; keep it out of the pool.
		conn.Hijack().Close(context.Background()) //nolint:errcheck
	}()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var e event.Event
		if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
			slog.WarnContext(ctx, "dropping malformed notification", "channel", channel, "error", err)
			continue
		}
		handler(ctx, e)
	}
}

// Subscribers reports how many live subscriptions listen on ch.
func (eb *EventBus) Subscribers(ch event.Channel) int {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	n := 0
	for _, c := range eb.subs {
		if c == ch {
			n++
		}
	}
	return n
}

// channelName prefixes a domain Channel into a Postgres channel identifier.
func channelName(ch event.Channel) string {
	return "agentpages_" + string(ch)
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
