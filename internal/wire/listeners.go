package wire

import (
	"context"
	"log/slog"

	"github.com/alanyang/agentpages/internal/domain/event"
	porteventbus "github.com/alanyang/agentpages/internal/port/eventbus"
	mcptransport "github.com/alanyang/agentpages/internal/transport/mcp"
)

// StatsInvalidator drops cached directory totals.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context)
}

// startListeners subscribes to every event channel. Each event clears the
// stats cache, which covers writes made by other processes such as the
// crawler, and is relayed to connected MCP sessions.
func startListeners(ctx context.Context, bus porteventbus.EventBus, stats StatsInvalidator, reg *mcptransport.SessionRegistry) {
	for _, ch := range event.Channels {
		sub, err := bus.Subscribe(ctx, ch, invalidateOnEvent(stats))
		if err != nil {
			slog.Error("failed to subscribe stats listener", "channel", ch, "error", err)
			continue
		}
		go unsubscribeOnDone(ctx, sub)

		if reg == nil {
			continue
		}
		relay, err := reg.Subscribe(ctx, bus, ch)
		if err != nil {
			slog.Error("failed to subscribe mcp relay", "channel", ch, "error", err)
			continue
		}
		go unsubscribeOnDone(ctx, relay)
	}
}

func invalidateOnEvent(stats StatsInvalidator) porteventbus.Handler {
	return func(ctx context.Context, e event.Event) {
		slog.DebugContext(ctx, "event received", "type", e.Type, "name", e.Name)
		stats.InvalidateStats(ctx)
	}
}

func unsubscribeOnDone(ctx context.Context, sub porteventbus.Subscription) {
	<-ctx.Done()
	sub.Unsubscribe()
}
