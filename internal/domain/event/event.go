package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAgentRegistered Type = "agent_registered"
	TypeAgentUpdated    Type = "agent_updated"
	TypeAgentDeleted    Type = "agent_deleted"
	TypeCrawlFinished   Type = "crawl_finished"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelDirectory Channel = "directory"
	ChannelCrawl     Channel = "crawl"
)

// Channels lists every channel a subscriber may need to LISTEN on.
var Channels = []Channel{ChannelDirectory, ChannelCrawl}

var typeToChannel = map[Type]Channel{
	TypeAgentRegistered: ChannelDirectory,
	TypeAgentUpdated:    ChannelDirectory,
	TypeAgentDeleted:    ChannelDirectory,
	TypeCrawlFinished:   ChannelCrawl,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the repository by name.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID uuid.UUID, name string) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Name:      name,
		Timestamp: time.Now().UTC(),
	}
}
