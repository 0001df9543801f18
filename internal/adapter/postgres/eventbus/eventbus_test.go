package eventbus

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/alanyang/agentpages/internal/domain/event"
)

func TestChannelName(t *testing.T) {
	assert.Equal(t, "agentpages_directory", channelName(event.ChannelDirectory))
	assert.Equal(t, "agentpages_crawl", channelName(event.ChannelCrawl))
}

func TestPublish_RejectsOversizedPayload(t *testing.T) {
	eb := New(nil)
	e := event.New(event.TypeAgentRegistered, uuid.New(), strings.Repeat("x", maxPayload))

	err := eb.Publish(context.Background(), e)
	assert.ErrorContains(t, err, "exceeds NOTIFY limit")
}
