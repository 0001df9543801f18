package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agentpages/internal/domain/a2a"
	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	"github.com/alanyang/agentpages/internal/service/chat"
)

type fakeDirectory struct {
	listings []domainagent.Listing
	lastQ    domainagent.Query
	err      error
}

func (f *fakeDirectory) List(_ context.Context, q domainagent.Query) ([]domainagent.Listing, error) {
	f.lastQ = q
	if f.err != nil {
		return nil, f.err
	}
	return q.Apply(f.listings), nil
}

func (f *fakeDirectory) Lookup(_ context.Context, name string) (domainagent.Listing, error) {
	if f.err != nil {
		return domainagent.Listing{}, f.err
	}
	for _, l := range f.listings {
		if l.Name == name {
			return l, nil
		}
	}
	return domainagent.Listing{}, domainagent.ErrNotFound
}

func userMessage(texts ...string) a2a.Message {
	m := a2a.Message{Role: a2a.RoleUser}
	for _, t := range texts {
		m.Parts = append(m.Parts, a2a.TextPart(t))
	}
	return m
}

func reply(t *testing.T, svc *chat.Service, texts ...string) string {
	t.Helper()
	msg, err := svc.Respond(context.Background(), userMessage(texts...))
	require.NoError(t, err)
	assert.Equal(t, a2a.RoleAgent, msg.Role)
	require.Len(t, msg.Parts, 1)
	assert.Equal(t, "text", msg.Parts[0].Type)
	return msg.Parts[0].Text
}

func TestRespond(t *testing.T) {
	dir := &fakeDirectory{listings: []domainagent.Listing{
		{
			Name: "Volunteer Finder", Description: "Finds volunteering gigs", URL: "https://vf.dev",
			Platform: "crewai", Skills: []domainagent.Skill{{Name: "Match"}, {Name: "Notify"}},
		},
		{Name: "AI Truism", Description: "Says true things", URL: "https://truism.dev"},
	}}
	svc := chat.NewService(dir, "https://agentpages.dev/")

	t.Run("search with terms", func(t *testing.T) {
		got := reply(t, svc, "find agents that do volunteering")
		assert.Equal(t, "volunteering", dir.lastQ.Q)
		assert.Equal(t, 10, dir.lastQ.Limit)
		assert.Equal(t, "Found 1 agent(s):\n\n• **Volunteer Finder** - Finds volunteering gigs\n  URL: https://vf.dev", got)
	})

	t.Run("list all", func(t *testing.T) {
		got := reply(t, svc, "list all agents")
		assert.Empty(t, dir.lastQ.Q)
		assert.Contains(t, got, "Found 2 agent(s):")
	})

	t.Run("search without results", func(t *testing.T) {
		got := reply(t, svc, "search quantum")
		assert.Equal(t, "No agents found. Try different search terms or browse at https://agentpages.dev/agents", got)
	})

	t.Run("register", func(t *testing.T) {
		got := reply(t, svc, "Register my agent")
		assert.Equal(t, "To register, POST to https://agentpages.dev/api/agents or visit https://agentpages.dev/register", got)
	})

	t.Run("info is looked up lower-cased", func(t *testing.T) {
		got := reply(t, svc, "info Truism Bot")
		assert.Equal(t, `Agent "truism bot" not found.`, got)
	})

	t.Run("search keyword inside a name wins over info", func(t *testing.T) {
		got := reply(t, svc, "info Volunteer Finder")
		assert.Equal(t, "No agents found. Try different search terms or browse at https://agentpages.dev/agents", got)
	})

	t.Run("info with platform and skills", func(t *testing.T) {
		dir := &fakeDirectory{listings: []domainagent.Listing{
			{Name: "ai truism", Description: "Says true things", URL: "https://truism.dev"},
		}}
		got := reply(t, chat.NewService(dir, "https://agentpages.dev"), "tell me about AI Truism")
		assert.Equal(t, "**ai truism**\nSays true things\nURL: https://truism.dev\nPlatform: custom\nSkills: none", got)
	})

	t.Run("info without name", func(t *testing.T) {
		got := reply(t, svc, "about")
		assert.Equal(t, `Specify an agent name. Example: "tell me about AI Truism"`, got)
	})

	t.Run("greeting", func(t *testing.T) {
		got := reply(t, svc, "hello")
		assert.Contains(t, got, "Hi! I'm AgentPages")
		assert.Contains(t, got, "Or visit https://agentpages.dev")
	})

	t.Run("parts are joined", func(t *testing.T) {
		got := reply(t, svc, "find", "volunteering")
		assert.Contains(t, got, "Volunteer Finder")
	})
}

func TestRespond_StoreError(t *testing.T) {
	svc := chat.NewService(&fakeDirectory{err: errors.New("db down")}, "https://agentpages.dev")

	_, err := svc.Respond(context.Background(), userMessage("find weather"))
	require.Error(t, err)

	_, err = svc.Respond(context.Background(), userMessage("info weather"))
	require.Error(t, err)
}
