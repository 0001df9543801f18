package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alanyang/agentpages/internal/domain/a2a"
	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	"github.com/alanyang/agentpages/internal/domain/intent"
)

const searchLimit = 10

// Directory is the narrow read surface the responder needs.
// [ISP] service/directory satisfies it; tests can substitute a fake.
type Directory interface {
	List(ctx context.Context, q domainagent.Query) ([]domainagent.Listing, error)
	Lookup(ctx context.Context, name string) (domainagent.Listing, error)
}

// Service answers A2A message/send requests addressed to the directory itself.
type Service struct {
	dir     Directory
	baseURL string
}

func NewService(dir Directory, baseURL string) *Service {
	return &Service{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Respond routes the message text by keyword and returns a single-part reply.
func (s *Service) Respond(ctx context.Context, msg a2a.Message) (a2a.Message, error) {
	in := intent.Classify(msg.Text())

	var text string
	var err error
	switch in.Kind {
	case intent.KindSearch:
		text, err = s.search(ctx, in.Terms)
	case intent.KindRegister:
		text = fmt.Sprintf("To register, POST to %s/api/agents or visit %s/register", s.baseURL, s.baseURL)
	case intent.KindInfo:
		text, err = s.info(ctx, in.Name)
	default:
		text = s.greeting()
	}
	if err != nil {
		return a2a.Message{}, err
	}

	return a2a.Message{Role: a2a.RoleAgent, Parts: []a2a.Part{a2a.TextPart(text)}}, nil
}

func (s *Service) search(ctx context.Context, terms string) (string, error) {
	agents, err := s.dir.List(ctx, domainagent.Query{Q: terms, Limit: searchLimit})
	if err != nil {
		return "", fmt.Errorf("chat search: %w", err)
	}
	if len(agents) == 0 {
		return fmt.Sprintf("No agents found. Try different search terms or browse at %s/agents", s.baseURL), nil
	}

	entries := make([]string, len(agents))
	for i, a := range agents {
		entries[i] = fmt.Sprintf("• **%s** - %s\n  URL: %s", a.Name, a.Description, a.URL)
	}
	return fmt.Sprintf("Found %d agent(s):\n\n%s", len(agents), strings.Join(entries, "\n\n")), nil
}

func (s *Service) info(ctx context.Context, name string) (string, error) {
	if name == "" {
		return `Specify an agent name. Example: "tell me about AI Truism"`, nil
	}

	a, err := s.dir.Lookup(ctx, name)
	if errors.Is(err, domainagent.ErrNotFound) {
		return fmt.Sprintf("Agent %q not found.", name), nil
	}
	if err != nil {
		return "", fmt.Errorf("chat info: %w", err)
	}

	platform := a.Platform
	if platform == "" {
		platform = domainagent.DefaultPlatform
	}
	skills := strings.Join(a.SkillNames(), ", ")
	if skills == "" {
		skills = "none"
	}
	return fmt.Sprintf("**%s**\n%s\nURL: %s\nPlatform: %s\nSkills: %s", a.Name, a.Description, a.URL, platform, skills), nil
}

func (s *Service) greeting() string {
	return "Hi! I'm AgentPages, the directory for AI agents.\n\n" +
		"• \"find agents that do volunteering\"\n" +
		"• \"tell me about AI Truism\"\n" +
		"• \"register my agent\"\n" +
		"• \"list all agents\"\n\n" +
		"Or visit " + s.baseURL
}
