package a2a

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
)

// WellKnownPaths are probed in order when discovering a card from a base URL.
var WellKnownPaths = []string{
	"/.well-known/agent.json",
	"/.well-known/agent-card.json",
}

const maxDerivedTags = 10

type Provider struct {
	Organization string `json:"organization,omitempty"`
	Name         string `json:"name,omitempty"`
	URL          string `json:"url,omitempty"`
}

// AgentCard is the document an agent publishes under /.well-known/.
type AgentCard struct {
	Name               string                 `json:"name"`
	Description        string                 `json:"description"`
	URL                string                 `json:"url,omitempty"`
	Provider           *Provider              `json:"provider,omitempty"`
	Version            string                 `json:"version,omitempty"`
	ProtocolVersion    string                 `json:"protocolVersion,omitempty"`
	Capabilities       map[string]interface{} `json:"capabilities,omitempty"`
	DefaultInputModes  []string               `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string               `json:"defaultOutputModes,omitempty"`
	Skills             []domainagent.Skill    `json:"skills,omitempty"`
	Tags               []string               `json:"tags,omitempty"`
}

// UnmarshalJSON accepts the legacy snake_case protocol_version key.
func (c *AgentCard) UnmarshalJSON(data []byte) error {
	type plain AgentCard
	var aux struct {
		plain
		LegacyProtocolVersion string `json:"protocol_version"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = AgentCard(aux.plain)
	if c.ProtocolVersion == "" {
		c.ProtocolVersion = aux.LegacyProtocolVersion
	}
	return nil
}

// Valid reports whether the document looks like an A2A card: a name plus at
// least one A2A-specific field.
func (c AgentCard) Valid() bool {
	if strings.TrimSpace(c.Name) == "" {
		return false
	}
	return c.ProtocolVersion != "" ||
		c.Skills != nil ||
		c.Capabilities != nil ||
		c.DefaultInputModes != nil ||
		c.DefaultOutputModes != nil
}

// ToRegistration maps a fetched card onto a directory registration.
func (c AgentCard) ToRegistration(cardURL, platform string, typ domainagent.Type) domainagent.Registration {
	r := domainagent.Registration{
		Name:            c.Name,
		Description:     c.Description,
		URL:             c.URL,
		AgentCardURL:    cardURL,
		Skills:          c.Skills,
		Tags:            c.Tags,
		Platform:        platform,
		Type:            typ,
		Version:         c.Version,
		ProtocolVersion: c.ProtocolVersion,
		Capabilities:    c.Capabilities,
		InputModes:      c.DefaultInputModes,
		OutputModes:     c.DefaultOutputModes,
	}
	if r.URL == "" {
		r.URL = BaseURL(cardURL)
	}
	if c.Provider != nil {
		r.ProviderOrg = c.Provider.Organization
		if r.ProviderOrg == "" {
			r.ProviderOrg = c.Provider.Name
		}
		r.ProviderURL = c.Provider.URL
	}
	if len(r.Tags) == 0 {
		r.Tags = SkillTags(c.Skills, maxDerivedTags)
	}
	if r.ProtocolVersion == "" {
		r.ProtocolVersion = domainagent.DefaultProtocolVersion
	}
	if r.Capabilities == nil {
		r.Capabilities = map[string]interface{}{}
	}
	return r
}

// BaseURL strips a well-known card suffix from cardURL.
func BaseURL(cardURL string) string {
	for _, p := range WellKnownPaths {
		if strings.HasSuffix(cardURL, p) {
			return strings.TrimSuffix(cardURL, p)
		}
	}
	return cardURL
}

// SkillTags returns the distinct skill tags in first-seen order, capped at max.
func SkillTags(skills []domainagent.Skill, max int) []string {
	var all []string
	for _, s := range skills {
		all = append(all, s.Tags...)
	}
	tags := domainagent.CleanList(all)
	if len(tags) > max {
		tags = tags[:max]
	}
	return tags
}

// StableID derives a short deterministic identifier from name and url.
func StableID(name, url string) string {
	raw := strings.TrimSpace(strings.ToLower(name + "|" + url))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:12]
}

// DirectoryCard is the card this directory publishes about itself.
func DirectoryCard(baseURL, version string) AgentCard {
	return AgentCard{
		Name:        "AgentPages",
		Description: "The Yellow Pages for AI Agents. Search, discover, and register A2A-compatible agents.",
		URL:         baseURL,
		Provider: &Provider{
			Organization: "AgentPages",
			URL:          baseURL,
		},
		Version:            version,
		ProtocolVersion:    domainagent.DefaultProtocolVersion,
		Capabilities:       map[string]interface{}{"streaming": false, "pushNotifications": false},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []domainagent.Skill{
			{ID: "search_agents", Name: "Search Agents", Description: "Search the directory for AI agents", Tags: []string{"search", "directory"}},
			{ID: "register_agent", Name: "Register Agent", Description: "Register a new agent in the directory", Tags: []string{"register", "create"}},
			{ID: "get_agent_info", Name: "Get Agent Info", Description: "Get detailed info about a specific agent", Tags: []string{"info", "lookup"}},
		},
	}
}
