package agent

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultPlatform        = "custom"
	DefaultProtocolVersion = "0.3.0"
	MaxDescriptionRunes    = 500
)

// Registration is the write payload accepted from callers. Popularity fields
// (featured, message_count, rating) are never client-settable.
type Registration struct {
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	URL             string                 `json:"url"`
	AgentCardURL    string                 `json:"agent_card_url,omitempty"`
	ProviderOrg     string                 `json:"provider_org,omitempty"`
	ProviderURL     string                 `json:"provider_url,omitempty"`
	Skills          []Skill                `json:"skills,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Platform        string                 `json:"platform,omitempty"`
	Version         string                 `json:"version,omitempty"`
	ProtocolVersion string                 `json:"protocol_version,omitempty"`
	Capabilities    map[string]interface{} `json:"capabilities,omitempty"`
	InputModes      []string               `json:"input_modes,omitempty"`
	OutputModes     []string               `json:"output_modes,omitempty"`
	Contact         string                 `json:"contact,omitempty"`
	Likes           []string               `json:"likes,omitempty"`
	AvatarURL       string                 `json:"avatar_url,omitempty"`
	Type            Type                   `json:"type,omitempty"`
	Openness        Openness               `json:"openness,omitempty"`

	// Set by card import and the crawler only.
	Verified   bool       `json:"-"`
	LastSeenAt *time.Time `json:"-"`
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Description) == "" || strings.TrimSpace(r.URL) == "" {
		return ErrMissingFields
	}
	if r.Type != "" && !r.Type.Valid() {
		return fmt.Errorf("%w: type must be agent or service", ErrInvalidField)
	}
	if r.Openness != "" && !r.Openness.Valid() {
		return fmt.Errorf("%w: openness must be one of open, approval, allowlist, closed", ErrInvalidField)
	}
	if !isHTTPURL(r.URL) {
		return fmt.Errorf("%w: url must be an absolute http(s) URL", ErrInvalidField)
	}
	if r.AgentCardURL != "" && !isHTTPURL(r.AgentCardURL) {
		return fmt.Errorf("%w: agent_card_url must be an absolute http(s) URL", ErrInvalidField)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Normalize fills defaults and cleans list fields. It does not validate.
func (r Registration) Normalize() Registration {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = truncateRunes(strings.TrimSpace(r.Description), MaxDescriptionRunes)
	r.URL = strings.TrimSpace(r.URL)
	r.AgentCardURL = strings.TrimSpace(r.AgentCardURL)

	if r.Platform == "" {
		r.Platform = DefaultPlatform
	}
	if r.Type == "" {
		r.Type = TypeAgent
	}
	if r.Openness == "" {
		r.Openness = OpennessOpen
	}
	if r.ProtocolVersion == "" {
		r.ProtocolVersion = DefaultProtocolVersion
	}
	if len(r.InputModes) == 0 {
		r.InputModes = []string{"text"}
	}
	if len(r.OutputModes) == 0 {
		r.OutputModes = []string{"text"}
	}
	r.Tags = CleanList(r.Tags)
	r.Likes = CleanList(r.Likes)
	return r
}

// CleanList trims entries and drops blanks and duplicates, keeping first-seen order.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// SplitList parses a comma-separated list as typed into a single field.
func SplitList(s string) []string {
	return CleanList(strings.Split(s, ","))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Apply merges the registration into existing (nil for a new listing), keyed on
// name. Identity, creation time and popularity survive an update.
func (r Registration) Apply(existing *Listing, now time.Time) Listing {
	l := Listing{
		ID:        uuid.New(),
		CreatedAt: now,
	}
	if existing != nil {
		l.ID = existing.ID
		l.CreatedAt = existing.CreatedAt
		l.MessageCount = existing.MessageCount
		l.Rating = existing.Rating
		l.Featured = existing.Featured
		l.Verified = existing.Verified
		l.LastSeenAt = existing.LastSeenAt
	}

	l.Name = r.Name
	l.Description = r.Description
	l.URL = r.URL
	l.AgentCardURL = r.AgentCardURL
	l.ProviderOrg = r.ProviderOrg
	l.ProviderURL = r.ProviderURL
	l.Skills = r.Skills
	l.Tags = r.Tags
	l.Platform = r.Platform
	l.Version = r.Version
	l.ProtocolVersion = r.ProtocolVersion
	l.Capabilities = r.Capabilities
	l.InputModes = r.InputModes
	l.OutputModes = r.OutputModes
	l.Contact = r.Contact
	l.Likes = r.Likes
	l.AvatarURL = r.AvatarURL
	l.Type = r.Type
	l.Openness = r.Openness
	l.Verified = l.Verified || r.Verified
	if r.LastSeenAt != nil && (l.LastSeenAt == nil || r.LastSeenAt.After(*l.LastSeenAt)) {
		seen := *r.LastSeenAt
		l.LastSeenAt = &seen
	}
	l.UpdatedAt = now
	l.EnsureSlices()
	return l
}
