package agent

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("agent not found")
	ErrMissingFields = errors.New("name, description, and url are required")
	ErrInvalidField  = errors.New("invalid field")
)

type Type string

const (
	TypeAgent   Type = "agent"
	TypeService Type = "service"
)

func (t Type) Valid() bool {
	return t == TypeAgent || t == TypeService
}

type Openness string

const (
	OpennessOpen      Openness = "open"
	OpennessApproval  Openness = "approval"
	OpennessAllowlist Openness = "allowlist"
	OpennessClosed    Openness = "closed"
)

var opennessLabels = map[Openness]string{
	OpennessOpen:      "Accepts all messages",
	OpennessApproval:  "Requires approval",
	OpennessAllowlist: "Contacts only",
	OpennessClosed:    "Not accepting messages",
}

func (o Openness) Valid() bool {
	_, ok := opennessLabels[o]
	return ok
}

// Label returns the human-readable description. Unknown values read as open.
func (o Openness) Label() string {
	if l, ok := opennessLabels[o]; ok {
		return l
	}
	return opennessLabels[OpennessOpen]
}

type Skill struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// Listing is one row of the directory.
type Listing struct {
	ID              uuid.UUID              `json:"id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	URL             string                 `json:"url"`
	AgentCardURL    string                 `json:"agent_card_url,omitempty"`
	ProviderOrg     string                 `json:"provider_org,omitempty"`
	ProviderURL     string                 `json:"provider_url,omitempty"`
	Skills          []Skill                `json:"skills"`
	Tags            []string               `json:"tags"`
	Platform        string                 `json:"platform,omitempty"`
	Version         string                 `json:"version,omitempty"`
	ProtocolVersion string                 `json:"protocol_version"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	InputModes      []string               `json:"input_modes"`
	OutputModes     []string               `json:"output_modes"`
	Contact         string                 `json:"contact,omitempty"`
	Likes           []string               `json:"likes"`
	AvatarURL       string                 `json:"avatar_url,omitempty"`
	Type            Type                   `json:"type"`
	Openness        Openness               `json:"openness"`
	MessageCount    int                    `json:"message_count"`
	Rating          *float64               `json:"rating,omitempty"`
	Featured        bool                   `json:"featured"`
	Verified        bool                   `json:"verified"`
	LastSeenAt      *time.Time             `json:"last_seen_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// EnsureSlices replaces nil collections so JSON renders [] and {} rather than null.
func (l *Listing) EnsureSlices() {
	if l.Skills == nil {
		l.Skills = []Skill{}
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	if l.Likes == nil {
		l.Likes = []string{}
	}
	if l.InputModes == nil {
		l.InputModes = []string{}
	}
	if l.OutputModes == nil {
		l.OutputModes = []string{}
	}
	if l.Capabilities == nil {
		l.Capabilities = map[string]interface{}{}
	}
}

func (l *Listing) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (l *Listing) SkillNames() []string {
	names := make([]string, 0, len(l.Skills))
	for _, s := range l.Skills {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

type Badge string

const (
	BadgeNone     Badge = ""
	BadgeFeatured Badge = "featured"
	BadgePopular  Badge = "popular"
	BadgeTopRated Badge = "top_rated"
)

const (
	popularMessageCount = 100
	topRatedThreshold   = 4.5
)

// Popularity picks at most one badge, featured taking precedence.
func Popularity(l Listing) Badge {
	switch {
	case l.Featured:
		return BadgeFeatured
	case l.MessageCount >= popularMessageCount:
		return BadgePopular
	case l.Rating != nil && *l.Rating >= topRatedThreshold:
		return BadgeTopRated
	}
	return BadgeNone
}

// Detail is a listing with the display fields derived from it.
type Detail struct {
	Listing
	Badge         Badge  `json:"badge,omitempty"`
	OpennessLabel string `json:"openness_label"`
}

func (l Listing) Detail() Detail {
	return Detail{Listing: l, Badge: Popularity(l), OpennessLabel: l.Openness.Label()}
}
