package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/alanyang/agentpages/internal/domain/a2a"
	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	"github.com/alanyang/agentpages/internal/domain/event"
	portagent "github.com/alanyang/agentpages/internal/port/agent"
	portcache "github.com/alanyang/agentpages/internal/port/cache"
	portcardfetch "github.com/alanyang/agentpages/internal/port/cardfetch"
	portbus "github.com/alanyang/agentpages/internal/port/eventbus"
)

var (
	ErrInvalidCard = errors.New("invalid agent card: missing name or A2A fields")
	ErrFetchCard   = errors.New("could not fetch agent card")
)

const (
	statsCacheKey   = "stats"
	DefaultStatsTTL = 30 * time.Second
)

var tracer = otel.Tracer("github.com/alanyang/agentpages/internal/service/directory")

// ImportRequest names a published agent card to pull into the directory.
type ImportRequest struct {
	CardURL  string           `json:"card_url"`
	Platform string           `json:"platform,omitempty"`
	Type     domainagent.Type `json:"type,omitempty"`
}

// Service owns the directory's read and write use cases.
// [SRP] Listing lifecycle only. Chat and crawling sit on top of it.
type Service struct {
	repo     portagent.Repository
	bus      portbus.EventBus
	cache    portcache.Cache
	fetcher  portcardfetch.Fetcher
	policy   *bluemonday.Policy
	statsTTL time.Duration
	now      func() time.Time
}

func NewService(repo portagent.Repository, bus portbus.EventBus, cache portcache.Cache, fetcher portcardfetch.Fetcher, statsTTL time.Duration) *Service {
	if statsTTL <= 0 {
		statsTTL = DefaultStatsTTL
	}
	return &Service{
		repo:     repo,
		bus:      bus,
		cache:    cache,
		fetcher:  fetcher,
		policy:   bluemonday.StrictPolicy(),
		statsTTL: statsTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context, q domainagent.Query) ([]domainagent.Listing, error) {
	ctx, span := tracer.Start(ctx, "directory.List")
	defer span.End()

	listings, err := s.repo.List(ctx, q.Normalized())
	if err != nil {
		return nil, spanError(span, fmt.Errorf("list agents: %w", err))
	}
	span.SetAttributes(attribute.Int("agents.count", len(listings)))
	return listings, nil
}

func (s *Service) Get(ctx context.Context, name string) (domainagent.Listing, error) {
	l, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return domainagent.Listing{}, fmt.Errorf("get agent: %w", err)
	}
	return l, nil
}

// Lookup resolves a name typed by a person: exact first, then case-insensitive.
func (s *Service) Lookup(ctx context.Context, name string) (domainagent.Listing, error) {
	l, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, domainagent.ErrNotFound) {
		return domainagent.Listing{}, fmt.Errorf("lookup agent: %w", err)
	}
	l, err = s.repo.FindByNameFold(ctx, name)
	if err != nil {
		return domainagent.Listing{}, fmt.Errorf("lookup agent: %w", err)
	}
	return l, nil
}

// Register validates, cleans and upserts a listing keyed on name. created
// reports whether the name was new.
func (s *Service) Register(ctx context.Context, reg domainagent.Registration) (saved domainagent.Listing, created bool, err error) {
	ctx, span := tracer.Start(ctx, "directory.Register", trace.WithAttributes(attribute.String("agent.name", reg.Name)))
	defer span.End()

	if err := reg.Validate(); err != nil {
		return domainagent.Listing{}, false, spanError(span, err)
	}
	reg = s.sanitize(reg.Normalize())
	// Markup-only text sanitizes to nothing.
	if err := reg.Validate(); err != nil {
		return domainagent.Listing{}, false, spanError(span, err)
	}

	var existing *domainagent.Listing
	cur, err := s.repo.GetByName(ctx, reg.Name)
	switch {
	case err == nil:
		existing = &cur
	case !errors.Is(err, domainagent.ErrNotFound):
		return domainagent.Listing{}, false, spanError(span, fmt.Errorf("register agent: %w", err))
	}

	saved, created, err = s.repo.Upsert(ctx, reg.Apply(existing, s.now()))
	if err != nil {
		return domainagent.Listing{}, false, spanError(span, fmt.Errorf("register agent: %w", err))
	}

	evType := event.TypeAgentUpdated
	if created {
		evType = event.TypeAgentRegistered
	}
	if err := s.bus.Publish(ctx, event.New(evType, saved.ID, saved.Name)); err != nil {
		slog.ErrorContext(ctx, "failed to publish agent event", "type", evType, "agent", saved.Name, "error", err)
	}
	s.InvalidateStats(ctx)

	span.SetAttributes(attribute.Bool("agent.created", created))
	return saved, created, nil
}

// Import fetches a published card and registers it as a verified listing.
func (s *Service) Import(ctx context.Context, req ImportRequest) (domainagent.Listing, bool, error) {
	ctx, span := tracer.Start(ctx, "directory.Import", trace.WithAttributes(attribute.String("card.url", req.CardURL)))
	defer span.End()

	cardURL := strings.TrimSpace(req.CardURL)
	if cardURL == "" {
		return domainagent.Listing{}, false, spanError(span, fmt.Errorf("%w: card_url is required", domainagent.ErrInvalidField))
	}
	if req.Type != "" && !req.Type.Valid() {
		return domainagent.Listing{}, false, spanError(span, fmt.Errorf("%w: type must be agent or service", domainagent.ErrInvalidField))
	}

	card, err := s.fetcher.Fetch(ctx, cardURL)
	if err != nil {
		if errors.Is(err, portcardfetch.ErrUpstream) {
			return domainagent.Listing{}, false, spanError(span, fmt.Errorf("%w: %v", ErrFetchCard, err))
		}
		return domainagent.Listing{}, false, spanError(span, fmt.Errorf("%w: %v", ErrInvalidCard, err))
	}
	if !card.Valid() {
		return domainagent.Listing{}, false, spanError(span, ErrInvalidCard)
	}

	return s.registerCard(ctx, card, cardURL, req.Platform, req.Type)
}

// RegisterCard registers an already fetched card, as the crawler does.
func (s *Service) RegisterCard(ctx context.Context, card a2a.AgentCard, cardURL, platform string) (domainagent.Listing, bool, error) {
	if !card.Valid() {
		return domainagent.Listing{}, false, ErrInvalidCard
	}
	return s.registerCard(ctx, card, cardURL, platform, "")
}

func (s *Service) registerCard(ctx context.Context, card a2a.AgentCard, cardURL, platform string, typ domainagent.Type) (domainagent.Listing, bool, error) {
	reg := card.ToRegistration(cardURL, platform, typ)
	now := s.now()
	reg.Verified = true
	reg.LastSeenAt = &now
	return s.Register(ctx, reg)
}

// Delete removes the listing named name, or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "directory.Delete", trace.WithAttributes(attribute.String("agent.name", name)))
	defer span.End()

	l, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return spanError(span, fmt.Errorf("delete agent: %w", err))
	}
	deleted, err := s.repo.DeleteByName(ctx, name)
	if err != nil {
		return spanError(span, fmt.Errorf("delete agent: %w", err))
	}
	if !deleted {
		return spanError(span, fmt.Errorf("delete agent: %w", domainagent.ErrNotFound))
	}

	if err := s.bus.Publish(ctx, event.New(event.TypeAgentDeleted, l.ID, l.Name)); err != nil {
		slog.ErrorContext(ctx, "failed to publish agent event", "type", event.TypeAgentDeleted, "agent", name, "error", err)
	}
	s.InvalidateStats(ctx)
	return nil
}

// Stats serves directory totals from the cache, recomputing on a miss.
func (s *Service) Stats(ctx context.Context) (domainagent.Stats, error) {
	ctx, span := tracer.Start(ctx, "directory.Stats")
	defer span.End()

	b, err := s.cache.Get(ctx, statsCacheKey)
	if err == nil {
		var st domainagent.Stats
		if err := json.Unmarshal(b, &st); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return st, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cached stats", "error", err)
	} else if !errors.Is(err, portcache.ErrMiss) {
		slog.WarnContext(ctx, "stats cache read failed", "error", err)
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return domainagent.Stats{}, spanError(span, fmt.Errorf("compute stats: %w", err))
	}
	st := domainagent.ComputeStats(all)

	if b, err := json.Marshal(st); err == nil {
		if err := s.cache.Set(ctx, statsCacheKey, b, s.statsTTL); err != nil {
			slog.WarnContext(ctx, "stats cache write failed", "error", err)
		}
	}
	return st, nil
}

// Highlights loads the four front-page sections concurrently.
func (s *Service) Highlights(ctx context.Context) (domainagent.Highlights, error) {
	ctx, span := tracer.Start(ctx, "directory.Highlights")
	defer span.End()

	var h domainagent.Highlights
	g, gctx := errgroup.WithContext(ctx)
	load := func(dst *[]domainagent.Listing, q domainagent.Query) {
		g.Go(func() error {
			ls, err := s.repo.List(gctx, q)
			if err != nil {
				return err
			}
			if ls == nil {
				ls = []domainagent.Listing{}
			}
			*dst = ls
			return nil
		})
	}
	load(&h.Featured, domainagent.FeaturedQuery())
	load(&h.PopularServices, domainagent.PopularServicesQuery(domainagent.HighlightLimit))
	load(&h.ActiveAgents, domainagent.ActiveAgentsQuery(domainagent.HighlightLimit))
	load(&h.Recent, domainagent.RecentQuery(domainagent.HighlightLimit))

	if err := g.Wait(); err != nil {
		return domainagent.Highlights{}, spanError(span, fmt.Errorf("load highlights: %w", err))
	}
	return h, nil
}

// InvalidateStats drops the cached totals so the next Stats call recomputes.
func (s *Service) InvalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil {
		slog.WarnContext(ctx, "stats cache invalidate failed", "error", err)
	}
}

// sanitize strips markup from free text. Listings are served as JSON, so the
// entities bluemonday escapes are decoded back to plain text. The name is
// the listing key and is stored as given.
func (s *Service) sanitize(r domainagent.Registration) domainagent.Registration {
	clean := func(v string) string {
		return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
	}
	cleanAll := func(vs []string) []string {
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = clean(v)
		}
		return domainagent.CleanList(out)
	}

	r.Description = clean(r.Description)
	r.Contact = clean(r.Contact)
	r.ProviderOrg = clean(r.ProviderOrg)
	r.Tags = cleanAll(r.Tags)
	r.Likes = cleanAll(r.Likes)
	if len(r.Skills) > 0 {
		skills := make([]domainagent.Skill, len(r.Skills))
		for i, sk := range r.Skills {
			sk.Name = clean(sk.Name)
			sk.Description = clean(sk.Description)
			sk.Tags = cleanAll(sk.Tags)
			skills[i] = sk
		}
		r.Skills = skills
	}
	return r
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
