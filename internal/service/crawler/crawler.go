package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyang/agentpages/internal/domain/a2a"
	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	"github.com/alanyang/agentpages/internal/domain/event"
	portcardfetch "github.com/alanyang/agentpages/internal/port/cardfetch"
	portbus "github.com/alanyang/agentpages/internal/port/eventbus"
	portlocker "github.com/alanyang/agentpages/internal/port/locker"
)

const (
	StrategyKnown     = "known"
	StrategyRegistry  = "registry"
	StrategyPlatforms = "platforms"
	StrategyDomains   = "domains"

	DefaultWorkers = 20
	DefaultTimeout = 6 * time.Second

	// registerPlatform is the platform recorded for crawled agents.
	registerPlatform = "custom"
	progressEvery    = 200
)

// Strategies lists every strategy in the order a full run executes them.
var Strategies = []string{StrategyKnown, StrategyRegistry, StrategyPlatforms, StrategyDomains}

var (
	ErrUnknownStrategy = errors.New("unknown crawl strategy")
	// ErrCrawlRunning means another run holds the crawl lock on the same store.
	ErrCrawlRunning = errors.New("another crawl is running")
)

// IndexFetcher reads a registry index into a list of base URLs.
type IndexFetcher interface {
	FetchIndex(ctx context.Context, indexURL string) ([]string, error)
}

// Registrar stores a crawled card in the directory.
type Registrar interface {
	RegisterCard(ctx context.Context, card a2a.AgentCard, cardURL, platform string) (domainagent.Listing, bool, error)
}

type Config struct {
	Workers   int
	Timeout   time.Duration
	StatePath string
}

// Report summarises one Run.
type Report struct {
	Strategies      []string     `json:"strategies"`
	CheckedThisRun  int          `json:"checked_this_run"`
	FoundThisRun    int          `json:"found_this_run"`
	TotalChecked    int          `json:"total_checked"`
	TotalDiscovered int          `json:"total_discovered"`
	Agents          []Discovered `json:"agents"`
}

// RegisterReport summarises one Register pass.
type RegisterReport struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type Crawler struct {
	cards  portcardfetch.Fetcher
	index  IndexFetcher
	locker portlocker.AdvisoryLocker
	bus    portbus.EventBus
	seeds  Seeds
	cfg    Config
	now    func() time.Time

	mu      sync.Mutex
	state   *State
	checked int
	found   int
}

func New(cards portcardfetch.Fetcher, index IndexFetcher, locker portlocker.AdvisoryLocker, bus portbus.EventBus, seeds Seeds, cfg Config) *Crawler {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Crawler{
		cards:  cards,
		index:  index,
		locker: locker,
		bus:    bus,
		seeds:  seeds,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		state:  NewState(),
	}
}

// Run executes the named strategies, or all of them when names is empty.
// Only one run holds the crawl lock at a time; a second one fails with
// ErrCrawlRunning instead of queueing. State is reloaded before the first
// strategy and saved after each one.
func (c *Crawler) Run(ctx context.Context, names []string) (Report, error) {
	if len(names) == 0 {
		names = Strategies
	}
	for _, n := range names {
		if c.strategy(n) == nil {
			return Report{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, n)
		}
	}

	var report Report
	err := c.locker.TryWithLock(ctx, portlocker.KeyCrawl, func(ctx context.Context) error {
		st, err := LoadState(c.cfg.StatePath)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.state, c.checked, c.found = st, 0, 0
		c.mu.Unlock()
		slog.InfoContext(ctx, "crawl state loaded", "checked", st.Checked(), "discovered", len(st.agents))

		for _, n := range names {
			if err := ctx.Err(); err != nil {
				return c.save(ctx, err)
			}
			slog.InfoContext(ctx, "crawl strategy started", "strategy", n)
			if err := c.strategy(n)(ctx); err != nil {
				slog.ErrorContext(ctx, "crawl strategy failed", "strategy", n, "error", err)
			}
			if err := c.save(ctx, nil); err != nil {
				return err
			}
		}
		report = c.report(names)
		return nil
	})
	if errors.Is(err, portlocker.ErrLocked) {
		return Report{}, ErrCrawlRunning
	}
	if err != nil {
		return Report{}, err
	}

	e := event.New(event.TypeCrawlFinished, uuid.Nil, strings.Join(names, ","))
	if err := c.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish crawl event", "error", err)
	}
	return report, nil
}

func (c *Crawler) strategy(name string) func(context.Context) error {
	switch name {
	case StrategyKnown:
		return func(ctx context.Context) error { return c.checkAll(ctx, StrategyKnown, c.seeds.Known) }
	case StrategyDomains:
		return func(ctx context.Context) error { return c.checkAll(ctx, StrategyDomains, c.seeds.DomainURLs()) }
	case StrategyPlatforms:
		return func(ctx context.Context) error { return c.checkAll(ctx, StrategyPlatforms, c.seeds.PlatformURLs()) }
	case StrategyRegistry:
		return c.registry
	}
	return nil
}

func (c *Crawler) registry(ctx context.Context) error {
	if len(c.seeds.Registries) == 0 {
		slog.InfoContext(ctx, "no registries configured")
		return nil
	}
	var errs []error
	for _, idx := range c.seeds.Registries {
		fctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		urls, err := c.index.FetchIndex(fctx, idx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("registry %s: %w", idx, err))
			continue
		}
		slog.InfoContext(ctx, "registry index fetched", "index", idx, "agents", len(urls))
		if err := c.checkAll(ctx, StrategyRegistry, urls); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

// checkAll probes every base URL with at most Workers in flight.
func (c *Crawler) checkAll(ctx context.Context, source string, bases []string) error {
	g := new(errgroup.Group)
	g.SetLimit(c.cfg.Workers)

	var done int
	var doneMu sync.Mutex
	for _, base := range bases {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			c.checkDomain(ctx, base, source)
			doneMu.Lock()
			done++
			n := done
			doneMu.Unlock()
			if n%progressEvery == 0 {
				slog.InfoContext(ctx, "crawl progress", "strategy", source, "checked", n, "total", len(bases))
			}
			return nil
		})
	}
	_ = g.Wait()
	slog.InfoContext(ctx, "crawl strategy done", "strategy", source, "urls", len(bases))
	return ctx.Err()
}

// CheckDomain probes the well-known card paths under base, skipping URLs
// already checked. It returns the first valid card found.
func (c *Crawler) CheckDomain(ctx context.Context, base string) (Discovered, bool) {
	return c.checkDomain(ctx, base, "crawler")
}

func (c *Crawler) checkDomain(ctx context.Context, base, source string) (Discovered, bool) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return Discovered{}, false
	}

	for _, p := range a2a.WellKnownPaths {
		cardURL := base + p
		if !c.markChecked(cardURL) {
			continue
		}

		fctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		card, err := c.cards.Fetch(fctx, cardURL)
		cancel()
		if err != nil {
			slog.DebugContext(ctx, "card fetch failed", "url", cardURL, "error", err)
			continue
		}
		if !card.Valid() {
			continue
		}

		d := newDiscovered(card, base, cardURL, source, c.now())
		if c.addDiscovered(d) {
			slog.InfoContext(ctx, "agent found", "name", d.Name, "skills", len(card.Skills), "url", cardURL)
		}
		return d, true
	}
	return Discovered{}, false
}

func (c *Crawler) markChecked(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.markChecked(url) {
		return false
	}
	c.checked++
	return true
}

func (c *Crawler) addDiscovered(d Discovered) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.add(d) {
		return false
	}
	c.found++
	return true
}

// save persists state; cause, when non-nil, is returned after a successful save.
func (c *Crawler) save(ctx context.Context, cause error) error {
	c.mu.Lock()
	err := c.state.Save(c.cfg.StatePath, c.now())
	c.mu.Unlock()
	if err != nil {
		slog.ErrorContext(ctx, "failed to save crawl state", "error", err)
		return errors.Join(cause, err)
	}
	return cause
}

func (c *Crawler) report(names []string) Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Report{
		Strategies:      names,
		CheckedThisRun:  c.checked,
		FoundThisRun:    c.found,
		TotalChecked:    c.state.Checked(),
		TotalDiscovered: len(c.state.agents),
		Agents:          c.state.Agents(),
	}
}

// Register stores every discovered agent from the state file through reg.
// It waits for a running crawl so the state file is complete. The directory's
// own card is skipped.
func (c *Crawler) Register(ctx context.Context, reg Registrar) (RegisterReport, error) {
	var rr RegisterReport
	err := c.locker.WithLock(ctx, portlocker.KeyCrawl, func(ctx context.Context) error {
		var err error
		rr, err = c.register(ctx, reg)
		return err
	})
	return rr, err
}

func (c *Crawler) register(ctx context.Context, reg Registrar) (RegisterReport, error) {
	st, err := LoadState(c.cfg.StatePath)
	if err != nil {
		return RegisterReport{}, err
	}

	var rr RegisterReport
	for _, d := range st.Agents() {
		if err := ctx.Err(); err != nil {
			return rr, err
		}
		if strings.Contains(strings.ToLower(d.Name), "agentpages") {
			rr.Skipped++
			continue
		}
		_, created, err := reg.RegisterCard(ctx, d.Card, d.AgentCardURL, registerPlatform)
		switch {
		case err != nil:
			rr.Failed++
			slog.WarnContext(ctx, "failed to register crawled agent", "name", d.Name, "error", err)
		case created:
			rr.Created++
		default:
			rr.Updated++
		}
	}
	slog.InfoContext(ctx, "crawled agents registered",
		"created", rr.Created, "updated", rr.Updated, "skipped", rr.Skipped, "failed", rr.Failed)
	return rr, nil
}
