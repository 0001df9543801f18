package cardhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alanyang/agentpages/internal/domain/a2a"
	portcardfetch "github.com/alanyang/agentpages/internal/port/cardfetch"
)

var _ portcardfetch.Fetcher = (*Fetcher)(nil)

const (
	userAgent     = "AgentPages/1.0 (+https://agentpages.dev)"
	maxCardBytes  = 1 << 20
	maxIndexBytes = 8 << 20
)

// Fetcher GETs agent cards over HTTP.
type Fetcher struct {
	client *http.Client
}

func New(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// NewWithClient lets tests inject an httptest client.
func NewWithClient(c *http.Client) *Fetcher {
	return &Fetcher{client: c}
}

// Fetch returns the decoded card. Transport errors and non-200 statuses wrap
// cardfetch.ErrUpstream; a body that is not JSON returns a plain decode error.
func (f *Fetcher) Fetch(ctx context.Context, cardURL string) (a2a.AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)
	if err != nil {
		return a2a.AgentCard{}, fmt.Errorf("building card request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return a2a.AgentCard{}, fmt.Errorf("%w: %v", portcardfetch.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return a2a.AgentCard{}, fmt.Errorf("%w: status %d", portcardfetch.ErrUpstream, resp.StatusCode)
	}

	var card a2a.AgentCard
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCardBytes)).Decode(&card); err != nil {
		return a2a.AgentCard{}, fmt.Errorf("decoding agent card: %w", err)
	}
	return card, nil
}

type indexEntry struct {
	URL string `json:"url"`
}

// FetchIndex reads a registry index: either a JSON array of {"url": ...}
// objects or an object wrapping that array under "agents". Entries without an
// http(s) url are skipped.
func (f *Fetcher) FetchIndex(ctx context.Context, indexURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building index request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", portcardfetch.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", portcardfetch.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexBytes))
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	var entries []indexEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		var wrapped struct {
			Agents []indexEntry `json:"agents"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decoding index: %w", err)
		}
		entries = wrapped.Agents
	}

	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		u := strings.TrimRight(strings.TrimSpace(e.URL), "/")
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
