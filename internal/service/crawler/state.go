package crawler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alanyang/agentpages/internal/domain/a2a"
)

// Discovered is a live agent card found by the crawler.
type Discovered struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	URL          string        `json:"url"`
	AgentCardURL string        `json:"agent_card_url"`
	Card         a2a.AgentCard `json:"card"`
	DiscoveredAt time.Time     `json:"discovered_at"`
	Source       string        `json:"source"`
}

func newDiscovered(card a2a.AgentCard, base, cardURL, source string, now time.Time) Discovered {
	url := card.URL
	if url == "" {
		url = base
	}
	return Discovered{
		ID:           a2a.StableID(card.Name, card.URL),
		Name:         card.Name,
		Description:  card.Description,
		URL:          url,
		AgentCardURL: cardURL,
		Card:         card,
		DiscoveredAt: now,
		Source:       source,
	}
}

// State is what survives between runs: every URL already probed and every
// agent found so far.
type State struct {
	checked map[string]bool
	agents  []Discovered
	ids     map[string]bool
}

func NewState() *State {
	return &State{checked: map[string]bool{}, ids: map[string]bool{}}
}

type stateFile struct {
	Metadata struct {
		LastUpdated      time.Time `json:"last_updated"`
		TotalDiscovered  int       `json:"total_discovered"`
		TotalURLsChecked int       `json:"total_urls_checked"`
	} `json:"metadata"`
	Checked []string     `json:"checked"`
	Agents  []Discovered `json:"agents"`
}

// LoadState reads the state file at path. A missing file is an empty state.
func LoadState(path string) (*State, error) {
	st := NewState()
	if path == "" {
		return st, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading crawl state: %w", err)
	}

	var f stateFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding crawl state: %w", err)
	}
	for _, u := range f.Checked {
		st.checked[u] = true
	}
	for _, d := range f.Agents {
		st.add(d)
	}
	return st, nil
}

// Save writes the state atomically through a temp file in the same directory.
func (s *State) Save(path string, now time.Time) error {
	if path == "" {
		return nil
	}

	var f stateFile
	f.Metadata.LastUpdated = now
	f.Metadata.TotalDiscovered = len(s.agents)
	f.Metadata.TotalURLsChecked = len(s.checked)
	f.Checked = make([]string, 0, len(s.checked))
	for u := range s.checked {
		f.Checked = append(f.Checked, u)
	}
	sort.Strings(f.Checked)
	f.Agents = s.agents
	if f.Agents == nil {
		f.Agents = []Discovered{}
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding crawl state: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".crawl-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing crawl state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing crawl state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing crawl state: %w", err)
	}
	return nil
}

// markChecked records url and reports whether it was new.
func (s *State) markChecked(url string) bool {
	if s.checked[url] {
		return false
	}
	s.checked[url] = true
	return true
}

// add appends d unless an agent with the same ID is already known.
func (s *State) add(d Discovered) bool {
	if s.ids[d.ID] {
		return false
	}
	s.ids[d.ID] = true
	s.agents = append(s.agents, d)
	return true
}

func (s *State) Checked() int { return len(s.checked) }

// Agents returns a copy of the discovered agents in discovery order.
func (s *State) Agents() []Discovered {
	out := make([]Discovered, len(s.agents))
	copy(out, s.agents)
	return out
}
