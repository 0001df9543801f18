package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
	portagent "github.com/alanyang/agentpages/internal/port/agent"
)

var _ portagent.Repository = (*AgentRepository)(nil)

// AgentRepository keeps listings in a map keyed by name and evaluates queries
// in process with the same ordering rules as the SQL store.
type AgentRepository struct {
	mu     sync.RWMutex
	byName map[string]domainagent.Listing
}

func NewAgentRepository() *AgentRepository {
	return &AgentRepository{byName: make(map[string]domainagent.Listing)}
}

func (r *AgentRepository) List(_ context.Context, q domainagent.Query) ([]domainagent.Listing, error) {
	return q.Apply(r.snapshot()), nil
}

func (r *AgentRepository) All(_ context.Context) ([]domainagent.Listing, error) {
	return r.snapshot(), nil
}

func (r *AgentRepository) GetByName(_ context.Context, name string) (domainagent.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byName[name]
	if !ok {
		return domainagent.Listing{}, domainagent.ErrNotFound
	}
	return l, nil
}

func (r *AgentRepository) FindByNameFold(_ context.Context, name string) (domainagent.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.byName[name]; ok {
		return l, nil
	}
	var found *domainagent.Listing
	for _, l := range r.byName {
		if !strings.EqualFold(l.Name, name) {
			continue
		}
		if found == nil || l.CreatedAt.Before(found.CreatedAt) {
			l := l
			found = &l
		}
	}
	if found == nil {
		return domainagent.Listing{}, domainagent.ErrNotFound
	}
	return *found, nil
}

func (r *AgentRepository) Upsert(_ context.Context, l domainagent.Listing) (domainagent.Listing, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byName[l.Name]
	if ok {
		l.ID = existing.ID
		l.CreatedAt = existing.CreatedAt
		l.MessageCount = existing.MessageCount
		l.Rating = existing.Rating
		l.Featured = existing.Featured
		l.Verified = existing.Verified || l.Verified
		if existing.LastSeenAt != nil && (l.LastSeenAt == nil || existing.LastSeenAt.After(*l.LastSeenAt)) {
			l.LastSeenAt = existing.LastSeenAt
		}
	}
	l.EnsureSlices()
	r.byName[l.Name] = l
	return l, !ok, nil
}

func (r *AgentRepository) DeleteByName(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return false, nil
	}
	delete(r.byName, name)
	return true, nil
}

// Seed stores listings verbatim, popularity fields included.
func (r *AgentRepository) Seed(listings ...domainagent.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range listings {
		l.EnsureSlices()
		r.byName[l.Name] = l
	}
}

func (r *AgentRepository) snapshot() []domainagent.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainagent.Listing, 0, len(r.byName))
	for _, l := range r.byName {
		out = append(out, l)
	}
	// id order makes ties resolve the same way as the SQL store.
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0 })
	return out
}
