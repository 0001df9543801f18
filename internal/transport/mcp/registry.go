package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/agentpages/internal/domain/event"
	porteventbus "github.com/alanyang/agentpages/internal/port/eventbus"
)

const notificationMethod = "notifications/message"

// SessionRegistry is the in-memory set of open MCP sessions. Directory events
// are pushed to every open session as log-style notifications.
//
// [SRP] Session storage and notification dispatch only.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]time.Time // sessionID → opened at

	// mcpSrv is set after the MCP server is constructed (avoids circular init dependency).
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
}

// NewSessionRegistry creates a registry without an MCP server reference.
// Call SetMCPServer once the mcp-go server is constructed.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]time.Time)}
}

// SetMCPServer injects the mcp-go server after construction (breaks the init cycle).
func (r *SessionRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

func (r *SessionRegistry) Register(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = time.Now()
}

// Unregister removes a session when it closes and reports whether it was known.
func (r *SessionRegistry) Unregister(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return false
	}
	delete(r.sessions, sessionID)
	return true
}

func (r *SessionRegistry) IsConnected(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Notify sends payload to every open session. It returns the last send error.
func (r *SessionRegistry) Notify(_ context.Context, payload any) error {
	params, err := toParams(payload)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}

	r.mu.RLock()
	targets := make([]string, 0, len(r.sessions))
	for sessionID := range r.sessions {
		targets = append(targets, sessionID)
	}
	r.mu.RUnlock()

	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()

	if srv == nil || len(targets) == 0 {
		return nil
	}

	var lastErr error
	for _, sessionID := range targets {
		if err := srv.SendNotificationToSpecificClient(sessionID, notificationMethod, params); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Subscribe relays every event on ch to open sessions until ctx is done.
func (r *SessionRegistry) Subscribe(ctx context.Context, bus porteventbus.EventBus, ch event.Channel) (porteventbus.Subscription, error) {
	return bus.Subscribe(ctx, ch, func(ctx context.Context, e event.Event) {
		_ = r.Notify(ctx, e)
	})
}

func toParams(payload any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": payload}, nil
	}
	return params, nil
}
