package cardfetch

import (
	"context"
	"errors"

	"github.com/alanyang/agentpages/internal/domain/a2a"
)

// ErrUpstream wraps transport failures and non-200 responses from the card host.
var ErrUpstream = errors.New("card fetch failed")

// Fetcher retrieves and decodes an agent card. It does not judge validity.
type Fetcher interface {
	Fetch(ctx context.Context, cardURL string) (a2a.AgentCard, error)
}
