// Package authority holds the once-settable administrative principal each
// registry component is gated by.
package authority

import (
	"errors"
	"sync"

	id "procurement/pkg/domain"
)

var (
	ErrBurnAddress      = errors.New("burn address cannot be the authority")
	ErrAlreadyInstalled = errors.New("authority already installed")
	ErrNotInstalled     = errors.New("no authority installed")
	ErrNotAuthority     = errors.New("caller is not the authority")
)

// Gate is the authority slot of one component. An empty gate has no
// authority; once installed the principal never changes.
type Gate struct {
	mu        sync.RWMutex
	principal id.Principal
	installed bool
	strict    bool
}

type Option func(*Gate)

// Strict makes Authorize require the caller to be the installed principal
// rather than only requiring that one is installed.
func Strict(enabled bool) Option {
	return func(g *Gate) { g.strict = enabled }
}

func NewGate(opts ...Option) *Gate {
	g := &Gate{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Install sets the authority. It fails for the burn address or when an
// authority is already present; the first caller wins.
func (g *Gate) Install(p id.Principal) error {
	if p.IsBurn() {
		return ErrBurnAddress
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.installed {
		return ErrAlreadyInstalled
	}
	g.principal = p
	g.installed = true
	return nil
}

// Principal returns the installed authority, if any.
func (g *Gate) Principal() (id.Principal, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.principal, g.installed
}

// Authorize checks that a privileged call from caller may proceed.
func (g *Gate) Authorize(caller id.Principal) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.installed {
		return ErrNotInstalled
	}
	if g.strict && caller != g.principal {
		return ErrNotAuthority
	}
	return nil
}
