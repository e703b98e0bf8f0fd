package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/logging"
)

// Registry manages plugin lifecycle.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string // registration order
	started []string // initialized, in init order
	hooks   *hooks.Manager
	log     *logging.Logger
}

// NewRegistry creates a plugin registry.
func NewRegistry(hm *hooks.Manager, log *logging.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		hooks:   hm,
		log:     log.Sub("plugins"),
	}
}

// Register adds a plugin without initializing it.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[p.ID()]; exists {
		return fmt.Errorf("plugin already registered: %s", p.ID())
	}
	r.plugins[p.ID()] = p
	r.order = append(r.order, p.ID())

	r.log.Debug().Str("id", p.ID()).Str("version", p.Version()).Msg("plugin registered")
	return nil
}

// InitAll initializes plugins in registration order. If one fails, the
// plugins already initialized are closed again before the error returns.
func (r *Registry) InitAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if err := r.plugins[id].Init(ctx, API{Hooks: r.hooks, Log: r.log.Sub(id)}); err != nil {
			r.closeLocked()
			return fmt.Errorf("init plugin %s: %w", id, err)
		}
		r.started = append(r.started, id)
		r.log.Info().Str("id", id).Msg("plugin initialized")
	}
	return nil
}

// CloseAll closes initialized plugins in reverse order and joins their errors.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *Registry) closeLocked() error {
	var errs []error
	for i := len(r.started) - 1; i >= 0; i-- {
		id := r.started[i]
		if err := r.plugins[id].Close(); err != nil {
			r.log.Error().Err(err).Str("id", id).Msg("plugin close error")
			errs = append(errs, fmt.Errorf("close plugin %s: %w", id, err))
		}
	}
	r.started = nil
	return errors.Join(errs...)
}

// Get returns a plugin by ID, or nil.
func (r *Registry) Get(id string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[id]
}

// Info describes registered plugins in registration order.
func (r *Registry) Info() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		p := r.plugins[id]
		infos = append(infos, Info{ID: p.ID(), Name: p.Name(), Version: p.Version()})
	}
	return infos
}

// Info holds summary data about a plugin.
type Info struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}
