// Package plugin hosts in-process extensions that observe MindCare
// lifecycle events through the hook bus.
package plugin

import (
	"context"

	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/logging"
)

// Plugin is an extension with an explicit lifecycle.
type Plugin interface {
	// ID returns a unique identifier (e.g., "journal").
	ID() string
	Name() string
	Version() string

	// Init subscribes to hooks and acquires resources.
	Init(ctx context.Context, api API) error

	// Close releases what Init acquired, including hook subscriptions.
	Close() error
}

// API is what a plugin may use.
type API struct {
	Hooks *hooks.Manager
	Log   *logging.Logger
}
