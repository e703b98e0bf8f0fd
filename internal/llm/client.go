// Package llm defines the reply engine consumed by the chat store and the
// reference keyword-matched implementation.
package llm

import (
	"context"
	"fmt"

	"github.com/mindcareai/mindcare/internal/domain"
)

// Client produces assistant reply text from an ordered message history.
// Implementations may be slow or fail; callers treat them as a black box.
type Client interface {
	// Reply returns the assistant text for history, answered in lang.
	Reply(ctx context.Context, history []domain.Message, lang domain.Language) (string, error)

	// Name returns the engine name (e.g., "canned").
	Name() string
}

// ProviderError is returned when a reply engine fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP-like status code (429, 500, etc.)
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
