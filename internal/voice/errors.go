package voice

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the platform has no speech capability.
	ErrUnavailable = errors.New("speech recognition unavailable")
	// ErrStartFailure wraps a synchronous recognizer start error.
	ErrStartFailure = errors.New("speech recognition failed to start")
	// ErrReconnectExhausted ends a listening cycle after too many network errors.
	ErrReconnectExhausted = errors.New("speech recognition reconnect attempts exhausted")
)

// KindNetwork is the retryable recognition error kind.
const KindNetwork = "network"

// RecognitionError is a runtime error reported by the recognizer.
type RecognitionError struct {
	Kind string
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition error: %s", e.Kind)
}

// Network reports whether the error is retryable.
func (e *RecognitionError) Network() bool {
	return e.Kind == KindNetwork
}
