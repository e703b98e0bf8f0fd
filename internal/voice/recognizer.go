package voice

import "github.com/mindcareai/mindcare/internal/domain"

// Settings is applied to the recognizer before every start.
type Settings struct {
	Language       domain.Language `json:"language"`
	Continuous     bool            `json:"continuous"`
	InterimResults bool            `json:"interimResults"`
}

// Recognizer is the platform speech capability. Start may fail
// synchronously; everything else is reported through the controller's
// Handle* methods.
type Recognizer interface {
	Configure(s Settings)
	Start() error
	Stop()
	Abort()
}

// Result is one recognition result; Transcript is its best alternative.
type Result struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"isFinal"`
}

// Probe reports the recognizer available on this platform, if any.
type Probe func() (Recognizer, bool)

// Available returns a probe that always finds r.
func Available(r Recognizer) Probe {
	return func() (Recognizer, bool) { return r, r != nil }
}

// Unavailable is a probe for platforms without speech recognition.
func Unavailable() (Recognizer, bool) { return nil, false }
