package gateway

import (
	"fmt"
	"sync"

	"github.com/mindcareai/mindcare/internal/voice"
)

// remoteRecognizer drives the speech recognizer running in the browser.
// Commands go out as voice.capability events; the browser reports back
// through the voice.event method.
type remoteRecognizer struct {
	client *Client

	mu       sync.Mutex
	settings voice.Settings
}

func newRemoteRecognizer(c *Client) *remoteRecognizer {
	return &remoteRecognizer{client: c}
}

func (r *remoteRecognizer) Configure(s voice.Settings) {
	r.mu.Lock()
	r.settings = s
	r.mu.Unlock()
}

func (r *remoteRecognizer) Start() error {
	r.mu.Lock()
	s := r.settings
	r.mu.Unlock()
	if err := r.client.SendEvent(EventVoiceCapability, CapabilityCommand{Command: "start", Settings: &s}); err != nil {
		return fmt.Errorf("sending start command: %w", err)
	}
	return nil
}

func (r *remoteRecognizer) Stop()  { r.command("stop") }
func (r *remoteRecognizer) Abort() { r.command("abort") }

func (r *remoteRecognizer) command(name string) {
	if err := r.client.SendEvent(EventVoiceCapability, CapabilityCommand{Command: name}); err != nil {
		r.client.log.Debug().Err(err).Str("command", name).Msg("recognizer command not delivered")
	}
}

// speechProbe finds the browser recognizer only when the client
// advertised it.
func speechProbe(c *Client) voice.Probe {
	if !c.HasCap(CapSpeechRecognition) {
		return voice.Unavailable
	}
	return voice.Available(newRemoteRecognizer(c))
}
