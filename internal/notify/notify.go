// Package notify carries transient user-facing status messages from the core
// to whatever surface renders them.
package notify

import (
	"sync"

	"github.com/mindcareai/mindcare/internal/domain"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Key identifies a message in the catalog.
type Key string

const (
	KeyVoiceUnavailable        Key = "voice.unavailable"
	KeyVoiceStartFailed        Key = "voice.start_failed"
	KeyVoiceReconnecting       Key = "voice.reconnecting"
	KeyVoiceReconnectExhausted Key = "voice.reconnect_exhausted"
	KeyVoiceRecognitionError   Key = "voice.recognition_error"
	KeyChatReplyFailed         Key = "chat.reply_failed"
	KeyAuthLoginSuccess        Key = "auth.login_success"
	KeyAuthRegisterSuccess     Key = "auth.register_success"
	KeyAuthMissingFields       Key = "auth.missing_fields"
	KeyAuthPasswordMismatch    Key = "auth.password_mismatch"
	KeyAuthFailed              Key = "auth.failed"
)

// Notification is a (severity, language, key) triple.
type Notification struct {
	Severity Severity        `json:"severity"`
	Language domain.Language `json:"language"`
	Key      Key             `json:"key"`
}

// Text renders the notification in its language.
func (n Notification) Text() string {
	return Text(n.Language, n.Key)
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Notification) {})

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	list []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.list))
	copy(out, r.list)
	return out
}

// Keys returns the recorded keys in arrival order.
func (r *Recorder) Keys() []Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]Key, len(r.list))
	for i, n := range r.list {
		keys[i] = n.Key
	}
	return keys
}

// Fanout delivers each notification to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(n Notification) {
	for _, x := range f {
		if x != nil {
			x.Notify(n)
		}
	}
}
