// Package voice drives a continuous speech recognizer through a retrying
// state machine and accumulates its transcript.
package voice

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/mindcareai/mindcare/internal/notify"
)

// State is the controller lifecycle state.
type State string

const (
	StateUnavailable  State = "unavailable"
	StateIdle         State = "idle"
	StateStarting     State = "starting"
	StateListening    State = "listening"
	StateReconnecting State = "reconnecting"
	StateStopped      State = "stopped"
)

// Policy holds the retry timings.
type Policy struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	LanguageRestartDelay time.Duration
}

// DefaultPolicy retries three times, two seconds apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxReconnectAttempts: 3,
		ReconnectDelay:       2 * time.Second,
		LanguageRestartDelay: 300 * time.Millisecond,
	}
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	State                   State           `json:"state"`
	IsListening             bool            `json:"isListening"`
	Transcript              string          `json:"transcript"`
	Language                domain.Language `json:"language"`
	IsAvailable             bool            `json:"isAvailable"`
	ReconnectionAttempts    int             `json:"reconnectionAttempts"`
	MaxReconnectionAttempts int             `json:"maxReconnectionAttempts"`
	LastError               string          `json:"lastError,omitempty"`
}

// Options configures a Controller.
type Options struct {
	Probe     Probe
	Scheduler Scheduler
	Policy    Policy
	Language  domain.Language
	Notifier  notify.Notifier
	Log       *logging.Logger
	// Observer, if set, receives a snapshot after every change.
	Observer func(Snapshot)
}

// Controller owns one recognizer for its whole lifetime. All methods are
// safe for concurrent use; recognizer calls are made without the lock held
// so a recognizer may report events synchronously.
type Controller struct {
	mu         sync.Mutex
	state      State
	listening  bool
	transcript string
	lang       domain.Language
	available  bool
	attempts   int
	lastErr    error
	timer      Timer
	timerSeq   uint64
	pendingSeq uint64

	rec      Recognizer
	sched    Scheduler
	policy   Policy
	notify   notify.Notifier
	observer func(Snapshot)
	log      *logging.Logger
}

// effects collects what a transition must do once the lock is released.
type effects struct {
	notes   []notify.Notification
	changed bool
	snap    Snapshot
}

// NewController probes for the recognizer once and stores the result.
func NewController(opts Options) *Controller {
	c := &Controller{
		lang:     opts.Language,
		sched:    opts.Scheduler,
		policy:   opts.Policy,
		notify:   opts.Notifier,
		observer: opts.Observer,
		log:      opts.Log,
	}
	if !c.lang.Valid() {
		c.lang = domain.DefaultLanguage
	}
	if c.sched == nil {
		c.sched = RealScheduler{}
	}
	if c.policy == (Policy{}) {
		c.policy = DefaultPolicy()
	}
	if c.notify == nil {
		c.notify = notify.Discard
	}
	if c.log == nil {
		c.log = logging.New(nil, "silent")
	}
	c.log = c.log.Sub("voice")

	c.state = StateUnavailable
	if opts.Probe != nil {
		if rec, ok := opts.Probe(); ok {
			c.rec = rec
			c.available = true
			c.state = StateIdle
		}
	}
	c.log.Debug().Bool("available", c.available).Str("language", string(c.lang)).Msg("voice controller ready")
	return c
}

// StartListening begins a listening cycle from Idle or Stopped. It returns
// ErrUnavailable without the capability and wraps ErrStartFailure when the
// recognizer refuses to start. Calling it while a cycle is active is a no-op.
func (c *Controller) StartListening() error {
	c.mu.Lock()
	var fx effects
	if !c.available {
		fx.note(notify.SeverityError, c.lang, notify.KeyVoiceUnavailable)
		c.mu.Unlock()
		c.apply(fx)
		return ErrUnavailable
	}
	switch c.state {
	case StateStarting, StateListening, StateReconnecting:
		c.mu.Unlock()
		return nil
	}
	c.cancelTimerLocked()
	c.attempts = 0
	c.lastErr = nil
	c.state = StateStarting
	settings := c.settingsLocked()
	fx.changed = true
	fx.snap = c.snapshotLocked()
	c.mu.Unlock()
	c.apply(fx)

	return c.startRecognizer(settings, false)
}

// startRecognizer configures and starts the recognizer. A synchronous
// failure returns the controller to Idle without touching the counters.
func (c *Controller) startRecognizer(settings Settings, restart bool) error {
	c.rec.Configure(settings)
	err := c.rec.Start()
	if err == nil {
		return nil
	}

	c.mu.Lock()
	var fx effects
	wrapped := fmt.Errorf("%w: %v", ErrStartFailure, err)
	if c.state == StateStarting {
		c.state = StateIdle
		c.listening = false
		c.lastErr = wrapped
		fx.note(notify.SeverityError, c.lang, notify.KeyVoiceStartFailed)
		fx.changed = true
		fx.snap = c.snapshotLocked()
	}
	attempt := c.attempts
	c.mu.Unlock()

	c.log.Warn().Err(err).Bool("restart", restart).Int("attempt", attempt).Msg("recognizer start failed")
	c.apply(fx)
	return wrapped
}

// StopListening ends the cycle immediately. isListening drops at once and
// any pending restart is cancelled. It is idempotent.
func (c *Controller) StopListening() {
	c.mu.Lock()
	var fx effects
	c.cancelTimerLocked()
	c.attempts = 0
	wasActive, wasPending := false, false
	switch c.state {
	case StateStarting, StateListening:
		c.state = StateStopped
		wasActive = true
		fx.changed = true
	case StateReconnecting:
		// no end event will follow; abort whatever the recognizer still holds
		c.state = StateIdle
		wasPending = true
		fx.changed = true
	}
	if c.listening {
		c.listening = false
		fx.changed = true
	}
	fx.snap = c.snapshotLocked()
	c.mu.Unlock()

	switch {
	case wasActive:
		c.rec.Stop()
	case wasPending:
		c.rec.Abort()
	}
	c.apply(fx)
}

// SetLanguage changes the recognition language. While a cycle is active the
// recognizer is stopped and restarted after the language restart delay.
func (c *Controller) SetLanguage(lang domain.Language) {
	c.mu.Lock()
	var fx effects
	if c.lang == lang {
		c.mu.Unlock()
		return
	}
	c.lang = lang
	fx.changed = true
	active := c.state == StateListening || c.state == StateStarting
	if active {
		c.state = StateReconnecting
		c.scheduleRestartLocked(c.policy.LanguageRestartDelay)
	}
	fx.snap = c.snapshotLocked()
	c.mu.Unlock()

	if active {
		c.log.Debug().Str("language", string(lang)).Msg("restarting recognizer for language change")
		c.rec.Stop()
	}
	c.apply(fx)
}

// ClearTranscript empties the transcript. The controller never clears it on its own.
func (c *Controller) ClearTranscript() {
	c.mu.Lock()
	var fx effects
	if c.transcript != "" {
		c.transcript = ""
		fx.changed = true
		fx.snap = c.snapshotLocked()
	}
	c.mu.Unlock()
	c.apply(fx)
}

// HandleStarted reports that the recognizer began capturing. A successful
// (re)start refills the reconnect budget.
func (c *Controller) HandleStarted() {
	c.mu.Lock()
	var fx effects
	if c.state == StateStarting {
		c.state = StateListening
		c.listening = true
		c.attempts = 0
		fx.changed = true
		fx.snap = c.snapshotLocked()
	} else {
		c.log.Debug().Str("state", string(c.state)).Msg("ignoring started event")
	}
	c.mu.Unlock()
	c.apply(fx)
}

// HandleResult replaces the transcript with the join of every reported
// result, interim and final alike.
func (c *Controller) HandleResult(results []Result) {
	c.mu.Lock()
	var fx effects
	if c.state == StateListening || c.state == StateStarting {
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = r.Transcript
		}
		c.transcript = strings.Join(parts, " ")
		fx.changed = true
		fx.snap = c.snapshotLocked()
	}
	c.mu.Unlock()
	c.apply(fx)
}

// HandleError reports a recognizer error. Network errors are retried up to
// the policy limit; anything else ends the cycle.
func (c *Controller) HandleError(kind string) {
	recErr := &RecognitionError{Kind: kind}

	c.mu.Lock()
	var fx effects
	if c.state != StateListening && c.state != StateStarting {
		c.mu.Unlock()
		c.log.Debug().Str("kind", kind).Msg("ignoring late recognizer error")
		return
	}

	if recErr.Network() && c.attempts < c.policy.MaxReconnectAttempts {
		c.attempts++
		attempt := c.attempts
		c.state = StateReconnecting
		c.scheduleRestartLocked(c.policy.ReconnectDelay)
		fx.note(notify.SeverityWarning, c.lang, notify.KeyVoiceReconnecting)
		fx.changed = true
		fx.snap = c.snapshotLocked()
		c.mu.Unlock()

		c.log.Warn().Str("kind", kind).Int("attempt", attempt).Dur("delay", c.policy.ReconnectDelay).Msg("recognizer network error; reconnecting")
		c.apply(fx)
		return
	}

	c.state = StateIdle
	c.listening = false
	c.cancelTimerLocked()
	if recErr.Network() {
		c.lastErr = fmt.Errorf("%w: %w", ErrReconnectExhausted, recErr)
		fx.note(notify.SeverityError, c.lang, notify.KeyVoiceReconnectExhausted)
	} else {
		c.lastErr = recErr
		fx.note(notify.SeverityError, c.lang, notify.KeyVoiceRecognitionError)
	}
	lastErr := c.lastErr
	attempts := c.attempts
	fx.changed = true
	fx.snap = c.snapshotLocked()
	c.mu.Unlock()

	c.log.Error().Err(lastErr).Int("attempts", attempts).Msg("listening cycle ended by recognizer error")
	c.apply(fx)
}

// HandleEnded reports that the recognizer stopped capturing. An end during
// a pending restart is expected and ignored.
func (c *Controller) HandleEnded() {
	c.mu.Lock()
	var fx effects
	switch c.state {
	case StateStopped, StateListening, StateStarting:
		c.state = StateIdle
		c.listening = false
		fx.changed = true
		fx.snap = c.snapshotLocked()
	}
	c.mu.Unlock()
	c.apply(fx)
}

// scheduleRestartLocked replaces any pending restart with one after d.
func (c *Controller) scheduleRestartLocked(d time.Duration) {
	c.cancelTimerLocked()
	c.timerSeq++
	seq := c.timerSeq
	c.pendingSeq = seq
	c.timer = c.sched.AfterFunc(d, func() { c.restart(seq) })
}

func (c *Controller) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pendingSeq = 0
}

// restart fires from the scheduler. Stale or cancelled timers do nothing.
func (c *Controller) restart(seq uint64) {
	c.mu.Lock()
	if seq != c.pendingSeq || c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.pendingSeq = 0
	c.state = StateStarting
	settings := c.settingsLocked()
	fx := effects{changed: true, snap: c.snapshotLocked()}
	attempt := c.attempts
	c.mu.Unlock()

	c.log.Info().Int("attempt", attempt).Str("language", string(settings.Language)).Msg("restarting recognizer")
	c.apply(fx)
	_ = c.startRecognizer(settings, true)
}

func (c *Controller) settingsLocked() Settings {
	return Settings{Language: c.lang, Continuous: true, InterimResults: true}
}

// State returns a snapshot of the controller.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Err returns the error that ended the last cycle, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:                   c.state,
		IsListening:             c.listening,
		Transcript:              c.transcript,
		Language:                c.lang,
		IsAvailable:             c.available,
		ReconnectionAttempts:    c.attempts,
		MaxReconnectionAttempts: c.policy.MaxReconnectAttempts,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

func (fx *effects) note(sev notify.Severity, lang domain.Language, key notify.Key) {
	fx.notes = append(fx.notes, notify.Notification{Severity: sev, Language: lang, Key: key})
}

func (c *Controller) apply(fx effects) {
	for _, n := range fx.notes {
		c.notify.Notify(n)
	}
	if fx.changed && c.observer != nil {
		c.observer(fx.snap)
	}
}
