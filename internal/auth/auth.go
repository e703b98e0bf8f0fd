// Package auth is the mock credential exchange. It simulates server latency
// and issues a fixed token; there is no real security here.
package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/mindcareai/mindcare/internal/notify"
)

// MockToken is issued on every successful login or registration.
const MockToken = "mock-jwt-token"

const (
	DefaultLoginLatency    = 800 * time.Millisecond
	DefaultRegisterLatency = time.Second
)

var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Persister loads and saves the auth namespace.
type Persister interface {
	LoadAuth() (domain.AuthSnapshot, bool, error)
	SaveAuth(domain.AuthSnapshot) error
}

// Options configures a Service.
type Options struct {
	Persister       Persister
	Notifier        notify.Notifier
	Hooks           *hooks.Manager
	Log             *logging.Logger
	LoginLatency    time.Duration
	RegisterLatency time.Duration
	// Language picks the language for notifications. Defaults to DefaultLanguage.
	Language func() domain.Language
	Now      func() time.Time
}

// Service holds the authenticated user, if any.
type Service struct {
	mu      sync.Mutex
	state   domain.AuthSnapshot
	loading bool

	persist         Persister
	notify          notify.Notifier
	hooks           *hooks.Manager
	log             *logging.Logger
	loginLatency    time.Duration
	registerLatency time.Duration
	lang            func() domain.Language
	now             func() time.Time
}

// NewService creates a signed-out service. Negative latencies disable the delay.
func NewService(opts Options) *Service {
	s := &Service{
		persist:         opts.Persister,
		notify:          opts.Notifier,
		hooks:           opts.Hooks,
		log:             opts.Log,
		loginLatency:    opts.LoginLatency,
		registerLatency: opts.RegisterLatency,
		lang:            opts.Language,
		now:             opts.Now,
	}
	if s.notify == nil {
		s.notify = notify.Discard
	}
	if s.log == nil {
		s.log = logging.New(nil, "silent")
	}
	s.log = s.log.Sub("auth")
	if s.loginLatency == 0 {
		s.loginLatency = DefaultLoginLatency
	}
	if s.registerLatency == 0 {
		s.registerLatency = DefaultRegisterLatency
	}
	if s.lang == nil {
		s.lang = func() domain.Language { return domain.DefaultLanguage }
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Load restores the persisted auth state. A missing namespace leaves the
// service signed out.
func (s *Service) Load() error {
	if s.persist == nil {
		return nil
	}
	snap, ok, err := s.persist.LoadAuth()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s.mu.Lock()
	s.state = normalize(snap)
	s.mu.Unlock()
	return nil
}

// Login exchanges an email and password for the mock user.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.note(notify.SeverityError, notify.KeyAuthMissingFields)
		return domain.User{}, ErrMissingFields
	}

	user := domain.User{ID: "1", Email: email, Username: emailPrefix(email)}
	if err := s.exchange(ctx, s.loginLatency, user); err != nil {
		return domain.User{}, err
	}
	s.log.Info().Str("username", user.Username).Msg("signed in")
	s.note(notify.SeveritySuccess, notify.KeyAuthLoginSuccess)
	return user, nil
}

// Register creates the mock user after checking the form fields.
func (s *Service) Register(ctx context.Context, username, email, password, confirm string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" || confirm == "" {
		s.note(notify.SeverityError, notify.KeyAuthMissingFields)
		return domain.User{}, ErrMissingFields
	}
	if password != confirm {
		s.note(notify.SeverityError, notify.KeyAuthPasswordMismatch)
		return domain.User{}, ErrPasswordMismatch
	}

	user := domain.User{
		ID:       strconv.FormatInt(s.now().UnixMilli(), 10),
		Email:    email,
		Username: username,
	}
	if err := s.exchange(ctx, s.registerLatency, user); err != nil {
		return domain.User{}, err
	}
	s.log.Info().Str("username", user.Username).Str("userId", user.ID).Msg("registered")
	s.note(notify.SeveritySuccess, notify.KeyAuthRegisterSuccess)
	return user, nil
}

// exchange waits out the simulated latency and signs the user in. A
// cancelled context leaves the previous state in place.
func (s *Service) exchange(ctx context.Context, latency time.Duration, user domain.User) error {
	s.setLoading(true)

	err := wait(ctx, latency)
	if err != nil {
		s.setLoading(false)
		s.log.Warn().Err(err).Str("email", user.Email).Msg("credential exchange failed")
		s.note(notify.SeverityError, notify.KeyAuthFailed)
		return err
	}

	s.mu.Lock()
	s.state = domain.AuthSnapshot{User: &user, Token: MockToken, IsAuthenticated: true}
	s.loading = false
	s.saveLocked()
	s.mu.Unlock()

	s.emit(ctx)
	return nil
}

// Logout clears the user and token.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	was := s.state.IsAuthenticated
	s.state = domain.AuthSnapshot{}
	s.saveLocked()
	s.mu.Unlock()

	if was {
		s.log.Info().Msg("signed out")
		s.emit(ctx)
	}
}

// State returns a copy of the auth state.
func (s *Service) State() domain.AuthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func (s *Service) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Service) saveLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveAuth(s.state); err != nil {
		s.log.Error().Err(err).Msg("failed to persist auth state")
	}
}

func (s *Service) emit(ctx context.Context) {
	state := s.State()
	data := map[string]any{"isAuthenticated": state.IsAuthenticated}
	if state.User != nil {
		data["username"] = state.User.Username
	}
	s.hooks.Emit(ctx, hooks.Payload{Event: hooks.EventAuthChanged, Data: data})
}

func (s *Service) note(sev notify.Severity, key notify.Key) {
	s.notify.Notify(notify.Notification{Severity: sev, Language: s.lang(), Key: key})
}

// normalize keeps the authenticated flag consistent with the user and token.
func normalize(snap domain.AuthSnapshot) domain.AuthSnapshot {
	if snap.User == nil || snap.Token == "" {
		return domain.AuthSnapshot{}
	}
	snap.IsAuthenticated = true
	return snap
}

func emailPrefix(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
