// Package chat owns the conversation sessions, message ordering, language
// tagging and the reply-generation loading gate.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/language"
	"github.com/mindcareai/mindcare/internal/llm"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/mindcareai/mindcare/internal/notify"
)

// titleMaxRunes is the length at which derived titles are truncated.
const titleMaxRunes = 30

var (
	ErrInvalidRole     = errors.New("invalid message role")
	ErrSessionNotFound = errors.New("session not found")
)

// Persister loads and saves the chat namespace.
type Persister interface {
	LoadChat() (domain.ChatSnapshot, bool, error)
	SaveChat(snap domain.ChatSnapshot) error
}

// Options configures a Store. Engine is required.
type Options struct {
	Engine          llm.Client
	Persister       Persister
	Notifier        notify.Notifier
	Hooks           *hooks.Manager
	Log             *logging.Logger
	DefaultLanguage domain.Language

	Now   func() time.Time
	NewID func() string
}

// Store holds every session, most recently created first.
type Store struct {
	mu        sync.Mutex
	sessions  []*domain.Session
	currentID string
	loading   bool
	lang      domain.Language

	engine  llm.Client
	persist Persister
	notify  notify.Notifier
	hooks   *hooks.Manager
	log     *logging.Logger
	now     func() time.Time
	newID   func() string
}

// NewStore creates an empty session store.
func NewStore(opts Options) *Store {
	if opts.Engine == nil {
		panic("chat: Options.Engine is required")
	}
	s := &Store{
		lang:    opts.DefaultLanguage,
		engine:  opts.Engine,
		persist: opts.Persister,
		notify:  opts.Notifier,
		hooks:   opts.Hooks,
		log:     opts.Log,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if !s.lang.Valid() {
		s.lang = domain.DefaultLanguage
	}
	if s.notify == nil {
		s.notify = notify.Discard
	}
	if s.log == nil {
		s.log = logging.New(nil, "silent")
	}
	s.log = s.log.Sub("chat")
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Load rehydrates the store from the persister. A missing snapshot leaves the
// store empty. A current id that no longer exists is dropped.
func (s *Store) Load() error {
	if s.persist == nil {
		return nil
	}
	snap, ok, err := s.persist.LoadChat()
	if err != nil {
		return fmt.Errorf("loading chat: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		return nil
	}

	s.sessions = make([]*domain.Session, 0, len(snap.Sessions))
	for _, sess := range snap.Sessions {
		c := sess.Clone()
		if !c.Language.Valid() {
			c.Language = domain.DefaultLanguage
		}
		s.sessions = append(s.sessions, &c)
	}
	s.currentID = ""
	if s.find(snap.CurrentSessionID) != nil {
		s.currentID = snap.CurrentSessionID
	}
	if snap.Language.Valid() {
		s.lang = snap.Language
	}
	s.log.Info().Int("sessions", len(s.sessions)).Str("current", s.currentID).Msg("chat state loaded")
	return nil
}

// CreateSession prepends a seeded session in the store language and makes it current.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	now := s.now()
	lang := s.lang
	sess := &domain.Session{
		ID:    s.newID(),
		Title: language.DefaultTitle(lang),
		Messages: []domain.Message{
			{ID: s.newID(), Role: domain.RoleSystem, Content: language.SystemPrompt(lang), Timestamp: now},
			{ID: s.newID(), Role: domain.RoleAssistant, Content: language.Greeting(lang), Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
		Language:  lang,
	}
	s.sessions = append([]*domain.Session{sess}, s.sessions...)
	s.currentID = sess.ID
	s.saveLocked()
	s.mu.Unlock()

	s.log.Debug().Str("sessionId", sess.ID).Str("language", string(lang)).Msg("session created")
	s.emit(hooks.Payload{Event: hooks.EventSessionCreated, SessionID: sess.ID, Data: map[string]any{"language": string(lang)}})
	return sess.ID
}

// EnsureSession creates a session when none exist and selects the first
// one when none is current. It returns the current id.
func (s *Store) EnsureSession() string {
	s.mu.Lock()
	if len(s.sessions) == 0 {
		s.mu.Unlock()
		return s.CreateSession()
	}
	if s.currentID == "" {
		id := s.sessions[0].ID
		s.mu.Unlock()
		s.SetCurrentSession(id)
		return id
	}
	id := s.currentID
	s.mu.Unlock()
	return id
}

// SetCurrentSession sets the current id unconditionally. Callers pass
// existing ids; SelectSession checks.
func (s *Store) SetCurrentSession(id string) {
	s.mu.Lock()
	s.currentID = id
	s.saveLocked()
	s.mu.Unlock()
	s.emit(hooks.Payload{Event: hooks.EventSessionSelected, SessionID: id})
}

// SelectSession makes an existing session current.
func (s *Store) SelectSession(id string) error {
	s.mu.Lock()
	found := s.find(id) != nil
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.SetCurrentSession(id)
	return nil
}

// AddMessage appends a message to the current session. A user message is
// classified, may derive the title, and triggers one reply cycle that holds
// the loading flag until the engine returns. Engine failures are logged and
// notified, never returned. Without a current session this is a no-op.
func (s *Store) AddMessage(ctx context.Context, content string, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	s.mu.Lock()
	sess := s.find(s.currentID)
	if sess == nil {
		s.mu.Unlock()
		return nil
	}

	now := s.now()
	msg := domain.Message{ID: s.newID(), Role: role, Content: content, Timestamp: now}
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = now

	renamed := false
	langChanged := false
	lang := sess.Language
	if role == domain.RoleUser {
		lang = language.Classify(content)
		if language.IsDefaultTitle(sess.Title) {
			sess.Title = deriveTitle(content)
			renamed = true
		}
		langChanged = sess.Language != lang || s.lang != lang
		sess.Language = lang
		s.lang = lang
		s.loading = true
	}

	sessionID := sess.ID
	title := sess.Title
	var history []domain.Message
	if role == domain.RoleUser {
		history = make([]domain.Message, len(sess.Messages))
		copy(history, sess.Messages)
	}
	s.saveLocked()
	s.mu.Unlock()

	s.emit(hooks.Payload{Event: hooks.EventMessageAdded, SessionID: sessionID, Data: map[string]any{"role": string(role), "messageId": msg.ID}})
	if renamed {
		s.emit(hooks.Payload{Event: hooks.EventSessionRenamed, SessionID: sessionID, Data: map[string]any{"title": title}})
	}
	if langChanged {
		s.emit(hooks.Payload{Event: hooks.EventLanguageChanged, SessionID: sessionID, Data: map[string]any{"language": string(lang)}})
	}
	if role != domain.RoleUser {
		return nil
	}

	s.emit(hooks.Payload{Event: hooks.EventLoadingChanged, SessionID: sessionID, Data: map[string]any{"loading": true}})
	s.reply(ctx, sessionID, history, lang)
	return nil
}

// reply runs one engine call without holding the lock and appends the
// result to the session that triggered it.
func (s *Store) reply(ctx context.Context, sessionID string, history []domain.Message, lang domain.Language) {
	log := s.log.With("sessionId", sessionID)
	start := s.now()
	text, err := s.engine.Reply(ctx, history, lang)

	s.mu.Lock()
	s.loading = false
	var replyID string
	dropped := false
	if err == nil {
		if sess := s.find(sessionID); sess != nil {
			now := s.now()
			replyID = s.newID()
			sess.Messages = append(sess.Messages, domain.Message{ID: replyID, Role: domain.RoleAssistant, Content: text, Timestamp: now})
			sess.UpdatedAt = now
		} else {
			dropped = true
		}
	}
	s.saveLocked()
	s.mu.Unlock()

	switch {
	case err != nil:
		log.Error().Err(err).Str("engine", s.engine.Name()).Str("language", string(lang)).Msg("reply generation failed")
		s.notify.Notify(notify.Notification{Severity: notify.SeverityError, Language: lang, Key: notify.KeyChatReplyFailed})
		s.emit(hooks.Payload{Event: hooks.EventReplyFailed, SessionID: sessionID, Data: map[string]any{"error": err.Error()}})
	case dropped:
		log.Warn().Msg("session deleted before reply arrived; reply dropped")
	default:
		log.Debug().Dur("took", s.now().Sub(start)).Msg("reply appended")
		s.emit(hooks.Payload{Event: hooks.EventMessageAdded, SessionID: sessionID, Data: map[string]any{"role": string(domain.RoleAssistant), "messageId": replyID}})
	}
	s.emit(hooks.Payload{Event: hooks.EventLoadingChanged, SessionID: sessionID, Data: map[string]any{"loading": false}})
}

// DeleteSession removes a session. Deleting the current session selects the
// most recently created remaining one, or none.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.currentID == id {
		s.currentID = ""
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
		}
	}
	current := s.currentID
	s.saveLocked()
	s.mu.Unlock()

	s.emit(hooks.Payload{Event: hooks.EventSessionDeleted, SessionID: id, Data: map[string]any{"current": current}})
}

// UpdateSessionTitle overwrites a session title. updatedAt is not touched.
func (s *Store) UpdateSessionTitle(id, title string) {
	s.mu.Lock()
	sess := s.find(id)
	if sess == nil {
		s.mu.Unlock()
		return
	}
	sess.Title = title
	s.saveLocked()
	s.mu.Unlock()

	s.emit(hooks.Payload{Event: hooks.EventSessionRenamed, SessionID: id, Data: map[string]any{"title": title}})
}

// SetLanguage sets the language used for sessions created afterwards.
func (s *Store) SetLanguage(lang domain.Language) {
	s.mu.Lock()
	changed := s.lang != lang
	s.lang = lang
	s.saveLocked()
	s.mu.Unlock()

	if changed {
		s.emit(hooks.Payload{Event: hooks.EventLanguageChanged, Data: map[string]any{"language": string(lang)}})
	}
}

// Reset removes every session.
func (s *Store) Reset() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for _, sess := range s.sessions {
		ids = append(ids, sess.ID)
	}
	s.sessions = nil
	s.currentID = ""
	s.saveLocked()
	s.mu.Unlock()

	for _, id := range ids {
		s.emit(hooks.Payload{Event: hooks.EventSessionDeleted, SessionID: id})
	}
}

// Sessions returns copies of every session, most recently created first.
func (s *Store) Sessions() []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// Session returns a copy of the session with the given id.
func (s *Store) Session(id string) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.find(id); sess != nil {
		return sess.Clone(), true
	}
	return domain.Session{}, false
}

// CurrentSession returns a copy of the current session.
func (s *Store) CurrentSession() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.find(s.currentID); sess != nil {
		return sess.Clone(), true
	}
	return domain.Session{}, false
}

func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// IsLoading reports whether a reply is being generated for any session.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Language() domain.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Snapshot returns a deep copy of the persisted state.
func (s *Store) Snapshot() domain.ChatSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() domain.ChatSnapshot {
	snap := domain.ChatSnapshot{
		Sessions:         make([]domain.Session, len(s.sessions)),
		CurrentSessionID: s.currentID,
		Language:         s.lang,
	}
	for i, sess := range s.sessions {
		snap.Sessions[i] = sess.Clone()
	}
	return snap
}

// saveLocked writes the snapshot while s.mu is held so saves land in
// mutation order. Failures are logged.
func (s *Store) saveLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveChat(s.snapshotLocked()); err != nil {
		s.log.Error().Err(err).Msg("saving chat state failed")
	}
}

func (s *Store) find(id string) *domain.Session {
	if id == "" {
		return nil
	}
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func (s *Store) emit(p hooks.Payload) {
	s.hooks.Emit(context.Background(), p)
}

// deriveTitle truncates content to titleMaxRunes runes plus "...".
func deriveTitle(content string) string {
	if utf8.RuneCountInString(content) <= titleMaxRunes {
		return content
	}
	return string([]rune(content)[:titleMaxRunes]) + "..."
}
