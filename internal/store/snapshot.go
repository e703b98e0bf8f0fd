package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/logging"
)

// Namespaces of the two persisted snapshots.
const (
	AuthNamespace = "mindcare-auth-storage"
	ChatNamespace = "mindcare-chat-storage"
)

// SnapshotVersion is the version written by Save*.
const SnapshotVersion = 1

// ErrUnsupportedVersion is returned for snapshots written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// upgrade rewrites a state document from version N to N+1.
type upgrade func(state json.RawMessage) (json.RawMessage, error)

// Snapshots reads and writes the versioned auth and chat documents.
type Snapshots struct {
	kv  KV
	log *logging.Logger

	chatUpgrades map[int]upgrade
	authUpgrades map[int]upgrade
}

// NewSnapshots creates a snapshot codec over kv.
func NewSnapshots(kv KV, log *logging.Logger) *Snapshots {
	return &Snapshots{
		kv:           kv,
		log:          log.Sub("snapshots"),
		chatUpgrades: map[int]upgrade{0: upgradeChatV0},
		authUpgrades: map[int]upgrade{0: upgradeAuthV0},
	}
}

// LoadChat returns the chat snapshot; ok is false when nothing is stored.
func (s *Snapshots) LoadChat() (domain.ChatSnapshot, bool, error) {
	var snap domain.ChatSnapshot
	ok, err := s.load(ChatNamespace, s.chatUpgrades, &snap)
	return snap, ok, err
}

// SaveChat stores the chat snapshot at the current version.
func (s *Snapshots) SaveChat(snap domain.ChatSnapshot) error {
	return s.save(ChatNamespace, snap)
}

// LoadAuth returns the auth snapshot; ok is false when nothing is stored.
func (s *Snapshots) LoadAuth() (domain.AuthSnapshot, bool, error) {
	var snap domain.AuthSnapshot
	ok, err := s.load(AuthNamespace, s.authUpgrades, &snap)
	return snap, ok, err
}

// SaveAuth stores the auth snapshot at the current version.
func (s *Snapshots) SaveAuth(snap domain.AuthSnapshot) error {
	return s.save(AuthNamespace, snap)
}

// Clear removes both namespaces.
func (s *Snapshots) Clear() error {
	for _, ns := range []string{AuthNamespace, ChatNamespace} {
		if err := s.kv.Delete(ns); err != nil {
			return err
		}
	}
	s.log.Info().Msg("storage cleared")
	return nil
}

func (s *Snapshots) save(namespace string, state any) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", namespace, err)
	}
	doc, err := json.Marshal(envelope{Version: SnapshotVersion, State: raw})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", namespace, err)
	}
	return s.kv.Put(namespace, doc)
}

func (s *Snapshots) load(namespace string, upgrades map[int]upgrade, out any) (bool, error) {
	doc, ok, err := s.kv.Get(namespace)
	if err != nil || !ok {
		return false, err
	}

	env, err := decodeEnvelope(doc)
	if err != nil {
		return false, fmt.Errorf("decoding %s: %w", namespace, err)
	}
	if env.Version > SnapshotVersion {
		return false, fmt.Errorf("%s version %d: %w", namespace, env.Version, ErrUnsupportedVersion)
	}

	state := env.State
	for v := env.Version; v < SnapshotVersion; v++ {
		up, ok := upgrades[v]
		if !ok {
			return false, fmt.Errorf("%s: no migration from version %d", namespace, v)
		}
		if state, err = up(state); err != nil {
			return false, fmt.Errorf("migrating %s from version %d: %w", namespace, v, err)
		}
		s.log.Info().Str("namespace", namespace).Int("from", v).Int("to", v+1).Msg("snapshot migrated")
	}

	if err := json.Unmarshal(state, out); err != nil {
		return false, fmt.Errorf("decoding %s state: %w", namespace, err)
	}
	return true, nil
}

// decodeEnvelope accepts the versioned envelope and a bare state document,
// which is treated as version 0.
func decodeEnvelope(doc []byte) (envelope, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(doc, &probe); err != nil {
		return envelope{}, err
	}
	state, hasState := probe["state"]
	if !hasState {
		return envelope{Version: 0, State: doc}, nil
	}
	env := envelope{State: state}
	if v, ok := probe["version"]; ok {
		if err := json.Unmarshal(v, &env.Version); err != nil {
			return envelope{}, fmt.Errorf("version: %w", err)
		}
	}
	return env, nil
}

// Version 0 is the browser format: epoch-millisecond timestamps, the
// session language optional and transient flags stored alongside.

type legacyMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type legacySession struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Messages  []legacyMessage `json:"messages"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
	Language  string          `json:"language"`
}

type legacyChat struct {
	Sessions         []legacySession `json:"sessions"`
	CurrentSessionID *string         `json:"currentSessionId"`
	Language         string          `json:"language"`
}

func upgradeChatV0(state json.RawMessage) (json.RawMessage, error) {
	var old legacyChat
	if err := json.Unmarshal(state, &old); err != nil {
		return nil, err
	}

	storeLang := legacyLanguage(old.Language, domain.DefaultLanguage)
	snap := domain.ChatSnapshot{
		Sessions: make([]domain.Session, 0, len(old.Sessions)),
		Language: storeLang,
	}
	if old.CurrentSessionID != nil {
		snap.CurrentSessionID = *old.CurrentSessionID
	}

	for _, ls := range old.Sessions {
		sess := domain.Session{
			ID:        ls.ID,
			Title:     ls.Title,
			Messages:  make([]domain.Message, 0, len(ls.Messages)),
			CreatedAt: time.UnixMilli(ls.CreatedAt).UTC(),
			UpdatedAt: time.UnixMilli(ls.UpdatedAt).UTC(),
			Language:  legacyLanguage(ls.Language, storeLang),
		}
		for _, lm := range ls.Messages {
			sess.Messages = append(sess.Messages, domain.Message{
				ID:        lm.ID,
				Role:      domain.Role(lm.Role),
				Content:   lm.Content,
				Timestamp: time.UnixMilli(lm.Timestamp).UTC(),
			})
		}
		snap.Sessions = append(snap.Sessions, sess)
	}
	return json.Marshal(snap)
}

func legacyLanguage(tag string, fallback domain.Language) domain.Language {
	if l, ok := domain.ParseLanguage(tag); ok {
		return l
	}
	return fallback
}

type legacyAuth struct {
	User            *domain.User `json:"user"`
	Token           *string      `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

func upgradeAuthV0(state json.RawMessage) (json.RawMessage, error) {
	var old legacyAuth
	if err := json.Unmarshal(state, &old); err != nil {
		return nil, err
	}
	snap := domain.AuthSnapshot{User: old.User, IsAuthenticated: old.IsAuthenticated}
	if old.Token != nil {
		snap.Token = *old.Token
	}
	return json.Marshal(snap)
}
