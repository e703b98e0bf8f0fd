package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mindcareai/mindcare/internal/auth"
	"github.com/mindcareai/mindcare/internal/chat"
	"github.com/mindcareai/mindcare/internal/config"
	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/llm"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/mindcareai/mindcare/internal/notify"
	"github.com/mindcareai/mindcare/internal/plugin"
	"github.com/mindcareai/mindcare/internal/store"
)

// services is the application core every command runs against.
type services struct {
	cfg   config.Config
	log   *logging.Logger
	db    *store.DB
	snaps *store.Snapshots
	hooks *hooks.Manager
	chat  *chat.Store
	users *auth.Service

	plugins *plugin.Registry
	journal io.Closer
}

// loadConfig reads and validates the config file.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// openStore opens the configured key-value backend. db is nil for the
// memory driver.
func openStore(cfg config.Config, lg *logging.Logger) (store.KV, *store.DB, error) {
	if cfg.Store.Driver == "memory" {
		lg.Debug().Msg("using in-memory store")
		return store.NewMemoryKV(), nil, nil
	}
	path := paths.StorePath(cfg.Store)
	db, err := store.Open(path, lg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	lg.Debug().Str("path", path).Msg("using SQLite store")
	return store.NewSQLiteKV(db), db, nil
}

// openServices wires persistence, hooks, the reply engine, the chat store
// and the auth service, then rehydrates both from the store.
func openServices(cfg config.Config, n notify.Notifier, lg *logging.Logger) (*services, error) {
	kv, db, err := openStore(cfg, lg)
	if err != nil {
		return nil, err
	}
	s := &services{
		cfg:   cfg,
		log:   lg,
		db:    db,
		snaps: store.NewSnapshots(kv, lg),
		hooks: hooks.NewManager(lg),
	}

	lang, ok := domain.ParseLanguage(cfg.Chat.DefaultLanguage)
	if !ok {
		lang = domain.DefaultLanguage
	}
	s.chat = chat.NewStore(chat.Options{
		Engine:          llm.NewCannedClient(cfg.Chat.ReplyLatency(), lg),
		Persister:       s.snaps,
		Notifier:        n,
		Hooks:           s.hooks,
		Log:             lg,
		DefaultLanguage: lang,
	})
	s.users = auth.NewService(auth.Options{
		Persister:       s.snaps,
		Notifier:        n,
		Hooks:           s.hooks,
		Log:             lg,
		LoginLatency:    cfg.Auth.LoginLatency(),
		RegisterLatency: cfg.Auth.RegisterLatency(),
		Language:        s.chat.Language,
	})

	s.plugins = plugin.NewRegistry(s.hooks, lg)
	if cfg.Logging.Journal != "" {
		if err := s.openJournal(cfg.Logging.Journal); err != nil {
			s.Close()
			return nil, err
		}
	}
	if err := s.plugins.InitAll(context.Background()); err != nil {
		s.Close()
		return nil, err
	}

	if err := s.chat.Load(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.users.Load(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// openJournal appends lifecycle events to path.
func (s *services) openJournal(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	s.journal = f
	return s.plugins.Register(plugin.NewJournal(f))
}

func (s *services) Close() error {
	var errs []error
	if s.plugins != nil {
		errs = append(errs, s.plugins.CloseAll())
	}
	if s.journal != nil {
		errs = append(errs, s.journal.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

// terminalNotifier prints notifications on w, one per line.
func terminalNotifier(w io.Writer) notify.Notifier {
	return notify.NotifierFunc(func(n notify.Notification) {
		fmt.Fprintf(w, "[%s] %s\n", n.Severity, n.Text())
	})
}
