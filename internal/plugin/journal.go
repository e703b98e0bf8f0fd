package plugin

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/version"
	"github.com/rs/zerolog"
)

// redactedKeys never reach the journal: titles are derived from what the
// user typed.
var redactedKeys = map[string]bool{"title": true}

// Journal appends one JSON line per lifecycle event. It records ids, roles,
// languages and flags, never message text.
type Journal struct {
	zl      zerolog.Logger
	hooks   *hooks.Manager
	written atomic.Int64
}

// NewJournal writes to w. The caller owns w.
func NewJournal(w io.Writer) *Journal {
	return &Journal{zl: zerolog.New(zerolog.SyncWriter(w)).With().Timestamp().Logger()}
}

func (j *Journal) ID() string      { return "journal" }
func (j *Journal) Name() string    { return "Activity journal" }
func (j *Journal) Version() string { return version.Version }

func (j *Journal) Init(_ context.Context, api API) error {
	j.hooks = api.Hooks
	j.hooks.On(hooks.Any, j.ID(), j.record)
	return nil
}

func (j *Journal) Close() error {
	if j.hooks != nil {
		j.hooks.Off(hooks.Any, j.ID())
	}
	return nil
}

// Written returns the number of lines recorded.
func (j *Journal) Written() int64 { return j.written.Load() }

func (j *Journal) record(_ context.Context, p hooks.Payload) error {
	ev := j.zl.Log().Str("event", string(p.Event))
	if p.SessionID != "" {
		ev = ev.Str("sessionId", p.SessionID)
	}
	for k, v := range p.Data {
		if !redactedKeys[k] {
			ev = ev.Interface(k, v)
		}
	}
	ev.Send()
	j.written.Add(1)
	return nil
}
