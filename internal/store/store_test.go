package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", silentLog())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	require.NoError(t, db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, v)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.migrate())

	var count int
	require.NoError(t, db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)
}

func TestOpen_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindcare.db")

	db, err := Open(path, silentLog())
	require.NoError(t, err)
	_, err = db.sql.Exec("INSERT INTO schema_migrations (version) VALUES (?)", migrations[len(migrations)-1].Version+1)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path, silentLog())
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestOpen_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mindcare.db")

	db, err := Open(path, silentLog())
	require.NoError(t, err)
	require.NoError(t, NewSQLiteKV(db).Put("ns", []byte(`{"a":1}`)))
	require.NoError(t, db.Close())

	db, err = Open(path, silentLog())
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := NewSQLiteKV(db).Get("ns")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v))
}

// --- KV tests, run against both backends ---

func kvBackends(t *testing.T) map[string]KV {
	return map[string]KV{
		"sqlite": NewSQLiteKV(testDB(t)),
		"memory": NewMemoryKV(),
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := kv.Get("nothing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, v)
		})
	}
}

func TestKV_PutOverwriteDelete(t *testing.T) {
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Put("b", []byte("one")))
			require.NoError(t, kv.Put("a", []byte("x")))
			require.NoError(t, kv.Put("b", []byte("two")))

			v, ok, err := kv.Get("b")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "two", string(v))

			ns, err := kv.Namespaces()
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, ns)

			require.NoError(t, kv.Delete("b"))
			require.NoError(t, kv.Delete("b"))
			_, ok, err = kv.Get("b")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	buf := []byte("abc")
	require.NoError(t, kv.Put("ns", buf))
	buf[0] = 'z'

	v, _, _ := kv.Get("ns")
	assert.Equal(t, "abc", string(v))
	v[1] = 'z'
	again, _, _ := kv.Get("ns")
	assert.Equal(t, "abc", string(again))
}

// --- Snapshot tests ---

func sampleChat() domain.ChatSnapshot {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return domain.ChatSnapshot{
		Sessions: []domain.Session{{
			ID:    "s1",
			Title: "Hello there",
			Messages: []domain.Message{
				{ID: "m1", Role: domain.RoleSystem, Content: "sys", Timestamp: ts},
				{ID: "m2", Role: domain.RoleAssistant, Content: "hi", Timestamp: ts},
			},
			CreatedAt: ts,
			UpdatedAt: ts,
			Language:  domain.LanguageEnglish,
		}},
		CurrentSessionID: "s1",
		Language:         domain.LanguageEnglish,
	}
}

func TestSnapshots_ChatRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	s := NewSnapshots(kv, silentLog())

	_, ok, err := s.LoadChat()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveChat(sampleChat()))

	raw, _, _ := kv.Get(ChatNamespace)
	assert.Contains(t, string(raw), `"version":1`)

	got, ok, err := s.LoadChat()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleChat(), got)
}

func TestSnapshots_AuthRoundTrip(t *testing.T) {
	s := NewSnapshots(NewSQLiteKV(testDB(t)), silentLog())

	want := domain.AuthSnapshot{
		User:            &domain.User{ID: "1", Email: "ana@example.com", Username: "ana"},
		Token:           "mock-jwt-token",
		IsAuthenticated: true,
	}
	require.NoError(t, s.SaveAuth(want))

	got, ok, err := s.LoadAuth()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSnapshots_MigratesLegacyChat(t *testing.T) {
	kv := NewMemoryKV()
	legacy := `{"state":{"sessions":[{"id":"abc","title":"Nouvelle Conversation",
		"messages":[{"id":"1","role":"system","content":"sys","timestamp":1700000000000},
		            {"id":"2","role":"assistant","content":"Bonjour","timestamp":1700000000500}],
		"createdAt":1700000000000,"updatedAt":1700000000500}],
		"currentSessionId":"abc","language":"es-ES","isLoading":false},"version":0}`
	require.NoError(t, kv.Put(ChatNamespace, []byte(legacy)))

	snap, ok, err := NewSnapshots(kv, silentLog()).LoadChat()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "abc", snap.CurrentSessionID)
	assert.Equal(t, domain.LanguageSpanish, snap.Language)
	require.Len(t, snap.Sessions, 1)
	sess := snap.Sessions[0]
	assert.Equal(t, domain.LanguageSpanish, sess.Language, "missing session language falls back to store language")
	assert.True(t, time.UnixMilli(1700000000000).UTC().Equal(sess.CreatedAt))
	assert.True(t, time.UnixMilli(1700000000500).UTC().Equal(sess.UpdatedAt))
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, domain.RoleAssistant, sess.Messages[1].Role)
	assert.True(t, time.UnixMilli(1700000000500).UTC().Equal(sess.Messages[1].Timestamp))
}

func TestSnapshots_MigratesBareLegacyAuth(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(AuthNamespace, []byte(`{"user":null,"token":null,"isAuthenticated":false,"isLoading":false}`)))

	snap, ok, err := NewSnapshots(kv, silentLog()).LoadAuth()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
	assert.False(t, snap.IsAuthenticated)
}

func TestSnapshots_NullCurrentSession(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ChatNamespace, []byte(`{"state":{"sessions":[],"currentSessionId":null,"language":"fr-FR"},"version":0}`)))

	snap, ok, err := NewSnapshots(kv, silentLog()).LoadChat()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, snap.CurrentSessionID)
	assert.Empty(t, snap.Sessions)
}

func TestSnapshots_FutureVersion(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ChatNamespace, []byte(`{"version":9,"state":{}}`)))

	_, ok, err := NewSnapshots(kv, silentLog()).LoadChat()
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestSnapshots_Corrupt(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(AuthNamespace, []byte(`not json`)))

	_, ok, err := NewSnapshots(kv, silentLog()).LoadAuth()
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestSnapshots_Clear(t *testing.T) {
	kv := NewMemoryKV()
	s := NewSnapshots(kv, silentLog())
	require.NoError(t, s.SaveChat(sampleChat()))
	require.NoError(t, s.SaveAuth(domain.AuthSnapshot{}))
	require.NoError(t, kv.Put("other", []byte("{}")))

	require.NoError(t, s.Clear())

	ns, err := kv.Namespaces()
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, ns)
}
