package plugin

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPlugin struct {
	id         string
	initErr    error
	closeErr   error
	initCalls  int
	closeCalls int
	log        *[]string
}

func (p *testPlugin) ID() string      { return p.id }
func (p *testPlugin) Name() string    { return "Test " + p.id }
func (p *testPlugin) Version() string { return "1.0" }
func (p *testPlugin) Init(_ context.Context, _ API) error {
	p.initCalls++
	if p.log != nil {
		*p.log = append(*p.log, "init "+p.id)
	}
	return p.initErr
}
func (p *testPlugin) Close() error {
	p.closeCalls++
	if p.log != nil {
		*p.log = append(*p.log, "close "+p.id)
	}
	return p.closeErr
}

func testHooks() *hooks.Manager {
	return hooks.NewManager(logging.New(nil, "silent"))
}

func testRegistry() (*Registry, *hooks.Manager) {
	hm := testHooks()
	return NewRegistry(hm, logging.New(nil, "silent")), hm
}

func TestRegistry_Register(t *testing.T) {
	reg, _ := testRegistry()
	require.NoError(t, reg.Register(&testPlugin{id: "a"}))

	err := reg.Register(&testPlugin{id: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Equal(t, "a", reg.Get("a").ID())
	assert.Nil(t, reg.Get("missing"))
}

func TestRegistry_Lifecycle(t *testing.T) {
	reg, _ := testRegistry()
	var calls []string
	a := &testPlugin{id: "a", log: &calls}
	b := &testPlugin{id: "b", log: &calls}
	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(b))

	require.NoError(t, reg.InitAll(context.Background()))
	require.NoError(t, reg.CloseAll())
	assert.Equal(t, []string{"init a", "init b", "close b", "close a"}, calls)

	// closing twice does not close again
	require.NoError(t, reg.CloseAll())
	assert.Equal(t, 1, a.closeCalls)
}

func TestRegistry_InitFailureClosesStarted(t *testing.T) {
	reg, _ := testRegistry()
	a := &testPlugin{id: "a"}
	bad := &testPlugin{id: "bad", initErr: assert.AnError}
	c := &testPlugin{id: "c"}
	reg.Register(a)
	reg.Register(bad)
	reg.Register(c)

	err := reg.InitAll(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, 1, a.closeCalls)
	assert.Equal(t, 0, bad.closeCalls)
	assert.Equal(t, 0, c.initCalls)
}

func TestRegistry_CloseErrorsJoined(t *testing.T) {
	reg, _ := testRegistry()
	reg.Register(&testPlugin{id: "a", closeErr: assert.AnError})
	reg.Register(&testPlugin{id: "b"})
	require.NoError(t, reg.InitAll(context.Background()))

	err := reg.CloseAll()
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "close plugin a")
}

func TestRegistry_Info(t *testing.T) {
	reg, _ := testRegistry()
	reg.Register(&testPlugin{id: "x"})
	reg.Register(NewJournal(&bytes.Buffer{}))

	infos := reg.Info()
	require.Len(t, infos, 2)
	assert.Equal(t, Info{ID: "x", Name: "Test x", Version: "1.0"}, infos[0])
	assert.Equal(t, "journal", infos[1].ID)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestJournal_RecordsEvents(t *testing.T) {
	reg, hm := testRegistry()
	var buf bytes.Buffer
	j := NewJournal(&buf)
	require.NoError(t, reg.Register(j))
	require.NoError(t, reg.InitAll(context.Background()))

	ctx := context.Background()
	hm.Emit(ctx, hooks.Payload{Event: hooks.EventSessionCreated, SessionID: "s1", Data: map[string]any{"language": "fr-FR"}})
	hm.Emit(ctx, hooks.Payload{Event: hooks.EventSessionRenamed, SessionID: "s1", Data: map[string]any{"title": "I can't sleep"}})
	hm.Emit(ctx, hooks.Payload{Event: hooks.EventLoadingChanged, SessionID: "s1", Data: map[string]any{"loading": true}})
	assert.Equal(t, int64(3), j.Written())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "session_created", lines[0]["event"])
	assert.Equal(t, "s1", lines[0]["sessionId"])
	assert.Equal(t, "fr-FR", lines[0]["language"])
	assert.NotEmpty(t, lines[0]["time"])

	assert.Equal(t, "session_renamed", lines[1]["event"])
	assert.NotContains(t, lines[1], "title")

	assert.Equal(t, true, lines[2]["loading"])
}

func TestJournal_CloseUnsubscribes(t *testing.T) {
	reg, hm := testRegistry()
	var buf bytes.Buffer
	j := NewJournal(&buf)
	reg.Register(j)
	require.NoError(t, reg.InitAll(context.Background()))
	assert.Equal(t, 1, hm.Count(hooks.Any))

	require.NoError(t, reg.CloseAll())
	assert.Equal(t, 0, hm.Count(hooks.Any))

	hm.Emit(context.Background(), hooks.Payload{Event: hooks.EventAuthChanged})
	assert.Zero(t, j.Written())
	assert.Zero(t, buf.Len())
}
