package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mindcareai/mindcare/internal/auth"
	"github.com/mindcareai/mindcare/internal/chat"
	"github.com/mindcareai/mindcare/internal/config"
	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/llm"
	"github.com/mindcareai/mindcare/internal/notify"
	"github.com/mindcareai/mindcare/internal/store"
	"github.com/mindcareai/mindcare/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token-123"

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Gateway.Auth.Mode = "token"
	cfg.Gateway.Auth.Token = testToken
	cfg.Voice.ReconnectDelayMs = 10
	cfg.Voice.LanguageRestartDelayMs = 5
	return cfg
}

func newTestGateway(t *testing.T) (*Server, *httptest.Server) {
	return newTestGatewayWith(t, &llm.MockClient{})
}

func newTestGatewayWith(t *testing.T, engine llm.Client) (*Server, *httptest.Server) {
	t.Helper()
	log := testLog()
	cfg := testConfig()

	clients := NewClientRegistry(log)
	hm := hooks.NewManager(log)
	snaps := store.NewSnapshots(store.NewMemoryKV(), log)

	chatStore := chat.NewStore(chat.Options{
		Engine:          engine,
		Persister:       snaps,
		Notifier:        clients,
		Hooks:           hm,
		Log:             log,
		DefaultLanguage: domain.Language(cfg.Chat.DefaultLanguage),
	})
	users := auth.NewService(auth.Options{
		Persister:       snaps,
		Notifier:        clients,
		Hooks:           hm,
		Log:             log,
		LoginLatency:    -1,
		RegisterLatency: -1,
		Language:        chatStore.Language,
	})
	raw := map[string]any{
		"gateway": map[string]any{
			"port": 18790,
			"auth": map[string]any{"token": testToken},
		},
		"logging": map[string]any{"level": "info"},
	}

	srv := New(cfg, log,
		WithConfigRaw(raw),
		WithChat(chatStore),
		WithAuth(users),
		WithHooks(hm),
		WithClients(clients),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

// --- websocket test client ---

type wsClient struct {
	t      *testing.T
	conn   *websocket.Conn
	hello  HelloOK
	events []Frame
	n      int
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func connectFrame(token string, caps ...string) Frame {
	f, _ := NewRequest("connect-1", "connect", ConnectParams{
		MinProtocol: ProtocolVersion,
		MaxProtocol: ProtocolVersion,
		Client:      ClientInfo{ID: "test-browser", Version: "1.0.0", Platform: "linux", Mode: "browser"},
		Auth:        &ConnectAuth{Token: token},
		Caps:        caps,
	})
	return f
}

// rawHandshake reads the challenge and answers with connect.
func rawHandshake(t *testing.T, ts *httptest.Server, connect Frame) (*websocket.Conn, Frame) {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var challenge Frame
	require.NoError(t, conn.ReadJSON(&challenge))
	require.Equal(t, FrameTypeEvent, challenge.Type)
	require.Equal(t, EventChallenge, challenge.Event)

	require.NoError(t, conn.WriteJSON(connect))
	var res Frame
	require.NoError(t, conn.ReadJSON(&res))
	return conn, res
}

func dial(t *testing.T, ts *httptest.Server, caps ...string) *wsClient {
	t.Helper()
	conn, res := rawHandshake(t, ts, connectFrame(testToken, caps...))
	require.NotNil(t, res.OK)
	require.True(t, *res.OK, "handshake rejected: %+v", res.Error)

	c := &wsClient{t: t, conn: conn}
	require.NoError(t, json.Unmarshal(res.Payload, &c.hello))
	return c
}

func (c *wsClient) read() Frame {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	require.NoError(c.t, c.conn.ReadJSON(&f))
	return f
}

// call sends a request and returns its response, buffering events seen
// on the way.
func (c *wsClient) call(method string, params any) Frame {
	c.t.Helper()
	c.n++
	id := fmt.Sprintf("req-%d", c.n)
	req, err := NewRequest(id, method, params)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(req))
	for {
		f := c.read()
		if f.Type == FrameTypeResponse && f.ID == id {
			return f
		}
		c.events = append(c.events, f)
	}
}

// eventWhere returns the first event named name that satisfies match.
func (c *wsClient) eventWhere(name string, match func(Frame) bool) Frame {
	c.t.Helper()
	for i, f := range c.events {
		if f.Event == name && match(f) {
			c.events = append(c.events[:i], c.events[i+1:]...)
			return f
		}
	}
	for {
		f := c.read()
		if f.Type == FrameTypeEvent && f.Event == name && match(f) {
			return f
		}
		c.events = append(c.events, f)
	}
}

func (c *wsClient) event(name string) Frame {
	c.t.Helper()
	return c.eventWhere(name, func(Frame) bool { return true })
}

func (c *wsClient) notification(key notify.Key) NotifyPayload {
	c.t.Helper()
	var p NotifyPayload
	c.eventWhere(EventNotify, func(f Frame) bool {
		require.NoError(c.t, json.Unmarshal(f.Payload, &p))
		return p.Key == string(key)
	})
	return p
}

func (c *wsClient) capability(command string) CapabilityCommand {
	c.t.Helper()
	var cmd CapabilityCommand
	c.eventWhere(EventVoiceCapability, func(f Frame) bool {
		require.NoError(c.t, json.Unmarshal(f.Payload, &cmd))
		return cmd.Command == command
	})
	return cmd
}

func decode[T any](t *testing.T, f Frame) T {
	t.Helper()
	require.NotNil(t, f.OK, "not a response: %+v", f)
	require.True(t, *f.OK, "request failed: %+v", f.Error)
	var v T
	require.NoError(t, json.Unmarshal(f.Payload, &v))
	return v
}

func requireError(t *testing.T, f Frame, code string) *ErrorShape {
	t.Helper()
	require.NotNil(t, f.OK)
	require.False(t, *f.OK)
	require.NotNil(t, f.Error)
	assert.Equal(t, code, f.Error.Code, f.Error.Message)
	return f.Error
}

// --- HTTP ---

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestGateway(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Nil(t, health.Build, "public endpoint exposes status only")
}

func TestNotFoundEndpoint(t *testing.T) {
	_, ts := newTestGateway(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// --- handshake ---

func TestHandshake(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)

	assert.Equal(t, ProtocolVersion, c.hello.Protocol)
	assert.NotEmpty(t, c.hello.Server.ConnID)
	assert.Contains(t, c.hello.Features.Methods, "chat.send")
	assert.Contains(t, c.hello.Features.Events, EventChatUpdated)
	assert.Equal(t, maxPayload, c.hello.Policy.MaxPayload)

	require.NotNil(t, c.hello.State.Chat)
	assert.Empty(t, c.hello.State.Chat.Sessions)
	assert.Equal(t, domain.LanguageFrench, c.hello.State.Chat.Language)
	require.NotNil(t, c.hello.State.Auth)
	assert.False(t, c.hello.State.Auth.IsAuthenticated)

	assert.False(t, c.hello.State.Voice.IsAvailable)
	assert.Equal(t, voice.StateUnavailable, c.hello.State.Voice.State)
}

func TestHandshake_Rejections(t *testing.T) {
	health, _ := NewRequest("r1", "health", nil)
	tooNew, _ := NewRequest("r1", "connect", ConnectParams{MinProtocol: ProtocolVersion + 1, MaxProtocol: ProtocolVersion + 1, Auth: &ConnectAuth{Token: testToken}})

	tests := []struct {
		name    string
		connect Frame
		code    string
	}{
		{"wrong token", connectFrame("wrong"), CodeUnauthorized},
		{"not a connect request", health, CodeProtocol},
		{"unsupported protocol", tooNew, CodeProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestGateway(t)
			_, res := rawHandshake(t, ts, tt.connect)
			requireError(t, res, tt.code)
		})
	}
}

// --- generic RPC ---

func TestRPC_Health(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)

	h := decode[HealthResponse](t, c.call("health", nil))
	assert.Equal(t, "ok", h.Status)
	require.NotNil(t, h.Build)
	assert.Equal(t, "dev", h.Build.Version)
	assert.Equal(t, 1, h.Clients)
}

func TestRPC_ConfigGet(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)

	got := decode[map[string]any](t, c.call("config.get", configGetParams{Key: "gateway.port"}))
	assert.Equal(t, float64(18790), got["value"])

	requireError(t, c.call("config.get", configGetParams{Key: "gateway.auth.token"}), CodeForbidden)
	requireError(t, c.call("config.get", configGetParams{Key: "logging.file"}), CodeNotFound)
	requireError(t, c.call("config.get", configGetParams{}), CodeInvalidParams)
	requireError(t, c.call("config.get", configGetParams{Key: "logging..level"}), CodeInvalidParams)
}

func TestRPC_UnknownMethod(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)
	requireError(t, c.call("nonexistent.method", nil), CodeMethodNotFound)
}

// --- chat ---

func TestChat_SendFlow(t *testing.T) {
	engine := &llm.MockClient{}
	_, ts := newTestGatewayWith(t, engine)
	c := dial(t, ts)

	ensured := decode[map[string]any](t, c.call("chat.ensure", nil))
	sessionID, _ := ensured["sessionId"].(string)
	require.NotEmpty(t, sessionID)

	st := decode[ChatState](t, c.call("chat.send", chatSendParams{Content: "Hello, I feel anxious today"}))
	require.Len(t, st.Sessions, 1)
	sess := st.Sessions[0]
	assert.Equal(t, sessionID, st.CurrentSessionID)
	assert.False(t, st.IsLoading)
	assert.Equal(t, domain.LanguageEnglish, st.Language)
	assert.Equal(t, domain.LanguageEnglish, sess.Language)
	assert.Equal(t, "Hello, I feel anxious today", sess.Title)
	require.Len(t, sess.Messages, 4)
	assert.Equal(t, domain.RoleSystem, sess.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, domain.RoleUser, sess.Messages[2].Role)
	assert.Equal(t, "mock response", sess.Messages[3].Content)

	require.Len(t, engine.Calls(), 1)
	assert.Equal(t, domain.LanguageEnglish, engine.Calls()[0].Language)

	var upd ChatUpdate
	c.eventWhere(EventChatUpdated, func(f Frame) bool {
		require.NoError(t, json.Unmarshal(f.Payload, &upd))
		return upd.Event == string(hooks.EventLanguageChanged)
	})
	assert.Equal(t, sessionID, upd.SessionID)
	assert.Equal(t, "en-US", upd.Data["language"])
}

func TestChat_SendWhileLoadingIsBusy(t *testing.T) {
	release := make(chan struct{})
	engine := &llm.MockClient{ReplyFunc: func(ctx context.Context, _ []domain.Message, _ domain.Language) (string, error) {
		select {
		case <-release:
			return "done", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}
	srv, ts := newTestGatewayWith(t, engine)
	a := dial(t, ts)
	b := dial(t, ts)

	decode[map[string]any](t, a.call("chat.create", nil))

	first, err := NewRequest("slow", "chat.send", chatSendParams{Content: "bonjour"})
	require.NoError(t, err)
	require.NoError(t, a.conn.WriteJSON(first))
	require.Eventually(t, srv.chat.IsLoading, 2*time.Second, 5*time.Millisecond)

	shape := requireError(t, b.call("chat.send", chatSendParams{Content: "encore"}), CodeBusy)
	assert.True(t, shape.Retryable)

	close(release)
	for {
		f := a.read()
		if f.Type == FrameTypeResponse && f.ID == "slow" {
			st := decode[ChatState](t, f)
			assert.False(t, st.IsLoading)
			last := st.Sessions[0].Messages[len(st.Sessions[0].Messages)-1]
			assert.Equal(t, "done", last.Content)
			break
		}
	}
}

func TestChat_SendValidation(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)

	requireError(t, c.call("chat.send", chatSendParams{Content: "   "}), CodeInvalidParams)
	requireError(t, c.call("chat.send", chatSendParams{Content: "hi"}), CodeInvalidState)
	requireError(t, c.call("chat.send", chatSendParams{Content: "hi", SessionID: "missing"}), CodeNotFound)
}

func TestChat_SessionManagement(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)

	first := decode[map[string]any](t, c.call("chat.create", nil))["sessionId"].(string)
	second := decode[map[string]any](t, c.call("chat.create", nil))["sessionId"].(string)

	st := decode[ChatState](t, c.call("chat.state", nil))
	require.Len(t, st.Sessions, 2)
	assert.Equal(t, second, st.Sessions[0].ID, "newest first")
	assert.Equal(t, second, st.CurrentSessionID)

	st = decode[ChatState](t, c.call("chat.select", sessionParams{SessionID: first}))
	assert.Equal(t, first, st.CurrentSessionID)
	requireError(t, c.call("chat.select", sessionParams{SessionID: "missing"}), CodeNotFound)
	requireError(t, c.call("chat.select", nil), CodeInvalidParams)

	st = decode[ChatState](t, c.call("chat.rename", chatRenameParams{SessionID: first, Title: "Morning check-in"}))
	assert.Equal(t, "Morning check-in", st.Sessions[1].Title)
	requireError(t, c.call("chat.rename", chatRenameParams{SessionID: "missing", Title: "x"}), CodeNotFound)

	st = decode[ChatState](t, c.call("chat.delete", sessionParams{SessionID: first}))
	require.Len(t, st.Sessions, 1)
	assert.Equal(t, second, st.CurrentSessionID, "current moves to the newest remaining session")

	st = decode[ChatState](t, c.call("chat.language", languageParams{Language: "de-DE"}))
	assert.Equal(t, domain.LanguageGerman, st.Language)
	requireError(t, c.call("chat.language", languageParams{Language: "xx-XX"}), CodeInvalidParams)

	st = decode[ChatState](t, c.call("chat.reset", nil))
	assert.Empty(t, st.Sessions)
	assert.Empty(t, st.CurrentSessionID)
}

func TestChat_UpdatesReachOtherClients(t *testing.T) {
	_, ts := newTestGateway(t)
	a := dial(t, ts)
	b := dial(t, ts)

	created := decode[map[string]any](t, a.call("chat.create", nil))

	var upd ChatUpdate
	b.eventWhere(EventChatUpdated, func(f Frame) bool {
		require.NoError(t, json.Unmarshal(f.Payload, &upd))
		return upd.Event == string(hooks.EventSessionCreated)
	})
	assert.Equal(t, created["sessionId"], upd.SessionID)
	require.Len(t, upd.State.Sessions, 1)
}

func TestChat_ReplyFailureNotifies(t *testing.T) {
	engine := &llm.MockClient{ReplyFunc: func(context.Context, []domain.Message, domain.Language) (string, error) {
		return "", &llm.ProviderError{Provider: "mock", Message: "down"}
	}}
	_, ts := newTestGatewayWith(t, engine)
	c := dial(t, ts)

	decode[map[string]any](t, c.call("chat.ensure", nil))
	st := decode[ChatState](t, c.call("chat.send", chatSendParams{Content: "bonjour"}))
	assert.Len(t, st.Sessions[0].Messages, 3, "no reply is appended")
	assert.False(t, st.IsLoading)

	n := c.notification(notify.KeyChatReplyFailed)
	assert.Equal(t, "error", n.Severity)
	assert.NotEmpty(t, n.Text)
}

func TestChat_ReplyRunsWithoutDeadline(t *testing.T) {
	var hasDeadline, cancellable atomic.Bool
	engine := &llm.MockClient{ReplyFunc: func(ctx context.Context, _ []domain.Message, _ domain.Language) (string, error) {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
		cancellable.Store(ctx.Done() != nil)
		return "je suis là", nil
	}}
	_, ts := newTestGatewayWith(t, engine)
	c := dial(t, ts)

	decode[map[string]any](t, c.call("chat.ensure", nil))
	st := decode[ChatState](t, c.call("chat.send", chatSendParams{Content: "bonjour"}))
	require.Len(t, engine.Calls(), 1)
	assert.False(t, hasDeadline.Load())
	assert.False(t, cancellable.Load())
	assert.Equal(t, "je suis là", st.Sessions[0].Messages[3].Content)
}

// --- auth ---

func TestAuth_LoginLogout(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)

	p := decode[AuthPayload](t, c.call("auth.login", loginParams{Email: "sam@example.com", Password: "pw"}))
	assert.True(t, p.IsAuthenticated)
	assert.Equal(t, auth.MockToken, p.Token)
	require.NotNil(t, p.User)
	assert.Equal(t, "sam", p.User.Username)

	assert.Equal(t, "success", c.notification(notify.KeyAuthLoginSuccess).Severity)
	c.event(EventAuthUpdated)

	st := decode[AuthPayload](t, c.call("auth.state", nil))
	assert.True(t, st.IsAuthenticated)

	out := decode[AuthPayload](t, c.call("auth.logout", nil))
	assert.False(t, out.IsAuthenticated)
	assert.Nil(t, out.User)
}

func TestAuth_RegisterValidation(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)

	requireError(t, c.call("auth.register", registerParams{Username: "sam", Email: "sam@example.com", Password: "a", ConfirmPassword: "b"}), CodeInvalidParams)
	c.notification(notify.KeyAuthPasswordMismatch)

	requireError(t, c.call("auth.login", loginParams{Email: "sam@example.com"}), CodeInvalidParams)
	c.notification(notify.KeyAuthMissingFields)

	p := decode[AuthPayload](t, c.call("auth.register", registerParams{Username: "sam", Email: "sam@example.com", Password: "a", ConfirmPassword: "a"}))
	assert.True(t, p.IsAuthenticated)
	assert.Equal(t, "sam", p.User.Username)
}

// --- voice ---

func TestVoice_Unavailable(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts)

	requireError(t, c.call("voice.start", nil), CodeUnavailable)
	n := c.notification(notify.KeyVoiceUnavailable)
	assert.Equal(t, domain.LanguageFrench, n.Language)

	st := decode[voice.Snapshot](t, c.call("voice.state", nil))
	assert.False(t, st.IsAvailable)
	assert.False(t, st.IsListening)
}

func TestVoice_RemoteRecognizerCycle(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts, CapSpeechRecognition)
	require.True(t, c.hello.State.Voice.IsAvailable)
	require.Equal(t, voice.StateIdle, c.hello.State.Voice.State)

	st := decode[voice.Snapshot](t, c.call("voice.start", nil))
	assert.Equal(t, voice.StateStarting, st.State)
	cmd := c.capability("start")
	require.NotNil(t, cmd.Settings)
	assert.Equal(t, voice.Settings{Language: domain.LanguageFrench, Continuous: true, InterimResults: true}, *cmd.Settings)

	st = decode[voice.Snapshot](t, c.call("voice.event", VoiceEventParams{Type: "start"}))
	assert.Equal(t, voice.StateListening, st.State)
	assert.True(t, st.IsListening)

	st = decode[voice.Snapshot](t, c.call("voice.event", VoiceEventParams{Type: "result", Results: []voice.Result{
		{Transcript: "je me sens", IsFinal: true},
		{Transcript: "fatigué", IsFinal: false},
	}}))
	assert.Equal(t, "je me sens fatigué", st.Transcript)

	// a network error schedules a restart that reaches the browser as another start
	st = decode[voice.Snapshot](t, c.call("voice.event", VoiceEventParams{Type: "error", Error: voice.KindNetwork}))
	assert.Equal(t, voice.StateReconnecting, st.State)
	assert.Equal(t, 1, st.ReconnectionAttempts)
	assert.True(t, st.IsListening)
	c.notification(notify.KeyVoiceReconnecting)
	c.capability("start")

	st = decode[voice.Snapshot](t, c.call("voice.event", VoiceEventParams{Type: "start"}))
	assert.Equal(t, voice.StateListening, st.State)
	assert.Equal(t, 0, st.ReconnectionAttempts, "a successful restart refills the budget")

	st = decode[voice.Snapshot](t, c.call("voice.stop", nil))
	assert.Equal(t, voice.StateStopped, st.State)
	assert.False(t, st.IsListening)
	c.capability("stop")

	st = decode[voice.Snapshot](t, c.call("voice.event", VoiceEventParams{Type: "end"}))
	assert.Equal(t, voice.StateIdle, st.State)
	assert.Equal(t, "je me sens fatigué", st.Transcript)

	st = decode[voice.Snapshot](t, c.call("voice.clear", nil))
	assert.Empty(t, st.Transcript)

	var pushed voice.Snapshot
	c.eventWhere(EventVoiceState, func(f Frame) bool {
		require.NoError(t, json.Unmarshal(f.Payload, &pushed))
		return pushed.State == voice.StateReconnecting
	})
	assert.Equal(t, 1, pushed.ReconnectionAttempts)
}

func TestVoice_FollowsChatLanguage(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts, CapSpeechRecognition)

	decode[voice.Snapshot](t, c.call("voice.start", nil))
	c.capability("start")
	decode[voice.Snapshot](t, c.call("voice.event", VoiceEventParams{Type: "start"}))

	decode[ChatState](t, c.call("chat.language", languageParams{Language: "en-US"}))
	c.capability("stop")
	cmd := c.capability("start")
	require.NotNil(t, cmd.Settings)
	assert.Equal(t, domain.LanguageEnglish, cmd.Settings.Language)

	st := decode[voice.Snapshot](t, c.call("voice.event", VoiceEventParams{Type: "start"}))
	assert.Equal(t, voice.StateListening, st.State)
	assert.Equal(t, domain.LanguageEnglish, st.Language)
	assert.Equal(t, 0, st.ReconnectionAttempts)
}

func TestVoice_LanguageAndEventValidation(t *testing.T) {
	_, ts := newTestGateway(t)
	c := dial(t, ts, CapSpeechRecognition)

	st := decode[voice.Snapshot](t, c.call("voice.language", languageParams{Language: "it-IT"}))
	assert.Equal(t, domain.LanguageItalian, st.Language)
	requireError(t, c.call("voice.language", languageParams{Language: "klingon"}), CodeInvalidParams)

	requireError(t, c.call("voice.event", VoiceEventParams{Type: "explode"}), CodeInvalidParams)
	requireError(t, c.call("voice.event", VoiceEventParams{Type: "error"}), CodeInvalidParams)
}

// --- lifecycle ---

func TestServerStart(t *testing.T) {
	cfg := testConfig()
	cfg.Gateway.Port = 0
	srv := New(cfg, testLog())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
