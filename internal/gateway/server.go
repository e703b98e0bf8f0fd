// Package gateway serves the browser front end over HTTP and WebSocket:
// RPC requests for chat, auth and voice, and pushed state updates.
package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mindcareai/mindcare/internal/auth"
	"github.com/mindcareai/mindcare/internal/chat"
	"github.com/mindcareai/mindcare/internal/config"
	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/hooks"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/mindcareai/mindcare/internal/version"
	"github.com/mindcareai/mindcare/internal/voice"
)

var ErrClientClosed = errors.New("client connection closed")

const (
	maxPayload       = 1 << 20
	handshakeTimeout = 10 * time.Second
	tickInterval     = 30 * time.Second
)

// Server is the MindCare gateway HTTP + WebSocket server.
type Server struct {
	cfg      config.Config
	auth     ResolvedAuth
	log      *logging.Logger
	clients  *ClientRegistry
	handlers map[string]RequestHandler

	mu        sync.RWMutex
	configRaw map[string]any

	chat    *chat.Store
	users   *auth.Service
	hooks   *hooks.Manager
	policy  voice.Policy
	sched   voice.Scheduler
	sending atomic.Bool

	startedAt   time.Time
	httpServer  *http.Server
	upgrader    websocket.Upgrader
	authLimiter *authRateLimiter
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithConfigRaw sets the raw config map served by config.get.
func WithConfigRaw(raw map[string]any) ServerOption {
	return func(s *Server) { s.configRaw = raw }
}

// WithChat serves the chat.* methods from store.
func WithChat(store *chat.Store) ServerOption {
	return func(s *Server) { s.chat = store }
}

// WithAuth serves the auth.* methods from svc.
func WithAuth(svc *auth.Service) ServerOption {
	return func(s *Server) { s.users = svc }
}

// WithHooks subscribes the server to lifecycle events so it can push
// chat.updated and auth.updated.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) { s.hooks = hm }
}

// WithClients shares a registry created ahead of the server, typically
// because it is already the notifier of the chat and auth services.
func WithClients(r *ClientRegistry) ServerOption {
	return func(s *Server) { s.clients = r }
}

// WithScheduler sets the timer source for per-connection voice controllers.
func WithScheduler(sched voice.Scheduler) ServerOption {
	return func(s *Server) { s.sched = sched }
}

// New creates a new gateway server.
func New(cfg config.Config, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:         cfg,
		auth:        ResolveAuth(cfg.Gateway.Auth),
		log:         log.Sub("gateway"),
		handlers:    make(map[string]RequestHandler),
		configRaw:   make(map[string]any),
		authLimiter: newAuthRateLimiter(),
		startedAt:   time.Now(),
		policy: voice.Policy{
			MaxReconnectAttempts: cfg.Voice.MaxReconnectAttempts,
			ReconnectDelay:       cfg.Voice.ReconnectDelay(),
			LanguageRestartDelay: cfg.Voice.LanguageRestartDelay(),
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.Gateway.AllowedOrigins),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clients == nil {
		s.clients = NewClientRegistry(log.Sub("clients"))
	}

	s.registerRPCHandlers()
	if s.hooks != nil {
		s.hooks.On(hooks.Any, "gateway.push", s.pushHook)
	}
	return s
}

// Clients returns the connected client registry.
func (s *Server) Clients() *ClientRegistry { return s.clients }

// checkWebSocketOrigin allows requests without an Origin header and those
// whose Origin is listed (or "*" is listed).
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isOriginAllowed(origin, allowed)
	}
}

// Handle registers an RPC method handler.
func (s *Server) Handle(method string, handler RequestHandler) {
	s.handlers[method] = handler
}

// Methods returns the registered RPC method names, sorted.
func (s *Server) Methods() []string {
	methods := make([]string, 0, len(s.handlers))
	for m := range s.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Events returns the event names the server may push.
func (s *Server) Events() []string {
	return []string{EventChallenge, EventNotify, EventVoiceState, EventVoiceCapability, EventChatUpdated, EventAuthUpdated}
}

func resolveBindAddr(cfg config.GatewayConfig) string {
	host := "127.0.0.1"
	switch cfg.Bind {
	case "lan", "auto":
		host = "0.0.0.0"
	case "custom":
		host = cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
	}
	return net.JoinHostPort(host, fmt.Sprint(cfg.Port))
}

// Handler returns the HTTP handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.Gateway.AllowedOrigins)
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Gateway)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.Gateway.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.Gateway.TLS.CertPath, s.cfg.Gateway.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12})
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Gateway.Bind != "loopback" {
		s.log.Warn().Msg("TLS is not enabled; gateway credentials travel in cleartext")
	}

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Gateway.Bind).
		Str("auth", s.auth.Mode).
		Int("methods", len(s.handlers)).
		Msg("gateway server ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.clients.CloseAll()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the configured listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authLimiter.allow(r.RemoteAddr) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("rate limited after repeated failed handshakes")
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxPayload)

	client, err := s.handshake(conn)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("handshake failed")
		s.authLimiter.recordFailure(r.RemoteAddr)
		conn.Close()
		return
	}

	s.clients.Add(client)
	defer func() {
		s.clients.Remove(client.ConnID)
		client.Voice.StopListening()
		client.Close()
	}()

	s.readLoop(client)
}

// handshake runs challenge → connect → hello. The client gets its voice
// controller before hello so the initial state can include it.
func (s *Server) handshake(conn *websocket.Conn) (*Client, error) {
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))

	challenge, err := NewEvent(EventChallenge, map[string]any{
		"nonce": uuid.NewString(),
		"ts":    time.Now().UnixMilli(),
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("creating challenge: %w", err)
	}
	if err := conn.WriteJSON(challenge); err != nil {
		return nil, fmt.Errorf("sending challenge: %w", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading connect: %w", err)
	}
	var frame Frame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return nil, fmt.Errorf("parsing connect frame: %w", err)
	}
	if frame.Type != FrameTypeRequest || frame.Method != "connect" {
		sendErrorAndClose(conn, frame.ID, CodeProtocol, "expected connect request")
		return nil, fmt.Errorf("expected connect request, got type=%s method=%s", frame.Type, frame.Method)
	}

	var params ConnectParams
	if err := json.Unmarshal(frame.Params, &params); err != nil {
		sendErrorAndClose(conn, frame.ID, CodeInvalidParams, "invalid connect params")
		return nil, fmt.Errorf("parsing connect params: %w", err)
	}
	if (params.MaxProtocol != 0 && params.MaxProtocol < ProtocolVersion) || params.MinProtocol > ProtocolVersion {
		sendErrorAndClose(conn, frame.ID, CodeProtocol, fmt.Sprintf("protocol %d not supported", ProtocolVersion))
		return nil, fmt.Errorf("protocol range %d-%d excludes %d", params.MinProtocol, params.MaxProtocol, ProtocolVersion)
	}

	authResult := Authorize(s.auth, params.Auth)
	if !authResult.OK {
		sendErrorAndClose(conn, frame.ID, CodeUnauthorized, authResult.Reason)
		return nil, fmt.Errorf("auth failed: %s", authResult.Reason)
	}
	conn.SetReadDeadline(time.Time{})

	client := NewClient(conn, params, authResult, s.clients.NextSeq, s.log.Sub("ws"))
	client.Voice = voice.NewController(voice.Options{
		Probe:     speechProbe(client),
		Scheduler: s.sched,
		Policy:    s.policy,
		Language:  s.initialLanguage(params.Locale),
		Notifier:  client,
		Log:       client.log,
		Observer: func(snap voice.Snapshot) {
			if err := client.SendEvent(EventVoiceState, snap); err != nil {
				client.log.Debug().Err(err).Msg("voice state not delivered")
			}
		},
	})

	build := version.Current()
	hello := HelloOK{
		Protocol: ProtocolVersion,
		Server:   ServerInfo{Version: build.Version, Commit: build.Commit, ConnID: client.ConnID},
		Features: Features{Methods: s.Methods(), Events: s.Events()},
		Policy:   ServerPolicy{MaxPayload: maxPayload, TickIntervalMs: int(tickInterval.Milliseconds())},
		State:    HelloState{Voice: client.Voice.State()},
	}
	if s.chat != nil {
		st := s.chatState()
		hello.State.Chat = &st
	}
	if s.users != nil {
		st := s.users.State()
		hello.State.Auth = &st
	}
	if err := client.Respond(frame.ID, hello); err != nil {
		return nil, fmt.Errorf("sending hello: %w", err)
	}

	client.log.Info().
		Str("clientId", params.Client.ID).
		Str("clientVersion", params.Client.Version).
		Str("authMethod", authResult.Method).
		Bool("speech", client.HasCap(CapSpeechRecognition)).
		Msg("client authenticated")
	return client, nil
}

// initialLanguage prefers the chat language, then the browser locale.
func (s *Server) initialLanguage(locale string) domain.Language {
	if s.chat != nil {
		return s.chat.Language()
	}
	if lang, ok := domain.ParseLanguage(locale); ok {
		return lang
	}
	return domain.DefaultLanguage
}

func (s *Server) readLoop(client *Client) {
	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				client.log.Debug().Msg("client closed connection")
			} else {
				client.log.Warn().Err(err).Msg("read error")
			}
			return
		}
		if frame.Type != FrameTypeRequest {
			client.log.Debug().Str("type", frame.Type).Msg("ignoring non-request frame")
			continue
		}
		s.dispatch(client, frame)
	}
}

func (s *Server) dispatch(client *Client, frame Frame) {
	handler, ok := s.handlers[frame.Method]
	if !ok {
		client.RespondError(frame.ID, ErrorShape{
			Code:    CodeMethodNotFound,
			Message: "unknown method: " + frame.Method,
		})
		return
	}
	handler(&RequestContext{Client: client, Frame: frame, Server: s})
}

// pushHook re-broadcasts lifecycle hooks and keeps every voice controller
// on the chat language.
func (s *Server) pushHook(_ context.Context, p hooks.Payload) error {
	if p.Event == hooks.EventAuthChanged {
		if s.users != nil {
			s.clients.Broadcast(EventAuthUpdated, authPayload(s.users))
		}
		return nil
	}
	if s.chat == nil {
		return nil
	}
	s.clients.Broadcast(EventChatUpdated, ChatUpdate{
		Event:     string(p.Event),
		SessionID: p.SessionID,
		Data:      p.Data,
		State:     s.chatState(),
	})
	if p.Event == hooks.EventLanguageChanged {
		tag, _ := p.Data["language"].(string)
		if lang, ok := domain.ParseLanguage(tag); ok {
			s.clients.Each(func(c *Client) { c.Voice.SetLanguage(lang) })
		}
	}
	return nil
}

func sendErrorAndClose(conn *websocket.Conn, reqID, code, message string) {
	conn.WriteJSON(NewErrorResponse(reqID, ErrorShape{Code: code, Message: message}))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, message))
}
