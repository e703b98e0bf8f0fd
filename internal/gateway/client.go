package gateway

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mindcareai/mindcare/internal/logging"
	"github.com/mindcareai/mindcare/internal/notify"
	"github.com/mindcareai/mindcare/internal/voice"
)

var errBinaryFrame = errors.New("binary frames are not supported")

// Client is an authenticated WebSocket connection. Each one owns a voice
// controller bound to the browser's recognizer, if it has one.
type Client struct {
	ConnID      string
	Info        ClientInfo
	Caps        []string
	Socket      *websocket.Conn
	AuthResult  AuthResult
	ConnectedAt time.Time
	Voice       *voice.Controller

	mu     sync.Mutex
	closed bool
	seq    func() int64
	log    *logging.Logger
}

// NewClient wraps a connection that passed the handshake. seq numbers the
// events sent to it.
func NewClient(conn *websocket.Conn, params ConnectParams, authResult AuthResult, seq func() int64, log *logging.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ConnID:      id,
		Info:        params.Client,
		Caps:        params.Caps,
		Socket:      conn,
		AuthResult:  authResult,
		ConnectedAt: time.Now(),
		seq:         seq,
		log:         log.With("connId", id),
	}
}

// HasCap reports whether the client advertised a capability.
func (c *Client) HasCap(name string) bool {
	return slices.Contains(c.Caps, name)
}

// writeWait bounds a single frame write to a stalled browser.
const writeWait = 10 * time.Second

// Send writes a frame. Safe for concurrent use.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Socket.WriteJSON(frame)
}

// SendEvent sends a named event with the next sequence number.
func (c *Client) SendEvent(event string, payload any) error {
	f, err := NewEvent(event, payload, c.seq())
	if err != nil {
		return err
	}
	return c.Send(f)
}

// Respond sends a success response for the given request ID.
func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// RespondError sends an error response for the given request ID.
func (c *Client) RespondError(reqID string, errShape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, errShape))
}

// Notify pushes one notification to this client only.
func (c *Client) Notify(n notify.Notification) {
	if err := c.SendEvent(EventNotify, notifyPayload(n)); err != nil {
		c.log.Debug().Err(err).Str("key", string(n.Key)).Msg("notification not delivered")
	}
}

// ReadFrame blocks for the next frame. Binary messages are rejected.
func (c *Client) ReadFrame() (Frame, error) {
	kind, msg, err := c.Socket.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	var f Frame
	if kind != websocket.TextMessage {
		return f, errBinaryFrame
	}
	err = json.Unmarshal(msg, &f)
	return f, err
}

// Close sends a normal-closure control frame and drops the connection.
// Calling it again is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.Socket.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.Socket.Close()
}

func notifyPayload(n notify.Notification) NotifyPayload {
	return NotifyPayload{
		Severity: string(n.Severity),
		Language: n.Language,
		Key:      string(n.Key),
		Text:     n.Text(),
	}
}

// ClientRegistry tracks connected clients and numbers every event sent
// through the gateway. It is also the notifier for process-wide
// notifications, which reach every client.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client // connID → Client
	seq     atomic.Int64
	log     *logging.Logger
}

// NewClientRegistry creates an empty client registry.
func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// NextSeq returns the next event sequence number.
func (r *ClientRegistry) NextSeq() int64 {
	return r.seq.Add(1)
}

// Add registers a connected client.
func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ConnID] = c
	r.log.Info().Str("connId", c.ConnID).Str("client", c.Info.ID).Msg("client connected")
}

// Remove unregisters a client by connection ID.
func (r *ClientRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, connID)
	r.log.Info().Str("connId", connID).Msg("client disconnected")
}

// Get returns a client by connection ID.
func (r *ClientRegistry) Get(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[connID]
	return c, ok
}

// Count returns the number of connected clients.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Each calls fn for every client. fn runs without the registry lock.
func (r *ClientRegistry) Each(fn func(*Client)) {
	r.mu.RLock()
	list := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		list = append(list, c)
	}
	r.mu.RUnlock()
	for _, c := range list {
		fn(c)
	}
}

// Broadcast sends an event to every client.
func (r *ClientRegistry) Broadcast(event string, payload any) {
	r.Each(func(c *Client) {
		if err := c.SendEvent(event, payload); err != nil {
			r.log.Warn().Err(err).Str("connId", c.ConnID).Str("event", event).Msg("broadcast send failed")
		}
	})
}

// Notify broadcasts a notification.
func (r *ClientRegistry) Notify(n notify.Notification) {
	r.Broadcast(EventNotify, notifyPayload(n))
}

// CloseAll closes all connected clients.
func (r *ClientRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.Close()
		delete(r.clients, id)
	}
}
