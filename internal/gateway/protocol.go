package gateway

import (
	"encoding/json"

	"github.com/mindcareai/mindcare/internal/auth"
	"github.com/mindcareai/mindcare/internal/domain"
	"github.com/mindcareai/mindcare/internal/voice"
)

// ProtocolVersion is the wire protocol spoken by this server.
const ProtocolVersion = 1

// Frame types for the WebSocket protocol.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Server push events.
const (
	EventChallenge       = "connect.challenge"
	EventNotify          = "notify"
	EventVoiceState      = "voice.state"
	EventVoiceCapability = "voice.capability"
	EventChatUpdated     = "chat.updated"
	EventAuthUpdated     = "auth.updated"
)

// CapSpeechRecognition is advertised by browsers that can run the speech
// recognizer on the server's behalf.
const CapSpeechRecognition = "speech-recognition"

// Error codes.
const (
	CodeProtocol       = "protocol_error"
	CodeInvalidParams  = "invalid_params"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeMethodNotFound = "method_not_found"
	CodeBusy           = "busy"
	CodeUnavailable    = "unavailable"
	CodeInvalidState   = "invalid_state"
	CodeInternal       = "internal_error"
)

// Frame is the envelope for every WebSocket message; Type selects which of
// the request, response and event fields are set.
type Frame struct {
	Type string `json:"type"`

	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`

	Event string `json:"event,omitempty"`
	Seq   int64  `json:"seq,omitempty"`
}

// ErrorShape is the error body of a failed response.
type ErrorShape struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
	RetryAfter int    `json:"retryAfterMs,omitempty"`
}

// ConnectParams are sent by the client in the initial "connect" request.
type ConnectParams struct {
	MinProtocol int          `json:"minProtocol"`
	MaxProtocol int          `json:"maxProtocol"`
	Client      ClientInfo   `json:"client"`
	Auth        *ConnectAuth `json:"auth,omitempty"`
	Caps        []string     `json:"caps,omitempty"`
	Locale      string       `json:"locale,omitempty"`
	UserAgent   string       `json:"userAgent,omitempty"`
}

// ClientInfo identifies the connecting client.
type ClientInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version"`
	Platform    string `json:"platform"`
	Mode        string `json:"mode"` // "browser" | "cli"
}

// ConnectAuth carries gateway credentials in the connect request.
type ConnectAuth struct {
	Token    string `json:"token,omitempty"`
	Password string `json:"password,omitempty"`
}

// HelloOK answers a successful connect. State lets the browser render
// without a round of follow-up requests.
type HelloOK struct {
	Protocol int          `json:"protocol"`
	Server   ServerInfo   `json:"server"`
	Features Features     `json:"features"`
	Policy   ServerPolicy `json:"policy"`
	State    HelloState   `json:"state"`
}

type ServerInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	ConnID  string `json:"connId"`
}

// Features advertises available RPC methods and events.
type Features struct {
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// ServerPolicy communicates protocol limits to the client.
type ServerPolicy struct {
	MaxPayload     int `json:"maxPayload"`
	TickIntervalMs int `json:"tickIntervalMs"`
}

// HelloState is the initial view of the chat, auth and voice state.
type HelloState struct {
	Chat  *ChatState          `json:"chat,omitempty"`
	Auth  *domain.AuthSnapshot `json:"auth,omitempty"`
	Voice voice.Snapshot      `json:"voice"`
}

// ChatState is the chat.state payload and the body of chat.updated events.
type ChatState struct {
	Sessions         []domain.Session `json:"sessions"`
	CurrentSessionID string           `json:"currentSessionId,omitempty"`
	Language         domain.Language  `json:"language"`
	IsLoading        bool             `json:"isLoading"`
}

// ChatUpdate is pushed after every chat lifecycle hook.
type ChatUpdate struct {
	Event     string         `json:"event"`
	SessionID string         `json:"sessionId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	State     ChatState      `json:"state"`
}

// NotifyPayload is a rendered notification.
type NotifyPayload struct {
	Severity string          `json:"severity"`
	Language domain.Language `json:"language"`
	Key      string          `json:"key"`
	Text     string          `json:"text"`
}

// CapabilityCommand is sent to the browser to drive its recognizer.
type CapabilityCommand struct {
	Command  string          `json:"command"` // "start" | "stop" | "abort"
	Settings *voice.Settings `json:"settings,omitempty"`
}

// VoiceEventParams report recognizer events from the browser.
type VoiceEventParams struct {
	Type    string         `json:"type"` // "start" | "result" | "error" | "end"
	Results []voice.Result `json:"results,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// AuthPayload is returned by the auth methods.
type AuthPayload struct {
	domain.AuthSnapshot
	IsLoading bool `json:"isLoading"`
}

func authPayload(svc *auth.Service) AuthPayload {
	return AuthPayload{AuthSnapshot: svc.State(), IsLoading: svc.IsLoading()}
}

// NewRequest creates a request frame.
func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeRequest, ID: id, Method: method, Params: raw}, nil
}

// NewResponse creates a success response frame.
func NewResponse(id string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	ok := true
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Payload: raw}, nil
}

// NewErrorResponse creates an error response frame.
func NewErrorResponse(id string, errShape ErrorShape) Frame {
	ok := false
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Error: &errShape}
}

// NewEvent creates an event frame.
func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeEvent, Event: event, Payload: raw, Seq: seq}, nil
}
