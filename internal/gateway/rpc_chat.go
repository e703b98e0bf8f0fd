package gateway

import (
	"context"
	"strings"

	"github.com/mindcareai/mindcare/internal/domain"
)

func (s *Server) chatState() ChatState {
	snap := s.chat.Snapshot()
	return ChatState{
		Sessions:         snap.Sessions,
		CurrentSessionID: snap.CurrentSessionID,
		Language:         snap.Language,
		IsLoading:        s.chat.IsLoading(),
	}
}

type sessionParams struct {
	SessionID string `json:"sessionId"`
}

// sessionParam decodes and checks a required session id.
func (s *Server) sessionParam(rc *RequestContext) (string, bool) {
	var p sessionParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return "", false
	}
	if p.SessionID == "" {
		rc.RespondError(CodeInvalidParams, "sessionId is required")
		return "", false
	}
	if _, ok := s.chat.Session(p.SessionID); !ok {
		rc.RespondError(CodeNotFound, "session not found: "+p.SessionID)
		return "", false
	}
	return p.SessionID, true
}

func (s *Server) rpcChatState(rc *RequestContext) {
	rc.Respond(s.chatState())
}

func (s *Server) rpcChatCreate(rc *RequestContext) {
	id := s.chat.CreateSession()
	rc.Respond(map[string]any{"sessionId": id, "state": s.chatState()})
}

func (s *Server) rpcChatEnsure(rc *RequestContext) {
	id := s.chat.EnsureSession()
	rc.Respond(map[string]any{"sessionId": id, "state": s.chatState()})
}

func (s *Server) rpcChatSelect(rc *RequestContext) {
	id, ok := s.sessionParam(rc)
	if !ok {
		return
	}
	if err := s.chat.SelectSession(id); err != nil {
		rc.RespondError(CodeNotFound, err.Error())
		return
	}
	rc.Respond(s.chatState())
}

type chatSendParams struct {
	Content   string `json:"content"`
	SessionID string `json:"sessionId,omitempty"`
}

// rpcChatSend appends a user message and answers once the reply cycle
// ends. The cycle runs off the read loop so voice events keep flowing.
func (s *Server) rpcChatSend(rc *RequestContext) {
	var p chatSendParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if strings.TrimSpace(p.Content) == "" {
		rc.RespondError(CodeInvalidParams, "content is required")
		return
	}
	if s.chat.IsLoading() || !s.sending.CompareAndSwap(false, true) {
		rc.RespondShape(ErrorShape{Code: CodeBusy, Message: "a reply is already being generated", Retryable: true, RetryAfter: 1000})
		return
	}

	if p.SessionID != "" {
		if err := s.chat.SelectSession(p.SessionID); err != nil {
			s.sending.Store(false)
			rc.RespondError(CodeNotFound, err.Error())
			return
		}
	}
	if s.chat.CurrentSessionID() == "" {
		s.sending.Store(false)
		rc.RespondError(CodeInvalidState, "no current session")
		return
	}

	go func() {
		defer s.sending.Store(false)
		// an in-flight reply is never cancelled; it completes or fails
		if err := s.chat.AddMessage(context.Background(), p.Content, domain.RoleUser); err != nil {
			rc.RespondError(CodeInternal, err.Error())
			return
		}
		rc.Respond(s.chatState())
	}()
}

func (s *Server) rpcChatDelete(rc *RequestContext) {
	id, ok := s.sessionParam(rc)
	if !ok {
		return
	}
	s.chat.DeleteSession(id)
	rc.Respond(s.chatState())
}

type chatRenameParams struct {
	SessionID string `json:"sessionId"`
	Title     string `json:"title"`
}

func (s *Server) rpcChatRename(rc *RequestContext) {
	var p chatRenameParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if _, ok := s.chat.Session(p.SessionID); !ok {
		rc.RespondError(CodeNotFound, "session not found: "+p.SessionID)
		return
	}
	s.chat.UpdateSessionTitle(p.SessionID, p.Title)
	rc.Respond(s.chatState())
}

type languageParams struct {
	Language string `json:"language"`
}

// languageParam decodes a required language tag.
func languageParam(rc *RequestContext) (domain.Language, bool) {
	var p languageParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return "", false
	}
	lang, ok := domain.ParseLanguage(p.Language)
	if !ok {
		rc.RespondError(CodeInvalidParams, "unsupported language: "+p.Language)
		return "", false
	}
	return lang, true
}

func (s *Server) rpcChatLanguage(rc *RequestContext) {
	lang, ok := languageParam(rc)
	if !ok {
		return
	}
	s.chat.SetLanguage(lang)
	rc.Respond(s.chatState())
}

func (s *Server) rpcChatReset(rc *RequestContext) {
	s.chat.Reset()
	rc.Respond(s.chatState())
}
