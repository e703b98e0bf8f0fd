package gateway

import (
	"context"
	"errors"

	"github.com/mindcareai/mindcare/internal/auth"
)

func (s *Server) rpcAuthState(rc *RequestContext) {
	rc.Respond(authPayload(s.users))
}

type loginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) rpcAuthLogin(rc *RequestContext) {
	var p loginParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	go func() {
		_, err := s.users.Login(context.Background(), p.Email, p.Password)
		s.respondAuth(rc, err)
	}()
}

type registerParams struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) rpcAuthRegister(rc *RequestContext) {
	var p registerParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	go func() {
		_, err := s.users.Register(context.Background(), p.Username, p.Email, p.Password, p.ConfirmPassword)
		s.respondAuth(rc, err)
	}()
}

func (s *Server) rpcAuthLogout(rc *RequestContext) {
	s.users.Logout(context.Background())
	rc.Respond(authPayload(s.users))
}

func (s *Server) respondAuth(rc *RequestContext, err error) {
	switch {
	case err == nil:
		rc.Respond(authPayload(s.users))
	case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrPasswordMismatch):
		rc.RespondError(CodeInvalidParams, err.Error())
	default:
		rc.RespondError(CodeInternal, err.Error())
	}
}
