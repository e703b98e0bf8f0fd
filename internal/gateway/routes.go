package gateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/mindcareai/mindcare/internal/config"
	"github.com/mindcareai/mindcare/internal/version"
)

// readableConfigPrefixes lists the config paths config.get may return.
// Everything else, credentials included, is denied.
var readableConfigPrefixes = []string{
	"gateway.port",
	"gateway.bind",
	"gateway.customBindHost",
	"gateway.allowedOrigins",
	"gateway.tls.enabled",
	"logging",
	"store.driver",
	"chat",
	"voice",
	"auth",
}

func isAllowedConfigPath(key string) bool {
	for _, prefix := range readableConfigPrefixes {
		if key == prefix || strings.HasPrefix(key, prefix+".") {
			return true
		}
	}
	return false
}

func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("/", handleNotFound)
}

func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("config.get", s.rpcConfigGet)

	if s.chat != nil {
		s.Handle("chat.state", s.rpcChatState)
		s.Handle("chat.create", s.rpcChatCreate)
		s.Handle("chat.ensure", s.rpcChatEnsure)
		s.Handle("chat.select", s.rpcChatSelect)
		s.Handle("chat.send", s.rpcChatSend)
		s.Handle("chat.delete", s.rpcChatDelete)
		s.Handle("chat.rename", s.rpcChatRename)
		s.Handle("chat.language", s.rpcChatLanguage)
		s.Handle("chat.reset", s.rpcChatReset)
	}

	if s.users != nil {
		s.Handle("auth.state", s.rpcAuthState)
		s.Handle("auth.login", s.rpcAuthLogin)
		s.Handle("auth.register", s.rpcAuthRegister)
		s.Handle("auth.logout", s.rpcAuthLogout)
	}

	s.Handle("voice.state", s.rpcVoiceState)
	s.Handle("voice.start", s.rpcVoiceStart)
	s.Handle("voice.stop", s.rpcVoiceStop)
	s.Handle("voice.language", s.rpcVoiceLanguage)
	s.Handle("voice.clear", s.rpcVoiceClear)
	s.Handle("voice.event", s.rpcVoiceEvent)
}

func (s *Server) rpcHealth(rc *RequestContext) {
	build := version.Current()
	h := HealthResponse{
		Status:   "ok",
		Build:    &build,
		UptimeMs: time.Since(s.startedAt).Milliseconds(),
		Clients:  s.clients.Count(),
	}
	if s.chat != nil {
		h.Sessions = len(s.chat.Sessions())
		h.Loading = s.chat.IsLoading()
	}
	rc.Respond(h)
}

type configGetParams struct {
	Key string `json:"key"`
}

func (s *Server) rpcConfigGet(rc *RequestContext) {
	var p configGetParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if p.Key == "" {
		rc.RespondError(CodeInvalidParams, "key is required")
		return
	}
	path, err := config.ParseConfigPath(p.Key)
	if err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if !isAllowedConfigPath(p.Key) {
		rc.RespondError(CodeForbidden, "access denied for config path: "+p.Key)
		return
	}

	s.mu.RLock()
	val, ok := config.GetValueAtPath(s.configRaw, path)
	s.mu.RUnlock()
	if !ok {
		rc.RespondError(CodeNotFound, "key not found: "+p.Key)
		return
	}
	rc.Respond(map[string]any{"key": p.Key, "value": val})
}
