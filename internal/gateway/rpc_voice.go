package gateway

import (
	"errors"

	"github.com/mindcareai/mindcare/internal/voice"
)

func (s *Server) rpcVoiceState(rc *RequestContext) {
	rc.Respond(rc.Client.Voice.State())
}

func (s *Server) rpcVoiceStart(rc *RequestContext) {
	ctl := rc.Client.Voice
	switch err := ctl.StartListening(); {
	case err == nil:
		rc.Respond(ctl.State())
	case errors.Is(err, voice.ErrUnavailable):
		rc.RespondError(CodeUnavailable, err.Error())
	default:
		rc.RespondShape(ErrorShape{Code: CodeInternal, Message: err.Error(), Retryable: true, Details: ctl.State()})
	}
}

func (s *Server) rpcVoiceStop(rc *RequestContext) {
	rc.Client.Voice.StopListening()
	rc.Respond(rc.Client.Voice.State())
}

func (s *Server) rpcVoiceLanguage(rc *RequestContext) {
	lang, ok := languageParam(rc)
	if !ok {
		return
	}
	rc.Client.Voice.SetLanguage(lang)
	rc.Respond(rc.Client.Voice.State())
}

func (s *Server) rpcVoiceClear(rc *RequestContext) {
	rc.Client.Voice.ClearTranscript()
	rc.Respond(rc.Client.Voice.State())
}

// rpcVoiceEvent feeds a browser recognizer event into the controller.
func (s *Server) rpcVoiceEvent(rc *RequestContext) {
	var p VoiceEventParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	ctl := rc.Client.Voice
	switch p.Type {
	case "start":
		ctl.HandleStarted()
	case "result":
		ctl.HandleResult(p.Results)
	case "error":
		if p.Error == "" {
			rc.RespondError(CodeInvalidParams, "error kind is required")
			return
		}
		ctl.HandleError(p.Error)
	case "end":
		ctl.HandleEnded()
	default:
		rc.RespondError(CodeInvalidParams, "unknown voice event: "+p.Type)
		return
	}
	rc.Respond(ctl.State())
}
