package gateway

import (
	"crypto/subtle"
	"os"

	"github.com/mindcareai/mindcare/internal/config"
)

// AuthResult is the outcome of a connect authentication.
type AuthResult struct {
	OK     bool   `json:"ok"`
	Method string `json:"method,omitempty"` // "token" | "password"
	Reason string `json:"reason,omitempty"`
}

// ResolvedAuth is the gateway credential after config and env are merged.
type ResolvedAuth struct {
	Mode     string
	Token    string
	Password string
}

// ResolveAuth merges config credentials with MINDCARE_GATEWAY_TOKEN and
// MINDCARE_GATEWAY_PASSWORD. Config wins over env. Without a mode, a
// configured password selects password mode.
func ResolveAuth(cfg config.GatewayAuth) ResolvedAuth {
	a := ResolvedAuth{
		Mode:     cfg.Mode,
		Token:    firstNonEmpty(cfg.Token, os.Getenv("MINDCARE_GATEWAY_TOKEN")),
		Password: firstNonEmpty(cfg.Password, os.Getenv("MINDCARE_GATEWAY_PASSWORD")),
	}
	if a.Mode == "" {
		a.Mode = "token"
		if a.Password != "" {
			a.Mode = "password"
		}
	}
	return a
}

// Authorize checks connect credentials against the server credential.
func Authorize(server ResolvedAuth, client *ConnectAuth) AuthResult {
	if client == nil {
		return AuthResult{Reason: "no credentials provided"}
	}

	var want, got string
	switch server.Mode {
	case "token":
		want, got = server.Token, client.Token
	case "password":
		want, got = server.Password, client.Password
	default:
		return AuthResult{Reason: "unknown auth mode: " + server.Mode}
	}

	switch {
	case want == "":
		return AuthResult{Reason: "server " + server.Mode + " not configured"}
	case got == "":
		return AuthResult{Reason: server.Mode + " required"}
	case !safeEqual(got, want):
		return AuthResult{Reason: server.Mode + "_mismatch"}
	}
	return AuthResult{OK: true, Method: server.Mode}
}

// safeEqual compares in constant time without an early return on length.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
