package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mindcareai/mindcare/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSafeEqual(t *testing.T) {
	assert.True(t, safeEqual("secret", "secret"))
	assert.True(t, safeEqual("", ""))
	assert.False(t, safeEqual("secret", "wrong"))
	assert.False(t, safeEqual("short", "longer-string"))
	assert.False(t, safeEqual("secret", ""))
	assert.False(t, safeEqual("", "secret"))
}

func TestResolveAuth(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.GatewayAuth
		env  map[string]string
		want ResolvedAuth
	}{
		{
			name: "token from config",
			cfg:  config.GatewayAuth{Mode: "token", Token: "cfg-token"},
			want: ResolvedAuth{Mode: "token", Token: "cfg-token"},
		},
		{
			name: "password selects password mode",
			cfg:  config.GatewayAuth{Password: "cfg-pass"},
			want: ResolvedAuth{Mode: "password", Password: "cfg-pass"},
		},
		{
			name: "defaults to token mode",
			cfg:  config.GatewayAuth{Token: "t"},
			want: ResolvedAuth{Mode: "token", Token: "t"},
		},
		{
			name: "token from env",
			env:  map[string]string{"MINDCARE_GATEWAY_TOKEN": "env-token"},
			want: ResolvedAuth{Mode: "token", Token: "env-token"},
		},
		{
			name: "password from env",
			env:  map[string]string{"MINDCARE_GATEWAY_PASSWORD": "env-pass"},
			want: ResolvedAuth{Mode: "password", Password: "env-pass"},
		},
		{
			name: "config wins over env",
			cfg:  config.GatewayAuth{Token: "cfg-token"},
			env:  map[string]string{"MINDCARE_GATEWAY_TOKEN": "env-token"},
			want: ResolvedAuth{Mode: "token", Token: "cfg-token"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MINDCARE_GATEWAY_TOKEN", "")
			t.Setenv("MINDCARE_GATEWAY_PASSWORD", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, ResolveAuth(tt.cfg))
		})
	}
}

func TestAuthorize(t *testing.T) {
	token := ResolvedAuth{Mode: "token", Token: "tok"}
	password := ResolvedAuth{Mode: "password", Password: "pw"}

	tests := []struct {
		name   string
		server ResolvedAuth
		client *ConnectAuth
		ok     bool
		method string
		reason string
	}{
		{"token ok", token, &ConnectAuth{Token: "tok"}, true, "token", ""},
		{"token mismatch", token, &ConnectAuth{Token: "nope"}, false, "", "token_mismatch"},
		{"token missing", token, &ConnectAuth{Password: "pw"}, false, "", "token required"},
		{"server token unset", ResolvedAuth{Mode: "token"}, &ConnectAuth{Token: "tok"}, false, "", "server token not configured"},
		{"password ok", password, &ConnectAuth{Password: "pw"}, true, "password", ""},
		{"password mismatch", password, &ConnectAuth{Password: "x"}, false, "", "password_mismatch"},
		{"password missing", password, &ConnectAuth{}, false, "", "password required"},
		{"server password unset", ResolvedAuth{Mode: "password"}, &ConnectAuth{Password: "pw"}, false, "", "server password not configured"},
		{"no credentials", token, nil, false, "", "no credentials provided"},
		{"unknown mode", ResolvedAuth{Mode: "oauth"}, &ConnectAuth{Token: "tok"}, false, "", "unknown auth mode: oauth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.server, tt.client)
			assert.Equal(t, AuthResult{OK: tt.ok, Method: tt.method, Reason: tt.reason}, got)
		})
	}
}

func originRequest(origin string) *http.Request {
	req := httptest.NewRequest("GET", "/ws", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCheckWebSocketOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"nothing configured", nil, "http://evil.example", false},
		{"wildcard", []string{"*"}, "http://anything.example", true},
		{"listed", []string{"http://app.example"}, "http://app.example", true},
		{"not listed", []string{"http://app.example"}, "http://evil.example", false},
		{"second of many", []string{"http://one.example", "http://two.example"}, "http://two.example", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkWebSocketOrigin(tt.allowed)(originRequest(tt.origin)))
		})
	}
}
