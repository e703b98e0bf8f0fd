package config

import (
	"fmt"
	"slices"

	"github.com/mindcareai/mindcare/internal/domain"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	oneOf := func(path, got string, valid []string) {
		if got != "" && !slices.Contains(valid, got) {
			issues = append(issues, ValidationIssue{
				Path:    path,
				Message: fmt.Sprintf("must be one of %v, got %q", valid, got),
			})
		}
	}
	nonNegative := func(path string, got int) {
		if got < 0 {
			issues = append(issues, ValidationIssue{
				Path:    path,
				Message: fmt.Sprintf("must not be negative, got %d", got),
			})
		}
	}

	// Gateway
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}
	oneOf("gateway.bind", cfg.Gateway.Bind, []string{"auto", "lan", "loopback", "custom"})
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.customBindHost",
			Message: "required when bind is custom",
		})
	}
	oneOf("gateway.auth.mode", cfg.Gateway.Auth.Mode, []string{"token", "password"})
	if cfg.Gateway.TLS.Enabled && (cfg.Gateway.TLS.CertPath == "" || cfg.Gateway.TLS.KeyPath == "") {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.tls",
			Message: "certPath and keyPath are required when TLS is enabled",
		})
	}

	// Logging
	oneOf("logging.level", cfg.Logging.Level, []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"})
	oneOf("logging.consoleStyle", cfg.Logging.ConsoleStyle, []string{"pretty", "compact", "json"})

	// Store
	oneOf("store.driver", cfg.Store.Driver, []string{"sqlite", "memory"})

	// Chat
	if cfg.Chat.DefaultLanguage != "" {
		if _, ok := domain.ParseLanguage(cfg.Chat.DefaultLanguage); !ok {
			tags := make([]string, 0, 6)
			for _, l := range domain.Languages() {
				tags = append(tags, string(l))
			}
			issues = append(issues, ValidationIssue{
				Path:    "chat.defaultLanguage",
				Message: fmt.Sprintf("must be one of %v, got %q", tags, cfg.Chat.DefaultLanguage),
			})
		}
	}
	nonNegative("chat.replyLatencyMs", cfg.Chat.ReplyLatencyMs)

	// Voice
	nonNegative("voice.maxReconnectAttempts", cfg.Voice.MaxReconnectAttempts)
	nonNegative("voice.reconnectDelayMs", cfg.Voice.ReconnectDelayMs)
	nonNegative("voice.languageRestartDelayMs", cfg.Voice.LanguageRestartDelayMs)

	// Auth
	nonNegative("auth.loginLatencyMs", cfg.Auth.LoginLatencyMs)
	nonNegative("auth.registerLatencyMs", cfg.Auth.RegisterLatencyMs)

	return issues
}
