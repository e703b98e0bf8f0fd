package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port: 18790,
			Bind: "loopback",
			Auth: GatewayAuth{
				Mode: "token",
			},
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		Chat: ChatConfig{
			DefaultLanguage: "fr-FR",
			ReplyLatencyMs:  1000,
		},
		Voice: VoiceConfig{
			MaxReconnectAttempts:   3,
			ReconnectDelayMs:       2000,
			LanguageRestartDelayMs: 300,
		},
		Auth: AuthConfig{
			LoginLatencyMs:    800,
			RegisterLatencyMs: 1000,
		},
	}
}

// ReplyLatency returns the simulated reply latency.
func (c ChatConfig) ReplyLatency() time.Duration {
	return time.Duration(c.ReplyLatencyMs) * time.Millisecond
}

// ReconnectDelay returns the fixed delay before a reconnection attempt.
func (c VoiceConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMs) * time.Millisecond
}

// LanguageRestartDelay returns the delay used to restart after a language change.
func (c VoiceConfig) LanguageRestartDelay() time.Duration {
	return time.Duration(c.LanguageRestartDelayMs) * time.Millisecond
}

// LoginLatency returns the simulated login exchange latency.
func (c AuthConfig) LoginLatency() time.Duration {
	return time.Duration(c.LoginLatencyMs) * time.Millisecond
}

// RegisterLatency returns the simulated registration exchange latency.
func (c AuthConfig) RegisterLatency() time.Duration {
	return time.Duration(c.RegisterLatencyMs) * time.Millisecond
}
