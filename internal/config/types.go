package config

// Config is the root configuration for MindCare.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Chat    ChatConfig    `yaml:"chat,omitempty"`
	Voice   VoiceConfig   `yaml:"voice,omitempty"`
	Auth    AuthConfig    `yaml:"auth,omitempty"`
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int         `yaml:"port,omitempty"`
	Bind           string      `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string      `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth `yaml:"auth,omitempty"`
	TLS            GatewayTLS  `yaml:"tls,omitempty"`
	AllowedOrigins []string    `yaml:"allowedOrigins,omitempty"`
}

// GatewayAuth configures gateway authentication.
type GatewayAuth struct {
	Mode     string `yaml:"mode,omitempty"` // "token" | "password"
	Token    string `yaml:"token,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// GatewayTLS configures TLS for the gateway.
type GatewayTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
	Journal      string `yaml:"journal,omitempty"`      // optional activity journal (JSON lines, no message text)
}

// StoreConfig selects the local key-value backend.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" | "memory"
	Path   string `yaml:"path,omitempty"`   // sqlite file; defaults to <base>/data/mindcare.db
}

// ChatConfig configures the session store and reply engine.
type ChatConfig struct {
	DefaultLanguage string `yaml:"defaultLanguage,omitempty"`
	ReplyLatencyMs  int    `yaml:"replyLatencyMs,omitempty"`
}

// VoiceConfig configures the voice controller retry policy.
type VoiceConfig struct {
	MaxReconnectAttempts   int `yaml:"maxReconnectAttempts,omitempty"`
	ReconnectDelayMs       int `yaml:"reconnectDelayMs,omitempty"`
	LanguageRestartDelayMs int `yaml:"languageRestartDelayMs,omitempty"`
}

// AuthConfig configures the mock credential exchange.
type AuthConfig struct {
	LoginLatencyMs    int `yaml:"loginLatencyMs,omitempty"`
	RegisterLatencyMs int `yaml:"registerLatencyMs,omitempty"`
}
