package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envRef matches a ${NAME} reference inside a credential value.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvRefs substitutes ${NAME} with the variable's value. References
// to unset variables stay as written.
func expandEnvRefs(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		if val, ok := os.LookupEnv(envRef.FindStringSubmatch(ref)[1]); ok {
			return val
		}
		return ref
	})
}

// Load builds a Config from defaults, the YAML file at path (if present)
// and MINDCARE_* environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
		}
		fillDefaults(&cfg)
	}

	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			o.apply(&cfg, v)
		}
	}
	cfg.Gateway.Auth.Token = expandEnvRefs(cfg.Gateway.Auth.Token)
	cfg.Gateway.Auth.Password = expandEnvRefs(cfg.Gateway.Auth.Password)
	return cfg, nil
}

// LoadRaw reads the config file as a generic document for key-path edits.
// A missing file is an empty document.
func LoadRaw(path string) (map[string]any, error) {
	raw := map[string]any{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes raw to path through a temp file and rename.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func orDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

// fillDefaults restores defaults for fields a config file set to zero.
func fillDefaults(cfg *Config) {
	d := Defaults()
	orDefault(&cfg.Gateway.Port, d.Gateway.Port)
	orDefault(&cfg.Gateway.Bind, d.Gateway.Bind)
	orDefault(&cfg.Gateway.Auth.Mode, d.Gateway.Auth.Mode)
	orDefault(&cfg.Logging.Level, d.Logging.Level)
	orDefault(&cfg.Logging.ConsoleStyle, d.Logging.ConsoleStyle)
	orDefault(&cfg.Store.Driver, d.Store.Driver)
	orDefault(&cfg.Chat.DefaultLanguage, d.Chat.DefaultLanguage)
	orDefault(&cfg.Chat.ReplyLatencyMs, d.Chat.ReplyLatencyMs)
	orDefault(&cfg.Voice.MaxReconnectAttempts, d.Voice.MaxReconnectAttempts)
	orDefault(&cfg.Voice.ReconnectDelayMs, d.Voice.ReconnectDelayMs)
	orDefault(&cfg.Voice.LanguageRestartDelayMs, d.Voice.LanguageRestartDelayMs)
	orDefault(&cfg.Auth.LoginLatencyMs, d.Auth.LoginLatencyMs)
	orDefault(&cfg.Auth.RegisterLatencyMs, d.Auth.RegisterLatencyMs)
}

// envOverrides maps MINDCARE_* variables onto config fields. Unparseable
// values are ignored.
var envOverrides = []struct {
	name  string
	apply func(*Config, string)
}{
	{"MINDCARE_GATEWAY_PORT", func(c *Config, v string) {
		if port, err := strconv.Atoi(v); err == nil {
			c.Gateway.Port = port
		}
	}},
	{"MINDCARE_GATEWAY_BIND", func(c *Config, v string) { c.Gateway.Bind = v }},
	{"MINDCARE_LOG_LEVEL", func(c *Config, v string) { c.Logging.Level = strings.ToLower(v) }},
	{"MINDCARE_STORE_DRIVER", func(c *Config, v string) { c.Store.Driver = strings.ToLower(v) }},
	{"MINDCARE_DEFAULT_LANGUAGE", func(c *Config, v string) { c.Chat.DefaultLanguage = v }},
}
