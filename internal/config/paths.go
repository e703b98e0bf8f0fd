package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".mindcare"

// Paths holds resolved filesystem paths for MindCare data.
type Paths struct {
	Base   string // ~/.mindcare
	Config string // ~/.mindcare/config.yaml
	Data   string // ~/.mindcare/data
	DB     string // ~/.mindcare/data/mindcare.db
	Logs   string // ~/.mindcare/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If MINDCARE_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("MINDCARE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	data := filepath.Join(base, "data")
	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Data:   data,
		DB:     filepath.Join(data, "mindcare.db"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.Data, p.Logs}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// StorePath returns the sqlite file to open: the configured path, or the
// default under the data directory.
func (p Paths) StorePath(cfg StoreConfig) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return p.DB
}
