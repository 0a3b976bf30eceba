package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultBaseDir = ".boothbot"

// Paths holds resolved filesystem paths for kiosk data.
type Paths struct {
	Base    string // ~/.boothbot
	Config  string // ~/.boothbot/config.yaml
	Leads   string // ~/.boothbot/leads
	History string // ~/.boothbot/history
	Logs    string // ~/.boothbot/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If BOOTHBOT_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("BOOTHBOT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}
	return PathsAt(base), nil
}

// PathsAt lays out the standard paths under base.
func PathsAt(base string) Paths {
	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		Leads:   filepath.Join(base, "leads"),
		History: filepath.Join(base, "history"),
		Logs:    filepath.Join(base, "logs"),
	}
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Leads, p.History, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfigPath splits a dot-separated config path into segments.
// Returns an error if any segment is empty.
func ParseConfigPath(raw string) ([]string, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config path"}
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return nil, &ConfigError{Message: "config path contains empty segment"}
		}
	}
	return parts, nil
}

// GetValueAtPath traverses a nested map using the given path segments.
func GetValueAtPath(root map[string]any, path []string) (any, bool) {
	current := any(root)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
