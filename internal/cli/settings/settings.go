// Package settings holds the local state of the kanso terminal client: the
// API location, the session token and the display preferences.
package settings

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

const (
	KeyAPIURL     = "api_url"
	DefaultAPIURL = "http://localhost:8080/api/v1"
)

var ErrUnknownKey = errors.New("unknown setting")

type Settings struct {
	APIURL      string             `toml:"api_url"`
	Email       string             `toml:"email,omitempty"`
	Token       string             `toml:"token,omitempty"`
	Preferences domain.Preferences `toml:"preferences"`
}

// Paths resolves the config location, respecting XDG_CONFIG_HOME.
type Paths struct {
	ConfigDir  string
	ConfigFile string
}

func GetPaths() Paths {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	dir := filepath.Join(configDir, "kanso")
	return Paths{
		ConfigDir:  dir,
		ConfigFile: filepath.Join(dir, "config.toml"),
	}
}

func Default() *Settings {
	return &Settings{
		APIURL:      DefaultAPIURL,
		Preferences: *domain.DefaultPreferences(),
	}
}

// Load reads the config file, returning defaults if it does not exist. Keys
// missing from the file keep their default value.
func Load() (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(GetPaths().ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", GetPaths().ConfigFile, err)
	}
	if err := s.Preferences.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", GetPaths().ConfigFile, err)
	}
	return s, nil
}

// Save writes the settings to disk. The file holds the session token, so
// it is only readable by its owner.
func Save(s *Settings) error {
	paths := GetPaths()
	if err := os.MkdirAll(paths.ConfigDir, 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(paths.ConfigFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(s)
}

// Keys lists every settable key in a stable order.
func Keys() []string {
	keys := append([]string{KeyAPIURL}, domain.PreferenceKeys...)
	sort.Strings(keys[1:])
	return keys
}

func (s *Settings) Get(key string) (string, error) {
	if key == KeyAPIURL {
		return s.APIURL, nil
	}
	v, ok := s.Preferences.Values()[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	return v, nil
}

// Set changes one key. The whole preference document is validated before
// anything is assigned.
func (s *Settings) Set(key, value string) error {
	if key == KeyAPIURL {
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", KeyAPIURL, value)
		}
		s.APIURL = value
		return nil
	}

	if _, ok := s.Preferences.Values()[key]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}

	next := s.Preferences
	if err := next.Set(key, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	s.Preferences = next
	return nil
}

// LoggedIn reports whether a session token is stored.
func (s *Settings) LoggedIn() bool {
	return s.Token != ""
}
