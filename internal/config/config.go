package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"charthub/internal/eventbus"
)

const (
	// DefaultHubURL is the public Artifact Hub instance
	DefaultHubURL = "https://artifacthub.io"

	// DefaultTimeout bounds every request made to the hub
	DefaultTimeout = 15 * time.Second

	configFileName = "config.toml"
	stateFileName  = "state.toml"
	envPrefix      = "CHARTHUB"
)

// Config represents the application configuration
type Config struct {
	Version int
	HubURL  string
	Org     string // active organization, empty for the personal scope
	Timeout time.Duration
	Log     LogSettings
	UI      UISettings
}

// LogSettings controls where and how much is logged
type LogSettings struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	// CompactWidth is the terminal width under which the header collapses
	// and session actions are only reachable through the menu panel.
	CompactWidth   int  `toml:"compact_width"`
	AutosaveOnExit bool `toml:"autosave_on_exit"`
}

// State is data persisted between runs that is not user configuration
type State struct {
	SessionCookie string `toml:"session_cookie,omitempty"`
}

// fileConfig is the on-disk shape of Config
type fileConfig struct {
	Version int         `toml:"version"`
	HubURL  string      `toml:"hub_url"`
	Org     string      `toml:"org,omitempty"`
	Timeout string      `toml:"timeout"`
	Log     LogSettings `toml:"log"`
	UI      UISettings  `toml:"ui"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	LoadState() (*State, error)
	SaveState(state *State) error
	Dir() string
}

// configService is the concrete implementation
type configService struct {
	bus eventbus.EventBus
	dir string
}

// DefaultDir returns the directory charthub keeps its files in
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "charthub")
}

// NewConfigService creates a config service rooted at dir.
// An empty dir selects DefaultDir.
func NewConfigService(dir string) ConfigService {
	if dir == "" {
		dir = DefaultDir()
	}
	return &configService{dir: dir}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(dir string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(dir).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Dir() string {
	return cs.dir
}

// Load loads the configuration from the service directory
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(filepath.Join(cs.dir, configFileName))
	if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{HubURL: cfg.HubURL, Org: cfg.Org})
	}

	return cfg, nil
}

// Save saves the configuration to the service directory
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, filepath.Join(cs.dir, configFileName)); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path. A missing file
// yields the defaults; CHARTHUB_* environment variables override both.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	v := newViper()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		Version: v.GetInt("version"),
		HubURL:  strings.TrimRight(v.GetString("hub_url"), "/"),
		Org:     v.GetString("org"),
		Timeout: v.GetDuration("timeout"),
		Log: LogSettings{
			File:  v.GetString("log.file"),
			Level: v.GetString("log.level"),
		},
		UI: UISettings{
			CompactWidth:   v.GetInt("ui.compact_width"),
			AutosaveOnExit: v.GetBool("ui.autosave_on_exit"),
		},
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cs.dir, "charthub.log")
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(fileConfig{
		Version: config.Version,
		HubURL:  config.HubURL,
		Org:     config.Org,
		Timeout: config.Timeout.String(),
		Log:     config.Log,
		UI:      config.UI,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadState loads persisted state. A missing file yields an empty state.
func (cs *configService) LoadState() (*State, error) {
	data, err := os.ReadFile(filepath.Join(cs.dir, stateFileName))
	if os.IsNotExist(err) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := toml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return &state, nil
}

// SaveState persists state. The file holds the session cookie so it is
// only readable by the owner.
func (cs *configService) SaveState(state *State) error {
	if err := os.MkdirAll(cs.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(cs.dir, stateFileName), data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		HubURL:  DefaultHubURL,
		Timeout: DefaultTimeout,
		Log: LogSettings{
			File:  filepath.Join(DefaultDir(), "charthub.log"),
			Level: "info",
		},
		UI: UISettings{
			CompactWidth:   80,
			AutosaveOnExit: true,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("hub_url", def.HubURL)
	v.SetDefault("org", "")
	v.SetDefault("timeout", def.Timeout.String())
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("ui.compact_width", def.UI.CompactWidth)
	v.SetDefault("ui.autosave_on_exit", def.UI.AutosaveOnExit)
	return v
}
