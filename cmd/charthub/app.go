package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"charthub/internal/config"
	"charthub/internal/domain"
	"charthub/internal/eventbus"
	"charthub/internal/hub"
)

// options are the global flags
type options struct {
	configDir string
	hubURL    string
	org       string
	logLevel  string
}

// app is what every command works with: the effective config and a hub
// client carrying the saved session
type app struct {
	configSvc config.ConfigService
	cfg       *config.Config
	state     *config.State
	client    *hub.Client
	logFile   io.Closer
}

// setup loads the config, applies flag overrides, starts logging and
// restores the saved session
func setup(cmd *cobra.Command, opts *options, bus eventbus.EventBus) (*app, error) {
	var configSvc config.ConfigService
	if bus != nil {
		configSvc = config.NewConfigServiceWithBus(opts.configDir, bus)
	} else {
		configSvc = config.NewConfigService(opts.configDir)
	}

	cfg, err := configSvc.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.hubURL != "" {
		cfg.HubURL = strings.TrimRight(opts.hubURL, "/")
	}
	if cmd.Flags().Changed("org") {
		cfg.Org = opts.org
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	a := &app{configSvc: configSvc, cfg: cfg}
	if err := a.initLogging(); err != nil {
		return nil, err
	}

	state, err := configSvc.LoadState()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	a.state = state

	client, err := hub.NewClient(cfg.HubURL,
		hub.WithTimeout(cfg.Timeout),
		hub.WithLogger(log.Logger),
		hub.WithSessionCookie(state.SessionCookie),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.client = client

	log.Debug().Str("hub", cfg.HubURL).Str("org", cfg.Org).Str("dir", configSvc.Dir()).Msg("Configuration loaded")
	return a, nil
}

// initLogging sends logs to the log file. The terminal belongs to the
// program output.
func (a *app) initLogging() error {
	level, err := zerolog.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.cfg.Log.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(a.cfg.Log.File), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	a.logFile = f

	log.Logger = zerolog.New(f).Level(level).With().Timestamp().Logger()
	return nil
}

func (a *app) scope() domain.Scope {
	if a.cfg.Org == "" {
		return domain.PersonalScope()
	}
	return domain.OrgScope(a.cfg.Org)
}

// saveSession persists the client's session cookie for the next run
func (a *app) saveSession() error {
	a.state.SessionCookie = a.client.SessionCookie()
	return a.configSvc.SaveState(a.state)
}

// saveOrg persists the active organization. The file is reloaded so flag
// overrides of other settings are not written back.
func (a *app) saveOrg(org string) error {
	cfg, err := a.configSvc.Load()
	if err != nil {
		return err
	}
	if cfg.Org == org {
		return nil
	}
	cfg.Org = org
	return a.configSvc.Save(cfg)
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}
