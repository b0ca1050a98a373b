package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"charthub/internal/eventbus"
	"charthub/internal/scope"
	"charthub/internal/session"
	"charthub/internal/ui"
)

// build-time override (e.g. -ldflags "-X main.version=1.2.3")
var version = "dev"

// Events the TUI reacts to
var forwardedEvents = []eventbus.EventType{
	eventbus.EventSessionChanged,
	eventbus.EventScopeChanged,
	eventbus.EventRepositoryMutated,
	eventbus.EventAuthRequired,
	eventbus.EventError,
	eventbus.EventConfigSaved,
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "charthub",
		Short: "Manage your Artifact Hub chart repositories",
		Long: strings.TrimSpace(`
charthub lists the Helm chart repositories registered on Artifact Hub for
you or one of your organizations, and lets you add, edit and delete them.

Run without a subcommand to open the interactive view.`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts, stdin, stdout)
		},
	}
	rootCmd.Version = version

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config", "", "Directory holding config.toml and state.toml")
	flags.StringVar(&opts.hubURL, "hub-url", "", "Artifact Hub base URL")
	flags.StringVar(&opts.org, "org", "", "Organization to work in, empty for your personal repositories")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	rootCmd.AddCommand(
		newListCmd(opts),
		newLoginCmd(opts, stdin),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newVersionCmd(),
	)

	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "charthub version %s\n", version)
		},
	}
}

// runTUI runs the interactive view until the user quits
func runTUI(cmd *cobra.Command, opts *options, stdin io.Reader, stdout io.Writer) error {
	in, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return errors.New("the interactive view needs a terminal, use 'charthub list' in scripts")
	}

	bus := eventbus.New()
	defer bus.Close()

	a, err := setup(cmd, opts, bus)
	if err != nil {
		return err
	}
	defer a.close()

	sessions := session.NewStoreWithBus(a.client, bus)
	selector := scope.NewSelectorWithBus(a.scope(), bus)

	model := ui.NewModel(bus, a.cfg, ui.Deps{
		Client:   a.client,
		Sessions: sessions,
		Selector: selector,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithInput(stdin), tea.WithOutput(stdout))
	model.SetProgram(p)

	// Keep the session across runs
	unsubscribeSession := bus.Subscribe(eventbus.EventSessionChanged, func(eventbus.DomainEvent) {
		if err := a.saveSession(); err != nil {
			log.Error().Err(err).Msg("Failed to save session")
		}
	})
	defer unsubscribeSession()

	// Forward events to the UI without blocking the bus
	eventChan := make(chan eventbus.DomainEvent, 100)
	var unsubscribe []func()
	for _, eventType := range forwardedEvents {
		unsubscribe = append(unsubscribe, bus.Subscribe(eventType, func(e eventbus.DomainEvent) {
			select {
			case eventChan <- e:
			default:
				log.Warn().Str("event", string(e.Type())).Msg("Event channel full, dropping event")
			}
		}))
	}
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case event := <-eventChan:
				p.Send(ui.EventMsg{Event: event})
			case <-stop:
				return
			}
		}
	}()

	log.Info().Str("hub", a.cfg.HubURL).Str("scope", a.scope().String()).Msg("Starting UI")
	_, runErr := p.Run()

	for _, fn := range unsubscribe {
		fn()
	}
	close(stop)

	if runErr != nil {
		log.Error().Err(runErr).Msg("Error running program")
		return fmt.Errorf("error running program: %w", runErr)
	}
	log.Info().Msg("UI exited normally")

	if model.SaveOnExit() {
		if err := a.saveOrg(selector.Active().Org); err != nil {
			log.Error().Err(err).Msg("Failed to save config")
		}
	}
	return nil
}
