package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Gatu-1548/plagio-ia/internal/config"
	"github.com/Gatu-1548/plagio-ia/internal/lifecycle"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/internal/storage"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// cliTab is the workspace id the CLI stores its session under.
const cliTab = "cli"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCommand(a).ExecuteContext(ctx)
	// Release the workspace even when the command failed.
	a.close()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app is shared by every subcommand; PersistentPreRunE fills it and main
// closes it.
type app struct {
	statePath string
	verbose   bool
	noColor   bool

	cfg      *config.Config
	log      logger.ILogger
	gw       *gateway.Client
	registry *workspace.Registry
	events   chan lifecycle.Event
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "consolectl",
		Short:         "Command line client for the plagiarism detection gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&a.statePath, "state", defaultStatePath(), "File holding the CLI session")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log gateway traffic to stderr")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newLoginCommand(a))
	cmd.AddCommand(newLogoutCommand(a))
	cmd.AddCommand(newWhoamiCommand(a))
	cmd.AddCommand(newOrgCommand(a))
	cmd.AddCommand(newProjectsCommand(a))
	cmd.AddCommand(newUploadCommand(a))
	cmd.AddCommand(newStatusCommand(a))
	cmd.AddCommand(newEventsCommand(a))
	return cmd
}

func defaultStatePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "plagio", "console.json")
	}
	return ".plagio-console.json"
}

func (a *app) setup() error {
	if a.noColor {
		color.NoColor = true
	}

	a.cfg = config.Load()
	a.log = logger.NewConsoleLogger(a.verbose)

	store, err := storage.NewFileStore(a.statePath)
	if err != nil {
		return err
	}

	a.gw = gateway.New(gateway.Options{
		BaseURL:        a.cfg.Gateway.BaseURL,
		GraphQLPath:    a.cfg.Gateway.GraphQLPath,
		UploadPath:     a.cfg.Gateway.UploadPath,
		RequestTimeout: a.cfg.Gateway.RequestTimeout,
		RateLimit:      a.cfg.Gateway.RateLimit,
		RateBurst:      a.cfg.Gateway.RateBurst,
		Logger:         a.log,
	})

	// Enough room for a full run; the poller never blocks on a slow reader.
	a.events = make(chan lifecycle.Event, 128)
	a.registry = workspace.NewRegistry(workspace.Dependencies{
		Storage: store,
		Gateway: a.gw,
		Poller: poller.Options{
			Interval:      a.cfg.Polling.Interval,
			Ceiling:       a.cfg.Polling.Ceiling,
			SilentTimeout: a.cfg.Polling.SilentTimeout,
		},
		OnEvent: func(_ string, ev lifecycle.Event) {
			select {
			case a.events <- ev:
			default:
			}
		},
		Logger: a.log,
	})
	return nil
}

func (a *app) close() {
	if a.registry != nil {
		a.registry.Close()
		a.registry = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// workspace returns the CLI's persisted workspace.
func (a *app) workspace(ctx context.Context) (*workspace.Workspace, error) {
	return a.registry.Get(ctx, cliTab)
}

func (a *app) signedIn(ctx context.Context) (*workspace.Workspace, error) {
	ws, err := a.workspace(ctx)
	if err != nil {
		return nil, err
	}
	if !ws.Session.Current().Authenticated() {
		return nil, fmt.Errorf("%w (run: consolectl login)", workspace.ErrSignedOut)
	}
	return ws, nil
}
