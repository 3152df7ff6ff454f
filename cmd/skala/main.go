package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"skaladash/internal/cache"
	"skaladash/internal/client"
	"skaladash/internal/config"
	"skaladash/internal/dashboard"
	"skaladash/internal/errtext"
	"skaladash/internal/session"
	"skaladash/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()

	root := &cobra.Command{
		Use:          "skala",
		Short:        "SKALA stock dashboard client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.BackendBaseURL, "api", cfg.BackendBaseURL, "backend base URL")

	dash := newDashCmd(&cfg)
	root.RunE = dash.RunE
	root.AddCommand(dash, newShellCmd(&cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app is one operator session: a cookie-holding store, the client that
// rides on it and the controller over both.
type app struct {
	ctl    *dashboard.Controller
	log    *slog.Logger
	closer io.Closer
}

func newApp(cfg *config.CLIConfig) (*app, error) {
	logger, closer, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	logger = logger.With("backend", cfg.BackendBaseURL)
	store := session.New()
	api := client.NewClient(cfg.BackendBaseURL, store,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)
	views := cache.New(api, client.Page{Count: cfg.PageSize})
	return &app{
		ctl:    dashboard.New(api, store, views, errtext.Default(), logger),
		log:    logger,
		closer: closer,
	}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

func newDashCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Open the full-screen dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			a.log.Info("dashboard started")
			p := tea.NewProgram(tui.New(cmd.Context(), a.ctl), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

func newShellCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Line-oriented prompt for the same actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			a.log.Info("shell started")
			return runShell(cmd.Context(), a.ctl)
		},
	}
}
