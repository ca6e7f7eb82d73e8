// Package cli implements dicctl, a command line client for the DIC analysis
// backend. Every command drives one state.Store action.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/dicanalyzer/internal/config"
	"github.com/kiranshivaraju/dicanalyzer/internal/dic"
	"github.com/kiranshivaraju/dicanalyzer/internal/state"
	"github.com/spf13/cobra"
)

// ClientFactory builds the backend client once configuration is known.
type ClientFactory func(cfg *config.ClientConfig) dic.Client

// DefaultClientFactory talks HTTP to cfg.Backend.
func DefaultClientFactory(cfg *config.ClientConfig) dic.Client {
	return dic.NewHTTPClient(cfg.Backend.BaseURL, cfg.Backend.Prefix, cfg.Backend.Timeout)
}

// app is the state shared by all commands of one invocation.
type app struct {
	newClient ClientFactory

	backend string
	timeout time.Duration
	jsonOut bool
	verbose bool

	cfg    *config.ClientConfig
	client dic.Client
	logger *slog.Logger
}

// NewRootCommand assembles dicctl. newClient may be nil.
func NewRootCommand(newClient ClientFactory) *cobra.Command {
	if newClient == nil {
		newClient = DefaultClientFactory
	}
	a := &app{newClient: newClient}

	root := &cobra.Command{
		Use:           "dicctl",
		Short:         "Manage DIC analyses on a DIC Analyzer backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.backend, "backend", "", "Backend base URL (default $BACKEND_URL)")
	flags.DurationVar(&a.timeout, "timeout", 0, "Request timeout (default $BACKEND_TIMEOUT)")
	flags.BoolVar(&a.jsonOut, "json", false, "JSON output")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging on stderr")

	root.AddCommand(
		a.listCommand(),
		a.showCommand(),
		a.createCommand(),
		a.cancelCommand(),
		a.deleteCommand(),
		a.downloadCommand(),
		a.imageCommand(),
		a.statsCommand(),
		a.summaryCommand(),
		a.recentCommand(),
	)
	return root
}

// Execute runs dicctl against os.Args and prints any failure to stderr.
func Execute(ctx context.Context) error {
	root := NewRootCommand(nil)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	cfg, err := config.LoadClient(a.backend)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.timeout > 0 {
		cfg.Backend.Timeout = a.timeout
	}
	a.cfg = cfg
	a.client = a.newClient(cfg)
	a.logger.Debug("client configured", "backend", cfg.Backend.BaseURL, "timeout", cfg.Backend.Timeout)
	return nil
}

// store returns a fresh store over the configured client.
func (a *app) store(opts ...state.Option) *state.Store {
	base := []state.Option{state.WithPageSize(a.cfg.PageSize), state.WithLogger(a.logger)}
	return state.New(a.client, append(base, opts...)...)
}

// fail reports the store's user-facing message while keeping err for errors.Is.
func fail(st *state.Store, err error) error {
	if msg := st.Err(); msg != "" {
		return &commandError{msg: msg, err: err}
	}
	return err
}

type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string { return e.msg }
func (e *commandError) Unwrap() error { return e.err }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
