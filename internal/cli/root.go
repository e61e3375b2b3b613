// Package cli implements the transmit command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Makepad-fr/transmit/internal/config"
	"github.com/Makepad-fr/transmit/internal/listing"
	"github.com/Makepad-fr/transmit/internal/logging"
	"github.com/Makepad-fr/transmit/internal/model"
	"github.com/Makepad-fr/transmit/internal/source"
	"github.com/Makepad-fr/transmit/internal/store/jsonstore"
	"github.com/Makepad-fr/transmit/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks mistakes in how the command was invoked.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error {
	return &usageError{err: fmt.Errorf(format, a...)}
}

// env is what every subcommand needs once the root has resolved config.
type env struct {
	cfg   *config.Config
	store source.Store
	log   zerolog.Logger
	logs  *logging.Result
}

type envKey struct{}

func envFrom(cmd *cobra.Command) *env {
	e, _ := cmd.Context().Value(envKey{}).(*env)
	return e
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd builds the transmit command tree.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		noColor bool
		color   bool
	)

	cmd := &cobra.Command{
		Use:   "transmit",
		Short: "Browse and manage document transmittals",
		Long: "transmit lists, searches and manages transmittals: batches of drawings\n" +
			"and documents sent to clients, contractors and consultants.",
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ui.SetColorForcing(color, noColor)

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return &usageError{err: fmt.Errorf("invalid configuration: %w", err)}
			}
			ui.SetTheme(strings.ToLower(cfg.Theme))

			logs, err := logging.New(logging.Config{
				Level:   cfg.LogLevel,
				File:    cfg.LogFile,
				Console: cmd.ErrOrStderr(),
				// the TUI owns the terminal
				Quiet: cmd.Name() == "ls",
			})
			if err != nil {
				return err
			}
			log := logging.Component(logs.Logger, "cli")
			log.Debug().
				Str("command", cmd.CommandPath()).
				Str("source", cfg.Source).
				Str("config", cfg.FileUsed).
				Msg("starting")

			st, err := openStore(cfg, logs.Logger)
			if err != nil {
				_ = logs.Close()
				return err
			}

			ctx := logs.Logger.WithContext(cmd.Context())
			cmd.SetContext(context.WithValue(ctx, envKey{}, &env{
				cfg:   cfg,
				store: st,
				log:   log,
				logs:  logs,
			}))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if e := envFrom(cmd); e != nil {
				return e.logs.Close()
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./"+config.FileName+" when present)")
	pf.String("source", config.SourceMock, "data source: mock, file or remote")
	pf.String("backend-url", source.DefaultBackendURL, "transmittal portal URL for the remote source")
	pf.String("data-file", "", "JSON file for the file source (default ./"+jsonstore.DefaultFileName+")")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-file", "", "also write JSON logs to this file")
	pf.String("theme", "classic", "colour theme: "+strings.Join(ui.Themes, ", "))
	pf.BoolVar(&noColor, "no-color", false, "disable colours")
	pf.BoolVar(&color, "color", false, "force colours even when not writing to a terminal")

	cmd.AddCommand(
		newLsCmd(),
		newListCmd(),
		newShowCmd(),
		newCountCmd(),
		newStatsCmd(),
		newAddCmd(),
		newEditCmd(),
		newRmCmd(),
		newGenerateCmd(),
		newDuplicateCmd(),
		newSendCmd(),
		newReceiveCmd(),
		newDocsCmd(),
	)
	return cmd
}

const rootCmdExample = `  # Browse interactively
  transmit ls

  # Drafts matching "plan", two "load more" steps
  transmit list --tab draft --search plan --more 2

  # Work against the portal API
  transmit --source remote --backend-url http://localhost:8001 list

  # Create, generate and send
  transmit add --title "Structural Drawings" --recipient "Jane Doe" --sender "Me" \
    --department Structural --doc "S-101|Foundation Plan|0|2|For construction"
  transmit generate <id>
  transmit send <id> --delivery-person Receptionist`

func openStore(cfg *config.Config, log zerolog.Logger) (source.Store, error) {
	opts := []source.MemoryOption{source.WithLogger(log), source.WithClock(now)}
	switch cfg.Source {
	case config.SourceFile:
		p, err := jsonstore.DataPath(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		return source.OpenFile(p, opts...)
	case config.SourceRemote:
		return source.NewRemote(cfg.BackendURL, cfg.Timeout, log), nil
	default:
		return source.NewMemory(source.Fixtures(), opts...), nil
	}
}

// Run executes args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	ui.Fail(stderr, err.Error())
	if h := hint(err); h != "" {
		ui.Hint(stderr, h)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	var (
		ue *usageError
		ve *model.ValidationError
	)
	switch {
	case errors.As(err, &ue), errors.As(err, &ve),
		errors.Is(err, listing.ErrInvalidTab),
		errors.Is(err, listing.ErrInvalidSortKey),
		errors.Is(err, source.ErrInvalidMode),
		errors.Is(err, source.ErrInvalidReceipt),
		errors.Is(err, source.ErrUnknownDocument),
		strings.HasPrefix(err.Error(), "unknown command"):
		return ExitUsage
	}
	return ExitError
}

func hint(err error) string {
	var fe *source.FetchError
	switch {
	case errors.Is(err, source.ErrNotFound):
		return "run `transmit list` to see transmittal ids"
	case errors.Is(err, source.ErrNotDraft):
		return "only drafts can be edited, deleted or generated; `transmit duplicate` makes a new draft"
	case errors.Is(err, source.ErrUnknownDocument):
		return "run `transmit docs` to see the document library"
	case errors.As(err, &fe) && fe.StatusCode == 0:
		return "is the portal running? use --source mock to work offline"
	case strings.HasPrefix(err.Error(), "unknown command"):
		return "run `transmit --help` for the list of commands"
	}
	return ""
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int, name string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("expected %s, got %d argument(s)", name, len(args))
		}
		return nil
	}
}
