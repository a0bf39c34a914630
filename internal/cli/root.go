// Package cli implements the playground command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonwraymond/playground/backend"
	pgtools "github.com/jonwraymond/playground/backend/playground"
	"github.com/jonwraymond/playground/correlate"
	"github.com/jonwraymond/playground/internal/config"
	"github.com/jonwraymond/playground/internal/observability"
	pg "github.com/jonwraymond/playground/playground"
	"github.com/jonwraymond/playground/transport"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags and the state resolved from them.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	URL        string

	// Dialer overrides the WebSocket dialer; tests point it at a fake service.
	Dialer transport.Dialer

	config    *config.Config
	logger    *zap.Logger
	closeLogs func() error
}

// NewRootCommand creates the root command.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}

	cmd := &cobra.Command{
		Use:   "playground",
		Short: "Manage remote playground sandboxes",
		Long: `Create, update, run and remove named playground sandboxes on a remote
playground service. Run output is streamed as the program produces it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = opts.shutdownLogging()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: playground.yaml in ., ./configs, ~/.playground)")
	cmd.PersistentFlags().StringVar(&opts.URL, "url", "", "playground service URL (overrides config)")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewToolsCommand(opts))

	return cmd
}

func (o *RootOptions) setup() error {
	if !slices.Contains(ValidFormats, o.Format) {
		return WrapExitError(ExitCommandError, "invalid flag",
			fmt.Errorf("format %q must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if strings.TrimSpace(o.URL) != "" {
		cfg.URL = o.URL
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, closeLogs, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "set up logging", err)
	}
	o.config = cfg
	o.logger = logger
	o.closeLogs = closeLogs
	return nil
}

// shutdownLogging flushes the logger and closes its files. It is safe to call
// more than once.
func (o *RootOptions) shutdownLogging() error {
	if o.closeLogs == nil {
		return nil
	}
	err := o.closeLogs()
	o.closeLogs = nil
	return err
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) idGenerator() correlate.IDGenerator {
	if o.config.IDFormat == config.IDFormatUUID {
		return correlate.UUIDGenerator{}
	}
	return correlate.Base36Generator{}
}

// session is a tool catalog holding one playground backend.
type session struct {
	catalog *backend.Catalog
	tools   *pgtools.Backend
}

// newSession builds the catalog. The connection opens only when connect is
// set.
func (o *RootOptions) newSession(ctx context.Context, connect bool) (*session, error) {
	mgr, err := pg.New(pg.Config{
		URL:         o.config.URL,
		Dialer:      o.Dialer,
		IDs:         o.idGenerator(),
		DialTimeout: o.config.DialTimeout,
		Logger:      observability.NewSugar(o.logger).Named("playground"),
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure client", err)
	}
	tools, err := pgtools.New(pgtools.Config{Manager: mgr})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure tools", err)
	}
	cat := backend.NewCatalog()
	if err := cat.Register(ctx, tools); err != nil {
		return nil, WrapExitError(ExitCommandError, "register tools", err)
	}

	s := &session{catalog: cat, tools: tools}
	if connect {
		if err := cat.StartAll(ctx); err != nil {
			s.close()
			return nil, WrapExitError(ExitFailure, "connect to "+o.config.URL, err)
		}
	}
	return s, nil
}

func (s *session) close() {
	_ = s.catalog.StopAll()
}

func (s *session) toolID(tool string) string {
	return backend.FormatToolID(s.tools.Name(), tool)
}

// call runs tool to completion.
func (o *RootOptions) call(cmd *cobra.Command, tool string, args map[string]any) (pgtools.Result, error) {
	ctx := cmd.Context()
	s, err := o.newSession(ctx, true)
	if err != nil {
		return pgtools.Result{}, err
	}
	defer s.close()

	o.formatter(cmd).VerboseLog("calling %s on %s", tool, o.config.URL)
	out, err := s.catalog.Execute(ctx, s.toolID(tool), args)
	if err != nil {
		return pgtools.Result{}, operationError(err)
	}
	result, _ := out.(pgtools.Result)
	return result, nil
}

// operationError maps client errors onto exit codes.
func operationError(err error) error {
	switch {
	case errors.Is(err, backend.ErrInvalidArgs), errors.Is(err, pg.ErrInvalidRequest):
		return WrapExitError(ExitCommandError, "invalid request", err)
	default:
		return WrapExitError(ExitFailure, "operation failed", err)
	}
}

// Execute runs the command line with args, reports any failure in the
// selected format and returns the process exit code.
func Execute(ctx context.Context, opts *RootOptions, args []string) int {
	if opts == nil {
		opts = &RootOptions{}
	}
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	// PersistentPostRun is skipped when the command fails.
	_ = opts.shutdownLogging()
	if err == nil {
		return ExitSuccess
	}
	f := opts.formatter(cmd)
	if !slices.Contains(ValidFormats, f.Format) {
		f.Format = "text"
	}
	f.Failure(err)
	return GetExitCode(err)
}
