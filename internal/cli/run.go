package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pgtools "github.com/jonwraymond/playground/backend/playground"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Run a playground and stream its output",
		Long: `Run a playground. Output lines are printed as the remote program produces
them. With --format json each line is a {"status":"data"} record followed by
a final {"status":"ok"} record.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayground(rootOpts, cmd, args[0])
		},
	}
}

func runPlayground(opts *RootOptions, cmd *cobra.Command, name string) error {
	ctx := cmd.Context()
	s, err := opts.newSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()

	out := opts.formatter(cmd)
	out.VerboseLog("running %s on %s", name, opts.config.URL)

	items, err := s.catalog.ExecuteStream(ctx, s.toolID(pgtools.ToolRun), map[string]any{"name": name})
	if err != nil {
		return operationError(err)
	}

	finished := false
	for item := range items {
		switch v := item.(type) {
		case string:
			if err := out.Chunk(v); err != nil {
				return err
			}
		case error:
			return operationError(v)
		case pgtools.Result:
			finished = true
			if out.Format == "json" {
				if err := out.Success("", v); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unexpected stream item %T", item)
		}
	}
	if !finished {
		return WrapExitError(ExitFailure, "run interrupted", ctx.Err())
	}
	return nil
}
