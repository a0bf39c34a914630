package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pgtools "github.com/jonwraymond/playground/backend/playground"
	"github.com/jonwraymond/playground/protocol"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Env string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a playground",
		Long: fmt.Sprintf(`Create a named playground for a language environment (%s).

Example:
  playground create demo --env elixir`, envList()),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.call(cmd, pgtools.ToolCreate, map[string]any{
				"name": args[0],
				"env":  opts.Env,
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success("created "+result.Name, result)
		},
	}

	cmd.Flags().StringVar(&opts.Env, "env", string(protocol.EnvElixir), "language environment")

	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <name>",
		Aliases:       []string{"rm"},
		Short:         "Remove a playground",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rootOpts.call(cmd, pgtools.ToolRemove, map[string]any{"name": args[0]})
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success("removed "+result.Name, result)
		},
	}
}

func envList() string {
	names := make([]string, 0, len(protocol.Envs))
	for _, e := range protocol.Envs {
		names = append(names, string(e))
	}
	return strings.Join(names, ", ")
}
