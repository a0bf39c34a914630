package cli

import (
	"fmt"
	"strings"

	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/spf13/cobra"
)

// ToolsOptions holds flags for the tools command.
type ToolsOptions struct {
	*RootOptions
	Search   string
	Limit    int
	Describe string
}

// ToolInfo is the listing entry for one tool.
type ToolInfo struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// NewToolsCommand creates the tools command.
func NewToolsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToolsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List or search the playground tools",
		Long: `List the tools the playground backend exposes to MCP clients, or search
them with --search. No connection is made.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Describe != "" {
				return opts.describe(cmd)
			}
			infos, err := opts.list(cmd)
			if err != nil {
				return err
			}
			lines := make([]string, 0, len(infos))
			for _, info := range infos {
				lines = append(lines, fmt.Sprintf("%-32s %s", info.ID, info.Description))
			}
			return opts.formatter(cmd).Success(strings.Join(lines, "\n"), infos)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "search query")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum search results")
	cmd.Flags().StringVar(&opts.Describe, "describe", "", "show documentation for a tool ID")
	cmd.MarkFlagsMutuallyExclusive("search", "describe")

	return cmd
}

func (o *ToolsOptions) list(cmd *cobra.Command) ([]ToolInfo, error) {
	s, err := o.newSession(cmd.Context(), false)
	if err != nil {
		return nil, err
	}
	defer s.close()

	if o.Search == "" {
		tools, err := s.catalog.Tools(cmd.Context())
		if err != nil {
			return nil, err
		}
		out := make([]ToolInfo, 0, len(tools))
		for _, t := range tools {
			out = append(out, ToolInfo{ID: s.toolID(t.Name), Description: t.Description, Tags: t.Tags})
		}
		return out, nil
	}

	hits, err := s.catalog.Search(o.Search, o.Limit)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "search tools", err)
	}
	out := make([]ToolInfo, 0, len(hits))
	for _, h := range hits {
		out = append(out, ToolInfo{ID: h.ID, Description: h.ShortDescription, Tags: h.Tags})
	}
	return out, nil
}

// ToolDoc is the documentation printed by tools --describe.
type ToolDoc struct {
	ID       string                `json:"id"`
	Summary  string                `json:"summary"`
	Notes    string                `json:"notes,omitempty"`
	Examples []tooldoc.ToolExample `json:"examples,omitempty"`
}

func (o *ToolsOptions) describe(cmd *cobra.Command) error {
	s, err := o.newSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.catalog.Describe(o.Describe, tooldoc.DetailFull)
	if err != nil {
		return WrapExitError(ExitCommandError, "describe "+o.Describe, err)
	}
	examples, err := s.catalog.Examples(o.Describe, o.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "describe "+o.Describe, err)
	}
	out := ToolDoc{ID: o.Describe, Summary: doc.Summary, Notes: doc.Notes, Examples: examples}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n  %s", out.ID, out.Summary)
	if out.Notes != "" {
		fmt.Fprintf(&b, "\n  %s", out.Notes)
	}
	for _, ex := range out.Examples {
		fmt.Fprintf(&b, "\n  example: %s %v", ex.Title, ex.Args)
	}
	return o.formatter(cmd).Success(b.String(), out)
}
