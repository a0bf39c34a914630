package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	pgtools "github.com/jonwraymond/playground/backend/playground"
)

// Manifest describes a playground's contents in YAML:
//
//	source_file: main.exs
//	dependencies:
//	  jason: "~> 1.4"
//
// Inline source may be given instead of source_file. A relative
// source_file is resolved against the manifest's directory.
type Manifest struct {
	Source       string            `yaml:"source"`
	SourceFile   string            `yaml:"source_file"`
	Dependencies map[string]string `yaml:"dependencies"`
}

// LoadManifest reads and resolves a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.SourceFile != "" {
		if m.Source != "" {
			return nil, fmt.Errorf("manifest %s: source and source_file are mutually exclusive", path)
		}
		src := m.SourceFile
		if !filepath.IsAbs(src) {
			src = filepath.Join(filepath.Dir(path), src)
		}
		content, err := os.ReadFile(src)
		if err != nil {
			return nil, err
		}
		m.Source = string(content)
	}
	return &m, nil
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	File     string
	Manifest string
	Deps     []string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Replace a playground's source and dependencies",
		Long: `Replace a playground's source and dependencies.

The source comes from --file or from a YAML manifest (--manifest). --dep
entries are added to the manifest's dependencies.

Example:
  playground update demo --file main.exs --dep jason=~>1.4
  playground update demo --manifest playground.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, deps, err := opts.contents()
			if err != nil {
				return WrapExitError(ExitCommandError, "read input", err)
			}
			result, err := opts.call(cmd, pgtools.ToolUpdate, map[string]any{
				"name":         args[0],
				"source":       source,
				"dependencies": deps,
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success("updated "+result.Name, result)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "source file")
	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "YAML manifest with source and dependencies")
	cmd.Flags().StringArrayVar(&opts.Deps, "dep", nil, "dependency as name=version (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("file", "manifest")
	cmd.MarkFlagsOneRequired("file", "manifest")

	return cmd
}

func (o *UpdateOptions) contents() (string, map[string]string, error) {
	deps := map[string]string{}
	var source string

	switch {
	case o.Manifest != "":
		m, err := LoadManifest(o.Manifest)
		if err != nil {
			return "", nil, err
		}
		source = m.Source
		for k, v := range m.Dependencies {
			deps[k] = v
		}
	case o.File != "":
		data, err := os.ReadFile(o.File)
		if err != nil {
			return "", nil, err
		}
		source = string(data)
	}

	for _, d := range o.Deps {
		name, version, ok := strings.Cut(d, "=")
		name, version = strings.TrimSpace(name), strings.TrimSpace(version)
		if !ok || name == "" || version == "" {
			return "", nil, fmt.Errorf("invalid --dep %q: want name=version", d)
		}
		deps[name] = version
	}
	return source, deps, nil
}
