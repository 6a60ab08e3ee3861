package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/internal/errors"
)

func initCmd(opts *globalOptions) *cobra.Command {
	var yamlFormat bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write fsroutes.json (or fsroutes.yaml with --yaml) with the default
settings to the project root.

Examples:
  fsroutes init
  fsroutes init --yaml -C ./web`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				dir = "."
			}
			if config.Exists(dir) {
				return errors.New("R140").
					WithMessage("A config file already exists in %s", dir).
					WithSuggestion("Edit the existing file instead")
			}

			name := config.ConfigFileName
			if yamlFormat {
				name = config.YAMLConfigFileName
			}
			path := filepath.Join(dir, name)

			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yamlFormat, "yaml", false, "Write YAML instead of JSON")
	return cmd
}
