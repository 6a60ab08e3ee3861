// Command fsroutes inspects the file-based routes of a project.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/pkg/project"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	dir     string
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "fsroutes",
		Short: "Inspect file-based routes",
		Long: `fsroutes derives URL routes from a project's files.

Pages live in pages/, server endpoints in server/api/ (served below /api)
and server/routes/ (served from the site root). Filenames map to URL
patterns:

  pages/users/[id].vue          /users/:id
  pages/docs/[...slug].vue      /docs/:slug+
  pages/[[...all]].vue          /:all*
  server/api/users.get.ts       GET /api/users`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", "", "Project root (default: nearest directory with fsroutes.json or pages/)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		routesCmd(opts),
		endpointsCmd(opts),
		matchCmd(opts),
		matchEndpointCmd(opts),
		checkCmd(opts),
		serveCmd(opts),
		initCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// newLogger returns a text logger on w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the project root and loads its configuration.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	root := opts.dir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if root, err = config.FindProjectRoot(wd); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadOrDefault(root)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadProject loads the configuration and creates a project for it.
func loadProject(cmd *cobra.Command, opts *globalOptions, projectOpts ...project.Option) (*project.Project, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	projectOpts = append([]project.Option{project.WithLogger(logger)}, projectOpts...)
	return project.New(cfg, projectOpts...), nil
}

// relPath returns path relative to root when possible.
func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
