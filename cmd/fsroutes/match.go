package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/errors"
)

func matchCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match <url>",
		Short: "Resolve a URL against the page routes",
		Long: `Resolve a URL against the page routes and print the matched route,
the routes hosting it and the extracted parameters.

Query strings, fragments and trailing slashes are ignored.

Examples:
  fsroutes match /users/42
  fsroutes match "/docs/guide/install?tab=linux"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			m, ok, err := p.MatchPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("R141").WithMessage("No page matches %s", args[0])
			}

			w := cmd.OutOrStdout()
			if asJSON {
				chain := make([]string, 0, len(m.Chain))
				for _, c := range m.Chain {
					chain = append(chain, c.SourcePath)
				}
				return writeJSON(w, map[string]any{
					"pattern":    m.Pattern,
					"sourcePath": m.Route.SourcePath,
					"chain":      chain,
					"params":     m.Params,
				})
			}

			root := p.Config().Root()
			fmt.Fprintf(w, "Pattern: %s\n", m.Pattern)
			fmt.Fprintf(w, "Source:  %s\n", relPath(root, m.Route.SourcePath))
			for _, c := range m.Chain {
				fmt.Fprintf(w, "Layout:  %s\n", relPath(root, c.SourcePath))
			}
			for _, name := range sortedKeys(m.Params) {
				v := m.Params[name]
				if v.IsList {
					fmt.Fprintf(w, "Param:   %s = [%s]\n", name, strings.Join(v.List, ", "))
				} else {
					fmt.Fprintf(w, "Param:   %s = %s\n", name, v.Scalar)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the match as JSON")
	return cmd
}

func matchEndpointCmd(opts *globalOptions) *cobra.Command {
	var (
		method string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "match-endpoint <path>",
		Short: "Resolve a request against the server endpoints",
		Long: `Resolve a request path and method against the server endpoints.

Examples:
  fsroutes match-endpoint /api/users/42
  fsroutes match-endpoint /api/users/42 --method DELETE`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			path := args[0]
			m, ok, err := p.MatchEndpoint(cmd.Context(), path, method)
			if err != nil {
				return err
			}
			if !ok {
				allowed, err := p.AllowedMethods(cmd.Context(), path)
				if err != nil {
					return err
				}
				if len(allowed) > 0 {
					return errors.New("R142").
						WithMessage("%s is not served at %s", strings.ToUpper(method), path).
						WithSuggestion("Allowed methods: " + strings.Join(allowed, ", "))
				}
				return errors.New("R141").WithMessage("No endpoint matches %s", path)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, map[string]any{
					"pattern":    m.Route.Pattern,
					"sourcePath": m.Route.SourcePath,
					"method":     m.Route.Method,
					"kind":       m.Route.Kind.String(),
					"params":     m.Params,
				})
			}

			fmt.Fprintf(w, "Pattern: %s %s\n", methodLabel(m.Route.Method), m.Route.Pattern)
			fmt.Fprintf(w, "Source:  %s\n", relPath(p.Config().Root(), m.Route.SourcePath))
			for _, name := range sortedKeys(m.Params) {
				fmt.Fprintf(w, "Param:   %s = %s\n", name, m.Params[name])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the match as JSON")
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
