package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/pkg/router"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func routesCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the page route tree",
		Long: `Print the nested page route tree.

Nested routes are indented below the route that hosts them and show
their absolute pattern.

Examples:
  fsroutes routes
  fsroutes routes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			pages, err := p.Pages(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				if pages == nil {
					pages = []router.Route{}
				}
				return writeJSON(w, pages)
			}
			if len(pages) == 0 {
				warn(w, "No page routes found in %s", p.Config().PagesPath())
				return nil
			}

			root := p.Config().Root()
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			router.Walk(pages, func(r *router.Route, pattern string, chain []*router.Route) {
				fmt.Fprintf(tw, "%s%s\t%s\n", strings.Repeat("  ", len(chain)), pattern, relPath(root, r.SourcePath))
			})
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}

func endpointsCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Print the server endpoints",
		Long: `Print the server endpoints in match order.

Endpoints without a method in their filename accept any method and are
listed as "*".

Examples:
  fsroutes endpoints
  fsroutes endpoints --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			endpoints, err := p.Endpoints(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				if endpoints == nil {
					endpoints = []router.EndpointRoute{}
				}
				return writeJSON(w, endpoints)
			}
			if len(endpoints) == 0 {
				warn(w, "No endpoints found in %s", p.Config().ServerPath())
				return nil
			}

			root := p.Config().Root()
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, e := range endpoints {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", methodLabel(e.Method), e.Pattern, relPath(root, e.SourcePath))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the endpoints as JSON")
	return cmd
}

func methodLabel(method string) string {
	if method == "" {
		return "*"
	}
	return strings.ToUpper(method)
}
