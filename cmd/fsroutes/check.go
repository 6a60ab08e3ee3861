package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/errors"
)

func checkCmd(opts *globalOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report route table problems",
		Long: `Scan the project and report route table problems: duplicate pages or
endpoints, catch-alls followed by more segments, repeated parameter
names and ambiguous nesting.

Findings are diagnostics; the route table stays usable. Pass --strict to
exit with an error when there are findings.

Examples:
  fsroutes check
  fsroutes check --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			findings, err := p.Validate(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(findings) == 0 {
				success(w, "No route problems found")
				return nil
			}

			root := p.Config().Root()
			for _, f := range findings {
				e := errors.FromValidation(f)
				for i, file := range e.Files {
					e.Files[i] = relPath(root, file)
				}
				fmt.Fprint(w, e.Format())
			}
			fmt.Fprintln(w)
			warn(w, "%d route problem(s) found", len(findings))

			if strict {
				return errors.New("R143").WithMessage("%d route problem(s) found", len(findings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when problems are found")
	return cmd
}
