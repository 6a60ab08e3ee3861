package main

import (
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/internal/inspect"
	"github.com/vango-dev/fsroutes/internal/watch"
	"github.com/vango-dev/fsroutes/pkg/project"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		port    int
		host    string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the route inspector",
		Long: `Start the route inspector HTTP server.

The inspector serves the route tables as JSON below /_routes, streams
invalidations over a WebSocket at /_routes/events and exposes
Prometheus metrics at /metrics. Route files are watched so the tables
stay current.

Examples:
  fsroutes serve
  fsroutes serve --port=8080
  fsroutes serve --host=0.0.0.0 --no-watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Inspect.Port = port
			}
			if host != "" {
				cfg.Inspect.Host = host
			}

			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			p := project.New(cfg, project.WithLogger(logger), project.WithMetrics(reg))

			serverOpts := []inspect.Option{inspect.WithLogger(logger), inspect.WithGatherer(reg)}
			if !noWatch {
				serverOpts = append(serverOpts, inspect.WithWatcher(watch.FromConfig(cfg)))
			}
			s := inspect.New(p, serverOpts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			success(w, "Route inspector at http://%s/_routes/pages", cfg.InspectAddress())
			info(w, "Project: %s", cfg.Root())

			err = s.Run(ctx, cfg.InspectAddress())
			if stderrors.Is(err, syscall.EADDRINUSE) {
				return errors.New("R144").
					WithMessage("Port %d is already in use", cfg.Inspect.Port).
					WithSuggestion("Pass --port to pick another port").
					Wrap(err)
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not watch route files")

	return cmd
}
