package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cvtopo/pkg/observability"
	"github.com/matzehuels/cvtopo/pkg/pipeline"
	"github.com/matzehuels/cvtopo/pkg/server"
	"github.com/matzehuels/cvtopo/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var noStore bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve topology extraction over HTTP. Results are cached with the configured
cache backend and, when requested, stored as snapshots in the configured
store (a directory or a mongodb:// URI).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if cmd.Flags().Changed("cache") {
				c.Config.Cache.Backend, _ = cmd.Flags().GetString("cache")
			}
			if cmd.Flags().Changed("store") {
				c.Config.Store.URI, _ = cmd.Flags().GetString("store")
			}

			ch, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(ch, nil, logger)
			defer runner.Close()

			var st store.Store
			if !noStore {
				st, err = c.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
			}

			hooks := observability.NewLogHooks(logger)
			observability.SetHTTPHooks(hooks)
			observability.SetCacheHooks(hooks)

			addr := stringFlag(cmd, "addr", c.Config.Server.Addr)
			srv := server.New(addr, server.NewRouter(server.NewHandler(runner, st, logger)), logger)

			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return <-errc
		},
	}

	cmd.Flags().String("addr", "", "listen address (default \":8080\")")
	cmd.Flags().String("cache", "", "cache backend: file, memory, redis or none")
	cmd.Flags().String("store", "", "snapshot store: a directory or a mongodb:// URI")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable snapshot storage")
	return cmd
}
