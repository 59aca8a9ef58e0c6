package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/legendpack/internal/server"
	"github.com/matzehuels/legendpack/pkg/observability"
)

// serveCommand runs the HTTP API until the process is interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   packFlags
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the packer over HTTP",
		Example: `  legendpack serve --addr :9000
  curl -s localhost:9000/v1/pack -d @legend.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.effectiveConfig(cmd, &flags, nil); err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPackHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)

			h := server.New(runner, c.Logger, c.pipelineOptions(nil, false))
			return c.listen(ctx, c.Config.Server.Addr, h.Router())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

// listen serves handler on addr and shuts down gracefully when ctx ends.
func (c *CLI) listen(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
