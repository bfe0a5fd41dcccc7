package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/server"
)

func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON HTTP API. Requests identify the user with the X-User-ID
header.

Example:
  careerprep serve --listen :8080
  curl -H 'X-User-ID: alice' localhost:8080/api/v1/quiz -X POST`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(cmd, func(a *app) error {
				addr := listen
				if addr == "" {
					addr = a.cfg.Server.Listen
				}

				if interval := a.cfg.SweepInterval(); interval > 0 {
					go sweepLoop(ctx, a.svc.Orchestrator().Store(), interval, a.logger)
				}

				if a.cfg.Server.AdminToken == "" {
					a.logger.Info("admin routes disabled, set server.admin_token to enable them")
				}

				a.logger.Info("starting server", zap.String("listen", addr))
				return server.New(a.svc, a.logger, server.Options{AdminToken: a.cfg.Server.AdminToken}).Run(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: server.listen from config)")
	return cmd
}

// sweepLoop removes expired cache entries every interval until ctx ends
func sweepLoop(ctx context.Context, store *cache.Store, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logger.Debug("swept expired cache entries", zap.Int("removed", n))
			}
		}
	}
}
