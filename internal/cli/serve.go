package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/city-events/internal/httpapi"
	"github.com/pfrederiksen/city-events/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var scrapeOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close()

			engine, err := rt.engine()
			if err != nil {
				return err
			}

			if !g.verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loc := rt.cfg.Location()
			if scrapeOnStart {
				report := engine.Run(ctx, rt.catalog, time.Now().In(loc))
				rt.log.Info("Startup scrape finished", logger.Fields{"summary": report.Summary()})
			}

			router := httpapi.NewRouter(httpapi.Deps{
				Store:       rt.store,
				Engine:      engine,
				Catalog:     rt.catalog,
				Metrics:     rt.metrics,
				Logger:      rt.log,
				Location:    loc,
				BasePath:    rt.cfg.Server.BasePath,
				JWTSecret:   rt.cfg.Auth.JWTSecret,
				CORSOrigins: rt.cfg.Server.CORSOrigins,
			})

			srv := &http.Server{
				Addr:              rt.cfg.Server.Addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       rt.cfg.Server.ReadTimeout,
				WriteTimeout:      rt.cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.log.Info("Server listening", logger.Fields{
					"addr":      srv.Addr,
					"base_path": rt.cfg.Server.BasePath,
					"auth":      rt.cfg.Auth.JWTSecret != "",
				})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			rt.log.Info("Shutdown signal received", nil)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&scrapeOnStart, "scrape", false, "Run one reconciliation before serving")

	return cmd
}
