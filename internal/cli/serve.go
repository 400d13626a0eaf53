package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"finanzas-be/internal/logging"
	"finanzas-be/internal/router"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, seed categories and start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			if err := a.prepare(ctx); err != nil {
				return err
			}
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight requests
// for at most ShutdownTimeout.
func (a *app) serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	if a.cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	r := router.New(a.cfg, a.services(), a.db, a.logger)
	defer r.Close()

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log := a.logger.WithComponent(logging.ComponentHTTP)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "addr", a.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
