package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"payway-adapter/internal/api"
	"payway-adapter/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the pending-transaction poller",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			return serve(ctx, app, origins)
		},
	}

	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "Allowed CORS origins")
	return cmd
}

func serve(ctx context.Context, app *App, origins []string) error {
	log := app.Logger
	gin.SetMode(gin.ReleaseMode)

	router := api.NewRouter(api.Dependencies{
		Payments:     app.Payments,
		Providers:    app.Providers,
		Denylist:     app.Denylist,
		Logger:       log,
		JWTSecret:    app.Config.JWTSecret,
		AllowOrigins: origins,
	})

	if interval := app.Config.PayWay.PollInterval; interval > 0 {
		poller := services.NewStatusPoller(app.Payments, app.Transactions, interval, app.Config.PayWay.PollAge, log)
		go poller.Start(ctx)
		defer poller.Stop()
	}

	srv := &http.Server{
		Addr:              app.Config.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
