package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/septivank/earthquake-catalog/internal/config"
	"github.com/septivank/earthquake-catalog/internal/httpapi"
	"github.com/septivank/earthquake-catalog/internal/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRouter(svc *service.EarthquakeService, logger *zap.Logger) http.Handler {
	return httpapi.NewRouter(svc, logger)
}

func startHTTPServer(lc fx.Lifecycle, cfg *config.Config, handler http.Handler, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
			defer cancel()
			logger.Info("shutting down http server")
			return srv.Shutdown(shutdownCtx)
		},
	})

	return srv
}
