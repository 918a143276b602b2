package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Listeners pairs the API and metrics servers. An empty MetricsAddr skips
// the metrics listener.
type Listeners struct {
	Addr           string
	Handler        http.Handler
	MetricsAddr    string
	MetricsHandler http.Handler
}

// Serve runs the listeners until ctx is cancelled or one of them fails,
// then shuts both down.
func Serve(ctx context.Context, l Listeners, logger *slog.Logger) error {
	servers := []*http.Server{{
		Addr:              l.Addr,
		Handler:           l.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}}
	if l.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              l.MetricsAddr,
			Handler:           l.MetricsHandler,
			ReadHeaderTimeout: readHeaderTimeout,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info("server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}
	logger.Info("shutdown complete")
	return runErr
}
