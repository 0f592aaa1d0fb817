package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// runServer serves on ln until ctx is done, then drains in-flight requests
// before calling stopWorkers, so events emitted by those requests still reach
// the background workers.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, stopWorkers func(), logr *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logr.Info("shutting down")
	case runErr = <-serveErr:
		logr.Error("server failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	if stopWorkers != nil {
		stopWorkers()
	}
	return runErr
}
