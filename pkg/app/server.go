package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

// ShutdownTimeout bounds the drain of in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
// Inbound requests are traced with otelhttp.
func (a *Application) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener. Background tasks registered
// by the routes run for as long as the server does.
func (a *Application) ServeListener(ctx context.Context, ln net.Listener) error {
	handler := a.Handler()
	if tasks := a.infra.Tasks; tasks != nil {
		taskCtx, stopTasks := context.WithCancel(ctx)
		tasks.Start(taskCtx)
		defer func() {
			stopTasks()
			tasks.Wait()
		}()
	}

	srv := &http.Server{
		Handler:           otelhttp.NewHandler(handler, config.AppName()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", ln.Addr().String(), "env", config.AppEnv())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server", "timeout", ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
