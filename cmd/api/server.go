package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"library-lending-backend/internal/config"
	"library-lending-backend/pkg/container"
	"library-lending-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Serve dựng container, chạy HTTP server đến khi nhận SIGINT/SIGTERM
func Serve() error {
	appContainer, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("init container: %w", err)
	}
	defer appContainer.Cleanup()

	cfg := appContainer.Config
	srv := newHTTPServer(cfg.App, SetupRouter(appContainer))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Lending API starting", map[string]interface{}{
		"addr":           srv.Addr,
		"env":            cfg.App.Environment,
		"storage_driver": cfg.Storage.Driver,
		"email_driver":   cfg.Email.Driver,
	})

	if err := runServer(ctx, srv, shutdownTimeout); err != nil {
		return err
	}

	logger.Info("Lending API stopped", map[string]interface{}{
		"mailer_state": appContainer.Mailer.State().String(),
	})
	return nil
}

// newHTTPServer: WriteTimeout dài hơn mặc định vì export Excel và notify sync
func newHTTPServer(app config.AppConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + app.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// runServer block đến khi ctx bị cancel hoặc listener lỗi.
// Listener lỗi được trả về thay vì exit ngay, để defer Cleanup vẫn chạy.
func runServer(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server", map[string]interface{}{"timeout": timeout.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	logger.Error("Lending API exited with error", err)
	os.Exit(1)
}
