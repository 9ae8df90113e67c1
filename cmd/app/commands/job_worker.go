package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/allisson/jobcrypt/internal/app"
	"github.com/allisson/jobcrypt/internal/config"
)

// RunJobWorker runs a standalone job engine process: it restores active job
// reports from the database, then serves the job HTTP API so dispatch,
// status, and control requests can be driven against it directly, letting
// job execution scale independently of the api-and-job process started by
// RunServer.
func RunJobWorker(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting job worker", slog.String("version", version))
	defer closeContainer(container, logger)

	jobUseCase, err := container.JobUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize job use case: %w", err)
	}

	logger.Info("restoring active jobs")
	if err := jobUseCase.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore active jobs: %w", err)
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("job api server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("job api server shutdown: %w", err)
		}
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer shutdownCancel()
		var shutdownErrors []error
		shutdownErrors = append(shutdownErrors, err)
		if shutErr := server.Shutdown(shutdownCtx); shutErr != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("job api server shutdown: %w", shutErr))
		}
		return errors.Join(shutdownErrors...)
	}

	return nil
}
