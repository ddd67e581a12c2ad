package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/prodsched/pkg/interfaces/api"
)

// ServeCommand runs the HTTP API until ctx is cancelled
type ServeCommand struct {
	runtime *Runtime
}

// NewServeCommand creates a new serve command
func NewServeCommand(rt *Runtime) *ServeCommand {
	return &ServeCommand{runtime: rt}
}

// Handler builds the gin engine serving the scheduling API
func (c *ServeCommand) Handler() *gin.Engine {
	cfg := c.runtime.Config
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewScheduleHandler(c.runtime.Orchestrator, cfg.Week, c.runtime.Events)
	return api.NewRouter(handler, c.runtime.Logger)
}

// Execute serves until ctx is done, then shuts down gracefully
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg := c.runtime.Config
	logger := c.runtime.Logger

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      c.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	started := time.Now()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server exited", zap.Duration("uptime", time.Since(started)))
	return nil
}
