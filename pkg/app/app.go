package app

import (
	"context"
	"errors"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/evaluator"
	"github.com/computerscienceiscool/llm-fsgate/pkg/metrics"
	"github.com/computerscienceiscool/llm-fsgate/pkg/server"
	"github.com/computerscienceiscool/llm-fsgate/pkg/session"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	config   *config.Config
	logger   *zap.Logger
	session  *session.Session
	metrics  *metrics.Metrics
	executor *evaluator.Executor
	server   *server.Server
}

// Run serves MCP over stdio until the client disconnects or ctx is done.
// When a metrics address is configured it is served alongside.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	metricsErr := make(chan error, 1)
	if addr := a.config.MetricsAddr; addr != "" {
		a.logger.Info("serving metrics", zap.String("addr", addr))
		go func() {
			metricsErr <- a.metrics.Serve(ctx, addr)
		}()
	} else {
		close(metricsErr)
	}

	a.logger.Info("serving MCP on stdio", zap.String("session", a.session.ID))
	err := a.server.Run(ctx)
	cancel()

	if mErr := <-metricsErr; mErr != nil {
		a.logger.Error("metrics server failed", zap.Error(mErr))
		err = errors.Join(err, mErr)
	}

	a.logger.Info("session finished",
		zap.String("session", a.session.ID),
		zap.Int("operations", a.executor.GetCommandsRun()),
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the audit sinks and flushes the logger.
func (a *App) Close() error {
	err := a.session.Close()
	_ = a.logger.Sync()
	return err
}

// GetSession returns the app's session
func (a *App) GetSession() *session.Session {
	return a.session
}

// GetExecutor returns the app's executor
func (a *App) GetExecutor() *evaluator.Executor {
	return a.executor
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetServer returns the app's MCP server
func (a *App) GetServer() *server.Server {
	return a.server
}

// GetMetrics returns the app's metrics
func (a *App) GetMetrics() *metrics.Metrics {
	return a.metrics
}
