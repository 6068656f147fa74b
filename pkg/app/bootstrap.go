package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/computerscienceiscool/llm-fsgate/internal/logging"
	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/evaluator"
	"github.com/computerscienceiscool/llm-fsgate/pkg/metrics"
	"github.com/computerscienceiscool/llm-fsgate/pkg/server"
	"github.com/computerscienceiscool/llm-fsgate/pkg/session"
	"go.uber.org/zap"
)

// Bootstrap initializes and returns a configured App
func Bootstrap(cfg *config.Config, version string) (*App, error) {
	if cfg.Policy == nil {
		cfg.Policy = config.MustDefaultPolicy()
	}

	// Resolve the root to an absolute path
	absRoot, err := filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve working directory: %w", err)
	}
	cfg.WorkingDirectory = absRoot

	info, err := os.Stat(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("working directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory is not a directory: %s", cfg.WorkingDirectory)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	sinks, err := openSinks(cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	sess := session.NewSession(logger, sinks...)

	m := metrics.NewMetrics()

	exec, err := evaluator.NewExecutor(cfg, sess.LogAudit, m, logger)
	if err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	logger.Info("bootstrap complete",
		zap.String("session", sess.ID),
		zap.String("root", cfg.WorkingDirectory),
		zap.Int64("max_file_size", cfg.Policy.MaxFileSize()),
		zap.Duration("default_timeout", cfg.Policy.DefaultTimeout()),
		zap.Int("audit_sinks", len(sinks)),
	)

	return &App{
		config:   cfg,
		logger:   logger,
		session:  sess,
		metrics:  m,
		executor: exec,
		server:   server.New(exec, version, logger),
	}, nil
}

// openSinks opens the configured audit destinations. Either may be unset.
func openSinks(cfg *config.Config) ([]session.AuditSink, error) {
	var sinks []session.AuditSink

	if cfg.AuditLogPath != "" {
		fileAudit, err := session.NewFileAudit(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("cannot open audit log: %w", err)
		}
		sinks = append(sinks, fileAudit)
	}

	if cfg.AuditDBPath != "" {
		db, err := session.OpenSQLiteAudit(cfg.AuditDBPath)
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, fmt.Errorf("cannot open audit database: %w", err)
		}
		sinks = append(sinks, db)
	}

	return sinks, nil
}
