package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AuditFunc records one operation outcome.
type AuditFunc func(cmd, arg string, success bool, errMsg string)

// Recorder receives per-operation measurements. outcome is "ok" or the
// failure kind.
type Recorder interface {
	Observe(op, outcome string, duration time.Duration)
}

// Executor runs every operation through the same envelope: rate limit,
// then the operation's own guards, then audit, metrics and logging.
//
// Security model:
// - PathGuard rejects literal ".." segments only; symlinks are followed and
//   results are not confined to the working directory
// - CommandPolicy is a default-allow denylist over whitespace tokens
// - No per-path locking; concurrent writers race at the filesystem
// - All operations audited when an audit sink is configured
type Executor struct {
	config      *config.Config
	files       *FileOps
	runner      *CommandRunner
	searcher    *SearchRunner
	auditLog    AuditFunc
	recorder    Recorder
	logger      *zap.Logger
	limiter     *rate.Limiter
	commandsRun int
	mu          sync.Mutex
}

// NewExecutor creates a new executor instance. auditLog, recorder and logger
// may be nil.
func NewExecutor(cfg *config.Config, auditLog AuditFunc, recorder Recorder, logger *zap.Logger) (*Executor, error) {
	files, err := NewFileOps(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Executor{
		config:   cfg,
		files:    files,
		runner:   NewCommandRunner(cfg),
		searcher: NewSearchRunner(cfg),
		auditLog: auditLog,
		recorder: recorder,
		logger:   logger,
	}
	if cfg.RateLimitPerMinute > 0 {
		perSecond := rate.Limit(float64(cfg.RateLimitPerMinute) / 60)
		e.limiter = rate.NewLimiter(perSecond, cfg.RateLimitPerMinute)
	}
	return e, nil
}

func (e *Executor) Read(ctx context.Context, path string) ExecutionResult {
	return e.execute(ctx, OpRead, path, func() ExecutionResult {
		return e.files.Read(path)
	})
}

func (e *Executor) Write(ctx context.Context, req WriteRequest) ExecutionResult {
	return e.execute(ctx, OpWrite, req.Path, func() ExecutionResult {
		return e.files.Write(req)
	})
}

func (e *Executor) Append(ctx context.Context, req WriteRequest) ExecutionResult {
	return e.execute(ctx, OpAppend, req.Path, func() ExecutionResult {
		return e.files.Append(req)
	})
}

func (e *Executor) List(ctx context.Context, req ListRequest) ExecutionResult {
	return e.execute(ctx, OpList, req.Path, func() ExecutionResult {
		return e.files.List(req)
	})
}

func (e *Executor) Info(ctx context.Context, path string) ExecutionResult {
	return e.execute(ctx, OpInfo, path, func() ExecutionResult {
		return e.files.Info(path)
	})
}

func (e *Executor) Mkdir(ctx context.Context, path string) ExecutionResult {
	return e.execute(ctx, OpMkdir, path, func() ExecutionResult {
		return e.files.Mkdir(path)
	})
}

func (e *Executor) RunCommand(ctx context.Context, req CommandRequest) ExecutionResult {
	return e.execute(ctx, OpRunCommand, req.Command, func() ExecutionResult {
		return e.runner.Run(ctx, req)
	})
}

func (e *Executor) Search(ctx context.Context, req SearchRequest) ExecutionResult {
	return e.execute(ctx, OpSearch, req.Pattern, func() ExecutionResult {
		return e.searcher.Search(ctx, req)
	})
}

func (e *Executor) CurrentDirectory(ctx context.Context) ExecutionResult {
	return e.execute(ctx, OpCurrentDirectory, "", e.files.CurrentDirectory)
}

func (e *Executor) execute(ctx context.Context, op, arg string, run func() ExecutionResult) ExecutionResult {
	startTime := time.Now()

	var result ExecutionResult
	switch {
	case ctx.Err() != nil:
		result = failed(op, arg, failure.Wrap(failure.IOFailure, ctx.Err(), "request cancelled"))
	case e.limiter != nil && !e.limiter.Allow():
		result = failed(op, arg, failure.New(failure.RateLimited,
			"rate limit exceeded (%d operations per minute)", e.config.RateLimitPerMinute))
	default:
		result = run()
	}

	result.Op = op
	result.Argument = arg
	result.Success = result.Error == nil
	result.ExecutionTime = time.Since(startTime)

	e.record(result)
	return result
}

func (e *Executor) record(result ExecutionResult) {
	if result.Success {
		e.mu.Lock()
		e.commandsRun++
		e.mu.Unlock()
	}

	outcome := "ok"
	if !result.Success {
		outcome = string(failure.KindOf(result.Error))
	}

	if e.recorder != nil {
		e.recorder.Observe(result.Op, outcome, result.ExecutionTime)
	}

	if e.auditLog != nil {
		e.auditLog(result.Op, result.Argument, result.Success, auditMessage(result))
	}

	fields := []zap.Field{
		zap.String("op", result.Op),
		zap.String("arg", result.Argument),
		zap.Duration("duration", result.ExecutionTime),
	}
	if result.Success {
		e.logger.Debug("operation completed", fields...)
	} else {
		fields = append(fields, zap.String("kind", outcome), zap.Error(result.Error))
		e.logger.Warn("operation failed", fields...)
	}
}

// auditMessage is the full error on failure and a compact summary on success.
func auditMessage(result ExecutionResult) string {
	if !result.Success {
		return result.Error.Error()
	}
	switch result.Op {
	case OpWrite, OpAppend:
		return fmt.Sprintf("bytes:%d,action:%s,encoding:%s", result.BytesWritten, result.Action, result.Encoding)
	case OpRead:
		return fmt.Sprintf("encoding:%s", result.Encoding)
	case OpRunCommand:
		return fmt.Sprintf("exit_code:%d,duration:%.3fs", result.ExitCode, result.ExecutionTime.Seconds())
	case OpSearch:
		return fmt.Sprintf("lines:%d,truncated:%t", len(result.Matches), result.Truncated)
	default:
		return ""
	}
}

// GetCommandsRun returns the number of successfully executed operations
func (e *Executor) GetCommandsRun() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commandsRun
}

// GetConfig returns the executor's configuration
func (e *Executor) GetConfig() *config.Config {
	return e.config
}
