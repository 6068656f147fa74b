package evaluator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"github.com/computerscienceiscool/llm-fsgate/pkg/sandbox"
)

// waitDelay bounds how long Wait blocks on pipes held open by stray
// descendants after the process group has been killed.
const waitDelay = 2 * time.Second

// CommandRunner executes shell command strings under CommandPolicy.
type CommandRunner struct {
	paths          *sandbox.PathGuard
	commands       *sandbox.CommandPolicy
	defaultTimeout time.Duration
}

func NewCommandRunner(cfg *config.Config) *CommandRunner {
	return &CommandRunner{
		paths:          sandbox.NewPathGuard(cfg.WorkingDirectory),
		commands:       sandbox.NewCommandPolicy(cfg.Policy),
		defaultTimeout: cfg.Policy.DefaultTimeout(),
	}
}

// Run handles the "runCommand" operation. A non-zero exit code is reported,
// not treated as a failure; only rejection, timeout and start errors are.
func (r *CommandRunner) Run(ctx context.Context, req CommandRequest) ExecutionResult {
	if err := r.commands.Check(req.Command); err != nil {
		return failed(OpRunCommand, req.Command, err)
	}

	if req.WorkingDirectory == "" {
		req.WorkingDirectory = "."
	}
	workDir, err := r.paths.Validate(req.WorkingDirectory)
	if err != nil {
		return failed(OpRunCommand, req.Command, err)
	}
	if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
		return failed(OpRunCommand, req.Command, failure.New(failure.NotFound,
			"working directory does not exist or is not a directory: %s", workDir))
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(runCtx, req.Command)
	cmd.Dir = workDir
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	result := ExecutionResult{
		Op:       OpRunCommand,
		Argument: req.Command,
		ExitCode: -1,
		Stdout:   strings.ToValidUTF8(stdout.String(), "\uFFFD"),
		Stderr:   strings.ToValidUTF8(stderr.String(), "\uFFFD"),
	}

	if runErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.Error = failure.New(failure.TimedOut, "command timed out after %v", timeout)
		return result
	}
	if runErr != nil && ctx.Err() != nil {
		result.Error = failure.Wrap(failure.IOFailure, ctx.Err(), "command interrupted")
		return result
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.Error = failure.Wrap(failure.IOFailure, runErr, "failed to start command")
		return result
	}

	lines := []string{
		"Command: " + req.Command,
		"Working Directory: " + workDir,
		fmt.Sprintf("Return Code: %d", result.ExitCode),
	}
	if result.Stdout != "" {
		lines = append(lines, "\nStandard Output:\n"+result.Stdout)
	}
	if result.Stderr != "" {
		lines = append(lines, "\nError Output:\n"+result.Stderr)
	}
	result.Result = strings.Join(lines, "\n")
	return result
}
