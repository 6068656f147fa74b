//go:build !unix

package evaluator

import (
	"context"
	"os/exec"
	"runtime"
)

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// killGroupOnCancel leaves cmd alone; only the direct child is killed.
func killGroupOnCancel(cmd *exec.Cmd) *exec.Cmd {
	return cmd
}
