//go:build unix

package evaluator

import (
	"context"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// shellCommand runs command through sh in its own process group so a
// timeout takes down everything the shell spawned.
func shellCommand(ctx context.Context, command string) *exec.Cmd {
	return killGroupOnCancel(exec.CommandContext(ctx, "sh", "-c", command))
}

// killGroupOnCancel starts cmd as a process group leader and makes context
// cancellation SIGKILL the whole group, so descendants holding our pipes
// die with it.
func killGroupOnCancel(cmd *exec.Cmd) *exec.Cmd {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	return cmd
}
