// Process capability - shell command execution with captured output.
//
// Information Hiding:
// - Shell execution details hidden
// - Output capture and truncation hidden

package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mpetrov/famulus/model"
)

// DefaultCommandTimeout is applied when no explicit timeout is given.
const DefaultCommandTimeout = 30 // seconds

// maxOutputBytes bounds captured command output.
const maxOutputBytes = 256 * 1024

// Process executes shell commands in the workspace's current directory
// via sh -c, capturing combined stdout/stderr and the exit code.
type Process struct {
	ws *model.Workspace
}

// NewProcess creates a process capability bound to the given workspace.
func NewProcess(ws *model.Workspace) *Process {
	return &Process{ws: ws}
}

// Run executes command with the given timeout in seconds. A zero or
// negative timeout uses DefaultCommandTimeout. The subprocess is killed
// when the deadline expires and a timeout failure is returned.
//
// Run does not apply the safety gate; the dispatcher gates commands
// before they reach this capability.
func (p *Process) Run(ctx context.Context, command string, timeoutSecs int) Result {
	if strings.TrimSpace(command) == "" {
		return Failf("command cannot be empty")
	}
	if timeoutSecs <= 0 {
		timeoutSecs = DefaultCommandTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = p.ws.Dir()
	output, err := cmd.CombinedOutput()

	p.ws.RecordCommand(command)

	if ctx.Err() == context.DeadlineExceeded {
		return Failf("command timed out after %d seconds", timeoutSecs)
	}

	text := string(output)
	if len(text) > maxOutputBytes {
		text = text[:maxOutputBytes] + "\n[output truncated]"
	}

	run := CommandExecution{Command: command, Output: text}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			run.ExitCode = exitErr.ExitCode()
			run.Error = err.Error()
			return Result{
				Message: fmt.Sprintf("Command failed with exit code %d", run.ExitCode),
				Data:    run,
				Err:     fmt.Errorf("command failed with exit code %d", run.ExitCode),
			}
		}
		return Fail(fmt.Errorf("failed to execute command: %w", err))
	}

	return OKData(fmt.Sprintf("Command succeeded: %s", command), run)
}
