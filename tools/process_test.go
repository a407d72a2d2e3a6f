package tools

import (
	"context"
	"testing"

	"github.com/mpetrov/famulus/model"
)

func newTestProcess(t *testing.T) *Process {
	t.Helper()
	ws, err := model.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	return NewProcess(ws)
}

func TestProcessRunCapturesOutput(t *testing.T) {
	proc := newTestProcess(t)

	res := proc.Run(context.Background(), "echo hi", 0)
	if !res.Success() {
		t.Fatalf("Run failed: %v", res.Err)
	}

	run, ok := res.Data.(CommandExecution)
	if !ok {
		t.Fatalf("expected CommandExecution data, got %T", res.Data)
	}
	if run.Output != "hi\n" {
		t.Errorf("expected output 'hi\\n', got %q", run.Output)
	}
	if run.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", run.ExitCode)
	}
}

func TestProcessRunReportsExitCode(t *testing.T) {
	proc := newTestProcess(t)

	res := proc.Run(context.Background(), "exit 3", 0)
	if res.Success() {
		t.Fatal("expected failure for non-zero exit")
	}

	run, ok := res.Data.(CommandExecution)
	if !ok {
		t.Fatalf("expected CommandExecution data, got %T", res.Data)
	}
	if run.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", run.ExitCode)
	}
}

func TestProcessRunTimeout(t *testing.T) {
	proc := newTestProcess(t)

	res := proc.Run(context.Background(), "sleep 5", 1)
	if res.Success() {
		t.Fatal("expected timeout failure")
	}
	if got := res.Error(); got != "command timed out after 1 seconds" {
		t.Errorf("unexpected timeout error: %q", got)
	}
}

func TestProcessRunEmptyCommand(t *testing.T) {
	proc := newTestProcess(t)

	if res := proc.Run(context.Background(), "   ", 0); res.Success() {
		t.Fatal("expected failure for blank command")
	}
}

func TestProcessRunUsesWorkspaceDirectory(t *testing.T) {
	ws, err := model.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	proc := NewProcess(ws)

	res := proc.Run(context.Background(), "pwd", 0)
	if !res.Success() {
		t.Fatalf("Run failed: %v", res.Err)
	}
	run := res.Data.(CommandExecution)
	if run.Output != ws.Dir()+"\n" {
		t.Errorf("expected pwd %q, got %q", ws.Dir(), run.Output)
	}
}

func TestProcessRunRecordsCommand(t *testing.T) {
	proc := newTestProcess(t)

	if res := proc.Run(context.Background(), "true", 0); !res.Success() {
		t.Fatalf("Run failed: %v", res.Err)
	}

	recent := proc.ws.RecentCommands(5)
	if len(recent) != 1 || recent[0] != "true" {
		t.Errorf("unexpected recent commands: %v", recent)
	}
}
