package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mpetrov/famulus/model"
	"github.com/mpetrov/famulus/tools"
)

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	ws, err := model.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	return NewDispatcher(tools.NewFiles(ws), tools.NewProcess(ws), nil)
}

func TestDispatchSafetyGateBlocksCommand(t *testing.T) {
	d := testDispatcher(t)
	marker := filepath.Join(t.TempDir(), "marker")

	// The command would create a file if it ran; the deny-listed
	// substring must stop it before the process capability is invoked.
	result := d.Dispatch(context.Background(), model.ToolCall{
		Name:      "executeCommand",
		Arguments: []string{"touch " + marker + " && rm -rf /"},
	})

	if result.Success() {
		t.Fatal("expected blocked command to fail")
	}
	if result.Error() != ErrBlockedForSafety {
		t.Errorf("error = %q, want %q", result.Error(), ErrBlockedForSafety)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("blocked command was executed")
	}
}

func TestDispatchMailboxUnavailable(t *testing.T) {
	d := testDispatcher(t)

	mailboxCalls := []string{
		"listEmails", "searchEmails", "getEmail", "sendEmail",
		"draftEmail", "markEmailRead", "deleteEmail", "analyzeThread",
	}

	for _, name := range mailboxCalls {
		result := d.Dispatch(context.Background(), model.ToolCall{Name: name})
		if result.Success() {
			t.Errorf("%s: expected failure without mailbox", name)
		}
		if result.Error() != ErrMailboxMissing {
			t.Errorf("%s: error = %q, want %q", name, result.Error(), ErrMailboxMissing)
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d := testDispatcher(t)

	result := d.Dispatch(context.Background(), model.ToolCall{Name: "teleport"})
	if result.Success() {
		t.Fatal("expected failure for unknown tool")
	}
	if result.Error() != ErrUnknownTool {
		t.Errorf("error = %q, want %q", result.Error(), ErrUnknownTool)
	}
}

func TestDispatchExecuteCommand(t *testing.T) {
	d := testDispatcher(t)

	result := d.Dispatch(context.Background(), model.ToolCall{
		Name:      "executeCommand",
		Arguments: []string{"echo hi"},
	})

	if !result.Success() {
		t.Fatalf("expected success, got error: %v", result.Error())
	}
	exec, ok := result.Data.(tools.CommandExecution)
	if !ok {
		t.Fatalf("expected CommandExecution data, got %T", result.Data)
	}
	if exec.Output != "hi\n" {
		t.Errorf("output = %q, want %q", exec.Output, "hi\n")
	}
	if exec.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", exec.ExitCode)
	}
}

func TestDispatchExecuteCommandTimeoutCoercion(t *testing.T) {
	d := testDispatcher(t)

	// An unparseable timeout falls back to the default rather than failing.
	result := d.Dispatch(context.Background(), model.ToolCall{
		Name:      "executeCommand",
		Arguments: []string{"echo ok", "soon"},
	})

	if !result.Success() {
		t.Fatalf("expected success, got error: %v", result.Error())
	}
}

func TestDispatchCommandTimeoutConfigured(t *testing.T) {
	d := testDispatcher(t).WithCommandTimeout(1)

	// No explicit timeout argument: the configured default applies and
	// kills the command after one second.
	result := d.Dispatch(context.Background(), model.ToolCall{
		Name:      "executeCommand",
		Arguments: []string{"sleep 5"},
	})

	if result.Success() {
		t.Fatal("expected configured timeout to kill the command")
	}
	if !strings.Contains(result.Error(), "timed out") {
		t.Errorf("error = %q, want timeout failure", result.Error())
	}
}

func TestDispatchReadMissingFile(t *testing.T) {
	d := testDispatcher(t)

	calls := ExtractCalls("Let me check: readFile(missing.txt)")
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}

	result := d.Dispatch(context.Background(), calls[0])
	if result.Success() {
		t.Fatal("expected failure for missing file")
	}
	if !strings.Contains(result.Error(), "missing.txt") {
		t.Errorf("error should name the missing path, got %q", result.Error())
	}
}

func TestDispatchWriteThenRead(t *testing.T) {
	d := testDispatcher(t)
	ctx := context.Background()

	write := d.Dispatch(ctx, model.ToolCall{
		Name:      "writeFile",
		Arguments: []string{"notes.txt", "remember the milk"},
	})
	if !write.Success() {
		t.Fatalf("write failed: %v", write.Error())
	}

	read := d.Dispatch(ctx, model.ToolCall{
		Name:      "readFile",
		Arguments: []string{"notes.txt"},
	})
	if !read.Success() {
		t.Fatalf("read failed: %v", read.Error())
	}
	if content, _ := read.Data.(string); content != "remember the milk" {
		t.Errorf("content = %q, want %q", content, "remember the milk")
	}
}

func TestDispatchToolNamesWithoutMailbox(t *testing.T) {
	d := testDispatcher(t)

	names := d.ToolNames()
	for _, n := range names {
		if mailboxNames[n] {
			t.Errorf("mailbox tool %s listed without a configured mailbox", n)
		}
	}
	want := []string{"readFile", "writeFile", "editFile", "listFiles", "executeCommand"}
	if len(names) != len(want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"", 30, 30},
		{"5", 30, 5},
		{"abc", 30, 30},
		{"-1", 30, 30},
		{"0", 10, 10},
	}

	for _, tt := range tests {
		if got := intArg(tt.in, tt.def); got != tt.want {
			t.Errorf("intArg(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}
