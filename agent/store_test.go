package agent

import (
	"reflect"
	"testing"

	"github.com/mpetrov/famulus/model"
)

func testStore(t *testing.T) *ContextStore {
	t.Helper()
	ws, err := model.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	return NewContextStore(ws)
}

func TestWindowIdempotent(t *testing.T) {
	store := testStore(t)
	store.Append(model.NewMessage(model.RoleUser, "one"))
	store.Append(model.NewMessage(model.RoleAssistant, "two"))
	store.Append(model.NewMessage(model.RoleUser, "three"))

	first := store.Window(2)
	second := store.Window(2)

	if !reflect.DeepEqual(first, second) {
		t.Error("Window called twice without append should return identical sequences")
	}
}

func TestWindowRoundTrip(t *testing.T) {
	store := testStore(t)
	user := model.NewMessage(model.RoleUser, "hello")
	assistant := model.NewMessage(model.RoleAssistant, "hi there")
	store.Append(user)
	store.Append(assistant)

	window := store.Window(2)
	if len(window) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(window))
	}
	if window[0].Content != "hello" || window[0].Role != model.RoleUser {
		t.Errorf("unexpected first message: %+v", window[0])
	}
	if window[1].Content != "hi there" || window[1].Role != model.RoleAssistant {
		t.Errorf("unexpected second message: %+v", window[1])
	}
}

func TestWindowLargerThanHistory(t *testing.T) {
	store := testStore(t)
	store.Append(model.NewMessage(model.RoleUser, "only one"))

	window := store.Window(10)
	if len(window) != 1 {
		t.Errorf("expected 1 message, got %d", len(window))
	}
}

func TestWindowDoesNotMutateLog(t *testing.T) {
	store := testStore(t)
	store.Append(model.NewMessage(model.RoleUser, "original"))

	window := store.Window(1)
	window[0].Content = "tampered"

	if store.History()[0].Content != "original" {
		t.Error("mutating a window copy must not affect the stored log")
	}
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	store := testStore(t)
	store.Append(model.NewMessage(model.RoleUser, "hello"))
	store.Workspace().RecordFile("/tmp/a.txt")

	snap := store.Snapshot()
	snap.History[0].Content = "tampered"
	snap.RecentFiles[0] = "tampered"

	if store.History()[0].Content != "hello" {
		t.Error("snapshot history should be a copy")
	}
	if store.Workspace().RecentFiles(1)[0] != "/tmp/a.txt" {
		t.Error("snapshot recent files should be a copy")
	}

	if snap.CurrentDirectory != store.Workspace().Dir() {
		t.Errorf("snapshot dir = %q, want %q", snap.CurrentDirectory, store.Workspace().Dir())
	}
}

func TestClearAndReplace(t *testing.T) {
	store := testStore(t)
	store.Append(model.NewMessage(model.RoleUser, "one"))
	store.Clear()

	if store.Len() != 0 {
		t.Errorf("expected empty store after Clear, got %d", store.Len())
	}

	restored := []model.Message{
		model.NewMessage(model.RoleUser, "restored"),
		model.NewMessage(model.RoleAssistant, "welcome back"),
	}
	store.Replace(restored)

	if store.Len() != 2 {
		t.Fatalf("expected 2 messages after Replace, got %d", store.Len())
	}
	if store.History()[0].Content != "restored" {
		t.Errorf("unexpected first message: %+v", store.History()[0])
	}
}
