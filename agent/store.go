// Conversation context store.
//
// Information Hiding:
// - History slice and its growth hidden behind append/window/snapshot
// - Windowing never mutates the underlying log

package agent

import (
	"github.com/mpetrov/famulus/model"
)

// DefaultWindow is the number of history messages presented to the model
// when assembling a prompt. A policy constant, not a cap on stored history.
const DefaultWindow = 10

// Snapshot is a defensive copy of the conversation context at one instant.
type Snapshot struct {
	CurrentDirectory string
	RecentFiles      []string
	RecentCommands   []string
	History          []model.Message
}

// ContextStore owns the append-only conversation log plus the ambient
// workspace state (current directory, recent files/commands).
// Not safe for concurrent use; the orchestration loop is the single writer.
type ContextStore struct {
	ws      *model.Workspace
	history []model.Message
}

// NewContextStore creates a store bound to the shared workspace.
func NewContextStore(ws *model.Workspace) *ContextStore {
	return &ContextStore{ws: ws}
}

// Append adds a message to the history. Messages are never mutated or
// removed afterwards; only windowed at read time.
func (s *ContextStore) Append(msg model.Message) {
	s.history = append(s.history, msg)
}

// Window returns the last n messages, oldest first, as a copy.
// n larger than the history returns the whole history.
func (s *ContextStore) Window(n int) []model.Message {
	if n < 0 {
		n = 0
	}
	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]model.Message, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

// History returns a copy of the full conversation log.
func (s *ContextStore) History() []model.Message {
	out := make([]model.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of stored messages.
func (s *ContextStore) Len() int {
	return len(s.history)
}

// Replace swaps the history wholesale, used when restoring a persisted
// session at startup.
func (s *ContextStore) Replace(history []model.Message) {
	s.history = make([]model.Message, len(history))
	copy(s.history, history)
}

// Clear drops the conversation history. Workspace state is kept.
func (s *ContextStore) Clear() {
	s.history = nil
}

// Workspace returns the shared workspace.
func (s *ContextStore) Workspace() *model.Workspace {
	return s.ws
}

// snapshotRecent matches the workspace's recent-list cap.
const snapshotRecent = 20

// Snapshot returns a defensive copy of history plus workspace view.
func (s *ContextStore) Snapshot() Snapshot {
	return Snapshot{
		CurrentDirectory: s.ws.Dir(),
		RecentFiles:      s.ws.RecentFiles(snapshotRecent),
		RecentCommands:   s.ws.RecentCommands(snapshotRecent),
		History:          s.History(),
	}
}
