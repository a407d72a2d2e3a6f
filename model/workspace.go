// Workspace - shared mutable session state.
//
// Information Hiding:
// - Current-directory bookkeeping hidden behind accessors
// - Recent-activity lists capped and copied on read

package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Workspace holds the ambient state shared by the file and process
// capabilities: the current working directory and the recent-activity
// lists surfaced in the model prompt. It is the single owner of the
// current-directory value; capabilities hold a reference rather than
// mirroring their own copy.
type Workspace struct {
	mu             sync.Mutex
	cwd            string
	recentFiles    []string
	recentCommands []string
}

// maxRecent bounds the recent-activity lists.
const maxRecent = 20

// NewWorkspace creates a workspace rooted at dir. An empty dir uses the
// process working directory.
func NewWorkspace(dir string) (*Workspace, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	return &Workspace{cwd: abs}, nil
}

// Dir returns the current working directory.
func (w *Workspace) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cwd
}

// ChangeDir moves the current directory. Relative paths resolve against
// the current directory; the target must exist and be a directory.
func (w *Workspace) ChangeDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	target := dir
	if !filepath.IsAbs(target) {
		target = filepath.Join(w.cwd, target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("directory does not exist: %s", target)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", target)
	}

	w.cwd = target
	return nil
}

// Resolve turns a possibly-relative path into an absolute path under the
// current directory.
func (w *Workspace) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return filepath.Clean(filepath.Join(w.cwd, path))
}

// RecordFile appends a file path to the recent-files list.
func (w *Workspace) RecordFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.recentFiles = appendCapped(w.recentFiles, path)
}

// RecordCommand appends a command to the recent-commands list.
func (w *Workspace) RecordCommand(command string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.recentCommands = appendCapped(w.recentCommands, command)
}

// RecentFiles returns up to n recent file paths, most recent last.
func (w *Workspace) RecentFiles(n int) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return lastN(w.recentFiles, n)
}

// RecentCommands returns up to n recent commands, most recent last.
func (w *Workspace) RecentCommands(n int) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return lastN(w.recentCommands, n)
}

func appendCapped(list []string, entry string) []string {
	list = append(list, entry)
	if len(list) > maxRecent {
		list = list[len(list)-maxRecent:]
	}
	return list
}

func lastN(list []string, n int) []string {
	if n <= 0 || len(list) == 0 {
		return nil
	}
	if n > len(list) {
		n = len(list)
	}
	out := make([]string, n)
	copy(out, list[len(list)-n:])
	return out
}
