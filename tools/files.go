// File capability - read, write, edit and list operations rooted at the
// shared workspace directory.
//
// Information Hiding:
// - File I/O implementation details hidden
// - Path resolution against the workspace hidden
// - Error handling for file operations abstracted

package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mpetrov/famulus/model"
)

// DefaultMaxFileSize bounds file reads and writes.
const DefaultMaxFileSize = 1024 * 1024 // 1MB

// Files provides file operations relative to a workspace. All paths are
// resolved against the workspace's current directory; successful reads
// and writes are recorded in its recent-files list.
type Files struct {
	ws           *model.Workspace
	maxSizeBytes int64
}

// NewFiles creates a file capability bound to the given workspace.
func NewFiles(ws *model.Workspace) *Files {
	return &Files{ws: ws, maxSizeBytes: DefaultMaxFileSize}
}

// WithMaxSize overrides the size cap for reads and writes.
func (f *Files) WithMaxSize(bytes int64) *Files {
	f.maxSizeBytes = bytes
	return f
}

// Read returns the contents of a file as the result's data payload.
func (f *Files) Read(path string) Result {
	if path == "" {
		return Failf("path cannot be empty")
	}

	abs := f.ws.Resolve(path)

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return Failf("file does not exist: %s", abs)
	}
	if err != nil {
		return Fail(fmt.Errorf("failed to read file metadata: %w", err))
	}
	if info.IsDir() {
		return Failf("%s is a directory", abs)
	}
	if info.Size() > f.maxSizeBytes {
		return Failf("file too large: %d bytes (max: %d bytes)", info.Size(), f.maxSizeBytes)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return Fail(fmt.Errorf("failed to read file: %w", err))
	}

	f.ws.RecordFile(abs)
	return OKData(fmt.Sprintf("Read %d bytes from %s", len(content), abs), string(content))
}

// Write writes content to a file, creating parent directories as needed.
func (f *Files) Write(path, content string) Result {
	if path == "" {
		return Failf("path cannot be empty")
	}
	if int64(len(content)) > f.maxSizeBytes {
		return Failf("content too large: %d bytes (max: %d bytes)", len(content), f.maxSizeBytes)
	}

	abs := f.ws.Resolve(path)

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return Fail(fmt.Errorf("failed to create directory: %w", err))
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return Fail(fmt.Errorf("failed to write file: %w", err))
	}

	f.ws.RecordFile(abs)
	return OK(fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), abs))
}

// Edit replaces one occurrence of search with replace in a file. A search
// string that is missing or ambiguous (multiple occurrences) is a failure.
func (f *Files) Edit(path, search, replace string) Result {
	if path == "" {
		return Failf("path cannot be empty")
	}
	if search == "" {
		return Failf("search string cannot be empty")
	}

	abs := f.ws.Resolve(path)

	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return Failf("file does not exist: %s", abs)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return Fail(fmt.Errorf("failed to read file: %w", err))
	}
	if int64(len(content)) > f.maxSizeBytes {
		return Failf("file too large: %d bytes (max: %d bytes)", len(content), f.maxSizeBytes)
	}

	text := string(content)
	occurrences := strings.Count(text, search)
	if occurrences == 0 {
		return Failf("search string not found in %s", abs)
	}
	if occurrences > 1 {
		return Failf("search string occurs %d times in %s; make it unique", occurrences, abs)
	}

	updated := strings.Replace(text, search, replace, 1)
	if err := os.WriteFile(abs, []byte(updated), 0644); err != nil {
		return Fail(fmt.Errorf("failed to write file: %w", err))
	}

	f.ws.RecordFile(abs)
	return OK(fmt.Sprintf("Replaced 1 occurrence in %s", abs))
}

// List returns a directory listing. An empty path lists the current
// directory. Directories are suffixed with a slash.
func (f *Files) List(path string) Result {
	dir := f.ws.Dir()
	if path != "" {
		dir = f.ws.Resolve(path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Fail(fmt.Errorf("failed to list directory %s: %w", dir, err))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return OKData(fmt.Sprintf("%d entries in %s", len(names), dir), strings.Join(names, "\n"))
}
