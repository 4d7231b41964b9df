// Package sink persists generated content to files.
package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"bootstrap/failure"
)

// Writer writes content to paths resolved against a root directory.
type Writer struct {
	root   string
	logger *log.Logger
}

// New returns a Writer rooted at root, creating the directory if needed.
func New(root string, logger *log.Logger) (*Writer, error) {
	if logger == nil {
		logger = log.Default()
	}
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &failure.IOFailure{Path: root, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}
	return &Writer{root: root, logger: logger}, nil
}

// Root returns the directory relative paths resolve against.
func (w *Writer) Root() string {
	return w.root
}

// Resolve returns the full path for path. Absolute paths are kept as is.
func (w *Writer) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(w.root, path)
}

// Write creates or truncates the file at path and writes content to it. The
// file is closed on every return path; failures are *failure.IOFailure.
func (w *Writer) Write(content, path string) (err error) {
	if strings.TrimSpace(path) == "" {
		return &failure.IOFailure{Path: path, Err: os.ErrInvalid}
	}
	full := w.Resolve(path)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &failure.IOFailure{Path: full, Err: err}
	}

	f, err := os.Create(full)
	if err != nil {
		return &failure.IOFailure{Path: full, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &failure.IOFailure{Path: full, Err: cerr}
		}
	}()

	if _, err := io.WriteString(f, content); err != nil {
		return &failure.IOFailure{Path: full, Err: err}
	}

	w.logger.Info("File written successfully", "path", full, "bytes", len(content))
	return nil
}
