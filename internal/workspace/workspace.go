// Package workspace manages the temporary clone area used during one run.
package workspace

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docsync/internal/logfields"
)

// Manager handles the temporary working directory holding repository clones.
// The directory is created fresh for one run and removed at the end; nothing
// in it survives past process exit.
type Manager struct {
	dir string
}

// NewManager creates a workspace manager rooted at dir.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = ".temp_repos"
	}
	return &Manager{dir: dir}
}

// Create ensures a clean workspace directory, removing any leftover from a
// previous interrupted run.
func (m *Manager) Create() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to remove existing workspace: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	slog.Debug("Created workspace", logfields.Path(m.dir))
	return nil
}

// GetPath returns the path to the workspace directory
func (m *Manager) GetPath() string {
	return m.dir
}

// Cleanup removes the workspace directory and everything in it.
func (m *Manager) Cleanup() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	return nil
}
