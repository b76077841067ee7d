package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
)

// Manager handles the isolated build directory for a single pipeline run.
// Ephemeral workspaces live under the system temp directory and are removed
// on Cleanup(); a pinned workspace uses a caller-provided directory and is
// left in place for inspection.
type Manager struct {
	runID   string
	baseDir string
	dir     string
	pinned  bool
}

// NewManager creates a workspace manager producing an ephemeral build
// directory named after the run ID.
func NewManager(runID string) *Manager {
	return &Manager{runID: runID, baseDir: os.TempDir()}
}

// NewPinnedManager creates a workspace manager that uses a fixed directory
// and never removes it on Cleanup().
func NewPinnedManager(dir string) *Manager {
	return &Manager{dir: dir, pinned: true}
}

// Create creates the build directory.
func (m *Manager) Create() error {
	if m.pinned {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return fmt.Errorf("failed to create pinned build directory: %w", err)
		}
		slog.Info("Using pinned build directory", logfields.Path(m.dir))
		return nil
	}

	dir := filepath.Join(m.baseDir, fmt.Sprintf("docpipe-%s", m.runID))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	m.dir = dir
	slog.Info("Created build directory", logfields.Path(dir))
	return nil
}

// Dir returns the path to the build directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Cleanup removes the build directory unless the workspace is pinned.
func (m *Manager) Cleanup() error {
	if m.dir == "" || m.pinned {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup build directory: %w", err)
	}
	slog.Debug("Removed build directory", logfields.Path(m.dir))
	m.dir = ""
	return nil
}

// CopyTree copies src (file or directory) to dst. Directories are merged
// into existing destination directories; files are overwritten.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}

	return filepath.Walk(src, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if fi.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		return copyFile(path, target, fi.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// FindFiles returns all files under root with the given extension, as paths
// relative to root, in lexical order. Deterministic traversal keeps file
// processing order reproducible across runs.
func FindFiles(root, ext string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
