// Package actions provides the built-in pipeline actions: copying the
// project sources into the build directory, preprocessing Markdown, and
// running external commands such as the site generator.
package actions

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/workspace"
)

// CopyFiles copies paths from the project directory into the build
// directory. Usually the first step in a pipeline, so later actions can
// freely modify files without touching the original project tree.
type CopyFiles struct {
	pipeline.Meta

	// Paths are copied relative to the project directory.
	Paths []string
}

func (a *CopyFiles) Execute(_ context.Context, bc *pipeline.Context) error {
	for _, p := range a.Paths {
		src := filepath.Join(bc.ProjectDir, p)
		dst := filepath.Join(bc.BuildDir, p)
		slog.Debug("Copying into build directory", logfields.Path(p))
		bc.Watch(src)
		if err := workspace.CopyTree(src, dst); err != nil {
			return err
		}
	}
	return nil
}
