package actions

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/tagproc"
	"git.home.luguber.info/inful/docpipe/internal/workspace"
)

// PreprocessMarkdown runs the tag engine over the Markdown files in the
// build directory: it scans every file for tag occurrences, dispatches them
// to the registered processors in source order, resolves cross-file link
// placeholders once all anchors are known, and writes changed files back
// for the next action to consume.
type PreprocessMarkdown struct {
	pipeline.Meta

	// Path restricts preprocessing to a directory relative to the build
	// directory. Empty means the whole build directory.
	Path string

	// Registry maps tag names to processors. Defaults to the built-in
	// registry with the MkDocs renderer.
	Registry *tagproc.Registry

	// UnknownTags decides whether an occurrence of an unregistered tag
	// aborts the file or passes through literally.
	UnknownTags tagproc.UnknownTagPolicy
}

func (a *PreprocessMarkdown) Execute(ctx context.Context, bc *pipeline.Context) error {
	registry := a.Registry
	if registry == nil {
		registry = tagproc.BuiltinRegistry(&tagproc.MkDocsRenderer{})
	}
	policy := a.UnknownTags
	if policy == "" {
		policy = tagproc.UnknownTagKeep
	}

	root := filepath.Join(bc.BuildDir, a.Path)
	paths, err := workspace.FindFiles(root, ".md")
	if err != nil {
		return err
	}

	fs := tagproc.NewFileSet(bc.ProjectDir, bc.BuildDir)
	fs.Root = filepath.ToSlash(a.Path)
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return err
		}
		fs.Add(tagproc.NewFile(filepath.ToSlash(rel), string(data)))
	}
	slog.Info("Preprocessing markdown", slog.Int("files", len(fs.Files)), logfields.Path(a.Path))

	engine := tagproc.NewEngine(registry, policy)
	if err := engine.Run(ctx, fs); err != nil {
		return err
	}

	for _, f := range fs.Files {
		if !f.Changed() {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(f.Path))
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return err
		}
		slog.Debug("Rewrote file", logfields.File(f.Path))
	}
	return nil
}
