package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
)

// debounceWindow collapses editor save bursts into a single rebuild.
const debounceWindow = 500 * time.Millisecond

// RunFunc performs one full pipeline run and returns the paths to watch for
// the next one.
type RunFunc func(ctx context.Context) ([]string, error)

// WatchAndRun runs the pipeline, then re-runs it from scratch whenever a
// watched path changes, until ctx is cancelled. A failing run does not stop
// watching; the error is logged and the next change triggers a fresh
// attempt, which keeps live editing usable while a document is mid-edit.
func WatchAndRun(ctx context.Context, run RunFunc) error {
	for {
		paths, err := run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			slog.Error("Pipeline run failed, waiting for changes", logfields.Error(err))
		}

		if err := waitForChange(ctx, paths); err != nil {
			return err
		}
		slog.Info("Detected file changes, re-executing pipeline")
	}
}

// waitForChange blocks until something under one of the paths changes or
// ctx is cancelled.
func waitForChange(ctx context.Context, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, p := range paths {
		addWatchRecursive(watcher, p)
	}

	// Wait for the first event, then drain the burst.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-watcher.Errors:
		return err
	case event := <-watcher.Events:
		slog.Debug("File event", logfields.Path(event.Name), slog.String("op", event.Op.String()))
	}

	timer := time.NewTimer(debounceWindow)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-watcher.Events:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounceWindow)
		case <-timer.C:
			return nil
		}
	}
}

// addWatchRecursive watches a path; fsnotify watches are per-directory, so
// directories are walked and every subdirectory added. Missing paths are
// skipped: a run may legitimately watch files that appear later.
func addWatchRecursive(watcher *fsnotify.Watcher, root string) {
	info, err := os.Stat(root)
	if err != nil {
		return
	}
	if !info.IsDir() {
		if err := watcher.Add(root); err != nil {
			slog.Warn("Cannot watch path", logfields.Path(root), logfields.Error(err))
		}
		return
	}
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				slog.Warn("Cannot watch path", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}
