package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/templates"
	"git.home.luguber.info/inful/docpipe/internal/workspace"
)

// loadProject resolves the pipeline declaration and the project directory
// (the directory containing the declaration file).
func loadProject() (*config.Config, string, error) {
	path, err := filepath.Abs(CLI.Config)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, filepath.Dir(path), nil
}

// assemble creates a fresh run context with all actions registered and all
// option values resolved and frozen. Precedence, lowest to highest:
// declared defaults, DOCPIPE_* environment, CLI overrides.
func assemble(cfg *config.Config, projectDir, buildDir string) (*pipeline.Context, error) {
	bc := pipeline.NewContext(projectDir, buildDir)
	if err := templates.Assemble(cfg, bc); err != nil {
		return nil, err
	}

	if err := bc.SetOption("serve", CLI.Build.Serve); err != nil {
		return nil, err
	}
	for _, opt := range cfg.Options {
		var value any = opt.Default
		if opt.Flag {
			value = false
		}
		if err := bc.SetOption(opt.Name, value); err != nil {
			return nil, err
		}
	}
	for _, opt := range cfg.Options {
		envName := "DOCPIPE_" + strings.ToUpper(strings.ReplaceAll(opt.Name, "-", "_"))
		v, ok := os.LookupEnv(envName)
		if !ok {
			continue
		}
		if opt.Flag {
			if err := bc.SetOption(opt.Name, v == "1" || strings.EqualFold(v, "true")); err != nil {
				return nil, err
			}
		} else if err := bc.SetOption(opt.Name, v); err != nil {
			return nil, err
		}
	}
	for _, override := range CLI.Build.Set {
		name, value, found := strings.Cut(override, "=")
		if !found {
			if err := bc.SetOption(name, true); err != nil {
				return nil, err
			}
			continue
		}
		if err := bc.SetOption(name, value); err != nil {
			return nil, err
		}
	}

	bc.FreezeOptions()
	return bc, nil
}

func runBuild(ctx context.Context) error {
	cfg, projectDir, err := loadProject()
	if err != nil {
		return err
	}

	runOnce := func(ctx context.Context) ([]string, error) {
		// Every run starts from scratch: fresh context, clean build
		// directory. There is no resumable partial state.
		var ws *workspace.Manager
		if CLI.Build.BuildDir != "" {
			ws = workspace.NewPinnedManager(CLI.Build.BuildDir)
		} else {
			ws = workspace.NewManager(uuid.NewString())
		}
		if err := ws.Create(); err != nil {
			return nil, err
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				slog.Warn("Build directory cleanup failed", logfields.Error(err))
			}
		}()

		bc, err := assemble(cfg, projectDir, ws.Dir())
		if err != nil {
			return nil, err
		}
		if err := pipeline.Run(ctx, bc); err != nil {
			return nil, err
		}
		return bc.WatchPaths(), nil
	}

	if CLI.Build.Watch {
		return pipeline.WatchAndRun(ctx, runOnce)
	}
	_, err = runOnce(ctx)
	return err
}

func runGraph() error {
	cfg, projectDir, err := loadProject()
	if err != nil {
		return err
	}
	bc, err := assemble(cfg, projectDir, "")
	if err != nil {
		return err
	}
	order, err := pipeline.Schedule(bc)
	if err != nil {
		return err
	}
	for i, action := range order {
		fmt.Printf("%2d. %s\n", i+1, action.Name())
	}
	return nil
}

func runInit() error {
	path := CLI.Config
	if _, err := os.Stat(path); err == nil && !CLI.Init.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(config.Starter), 0o644); err != nil {
		return err
	}
	slog.Info("Wrote pipeline declaration", logfields.Path(path))
	return nil
}
