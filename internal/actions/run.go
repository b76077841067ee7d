package actions

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"git.home.luguber.info/inful/docpipe/internal/pipeline"
)

// Run executes an external command inside the build directory. Often the
// last step of a pipeline, kicking off the site generator after all
// preprocessing completed.
type Run struct {
	pipeline.Meta

	// Args is the command and its arguments.
	Args []string
}

func (a *Run) Execute(ctx context.Context, bc *pipeline.Context) error {
	if len(a.Args) == 0 {
		return fmt.Errorf("no command specified")
	}
	cmd := exec.CommandContext(ctx, a.Args[0], a.Args[1:]...)
	cmd.Dir = bc.BuildDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PROJECT_DIR="+bc.ProjectDir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q: %w", a.Args[0], err)
	}
	return nil
}
