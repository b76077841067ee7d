package tagproc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/tagscan"
)

// ShellProcessor implements the `@shell <command>` tag, inserting the output
// of a shell command run from the project directory. Useful when parts of
// the documentation are generated by another program:
//
//	@shell git describe --tags
//
// The BUILD_DIR environment variable points at the build directory. Inline
// occurrences have their output trimmed. A failing command renders an
// indented failure block instead of aborting the run, matching the behavior
// documentation authors expect while iterating.
type ShellProcessor struct{}

func (p *ShellProcessor) Process(ctx context.Context, fs *FileSet, f *File, tag tagscan.Tag) (Result, error) {
	command := strings.TrimSpace(tag.Args)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = fs.ProjectDir
	cmd.Env = append(os.Environ(), "BUILD_DIR="+fs.BuildDir)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stdout.String()
	if err != nil {
		slog.Warn("@shell command failed", logfields.File(f.Path), logfields.Line(tag.LineSpan[0]), logfields.Error(err))
		output = fmt.Sprintf("    $ %s  # %v\n%s", command, err, indent(output+stderr.String(), "    "))
	} else if prefix, ok := tag.Options["prefix"].(string); ok {
		output = indent(output, prefix)
	}

	if tag.Kind == tagscan.KindInline {
		output = strings.TrimSpace(output)
	}
	return Text(output), nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
