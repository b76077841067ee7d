package tagproc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/tagscan"
)

// CatProcessor implements the `@cat <path>` tag: the occurrence is replaced
// with the literal content of the referenced file. Paths starting with `/`
// resolve against the project root, everything else against the directory
// of the current file. Content is always read from the project directory,
// not the build directory.
//
// The `slice_lines` setting selects a line range with half-open slice
// semantics; negative indices count from the end:
//
//	@cat ../../readme.md :with slice_lines = "2:"
type CatProcessor struct {
	// AllowMissing downgrades an unreadable file to a warning, leaving the
	// occurrence in place. Watch mode enables this so a build keeps
	// running while files move around.
	AllowMissing bool
}

func (p *CatProcessor) Process(_ context.Context, fs *FileSet, f *File, tag tagscan.Tag) (Result, error) {
	arg := strings.TrimSpace(tag.Args)
	if arg == "" {
		return Result{}, errors.ScanError(f.Path, tag.LineSpan[0], "@cat requires a path argument")
	}

	var target string
	if strings.HasPrefix(arg, "/") {
		target = filepath.Join(fs.ProjectDir, arg[1:])
	} else {
		target = filepath.Join(fs.ProjectDir, fs.Root, filepath.Dir(f.Path), arg)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		if p.AllowMissing {
			slog.Warn("@cat target not readable, leaving tag in place", logfields.File(f.Path), logfields.Path(arg), logfields.Error(err))
			return Keep(), nil
		}
		return Result{}, errors.FileReadError(arg, err).WithContext("file", f.Path).WithContext("line", tag.LineSpan[0])
	}

	text := string(data)
	if expr, ok := tag.Options["slice_lines"]; ok {
		exprStr, ok := expr.(string)
		if !ok {
			return Result{}, errors.TagSettingsError(f.Path, tag.Name, tag.LineSpan[0], fmt.Errorf("slice_lines must be a string"))
		}
		sliced, err := sliceLines(text, exprStr)
		if err != nil {
			return Result{}, errors.TagSettingsError(f.Path, tag.Name, tag.LineSpan[0], err)
		}
		text = sliced
	}

	return Text(text), nil
}

// sliceLines applies a half-open slice expression "start:end" to the lines
// of text. Either bound may be omitted; negative bounds count from the end.
func sliceLines(text, expr string) (string, error) {
	startStr, endStr, found := strings.Cut(expr, ":")
	if !found {
		return "", fmt.Errorf("invalid slice_lines expression %q: missing ':'", expr)
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	n := len(lines)

	start, err := sliceBound(startStr, 0, n)
	if err != nil {
		return "", fmt.Errorf("invalid slice_lines expression %q: %w", expr, err)
	}
	end, err := sliceBound(endStr, n, n)
	if err != nil {
		return "", fmt.Errorf("invalid slice_lines expression %q: %w", expr, err)
	}
	if start > end {
		return "", nil
	}
	return strings.Join(lines[start:end], "\n"), nil
}

// sliceBound parses one bound of a slice expression, applying the default
// when empty, negative-from-end semantics, and clamping to [0, n].
func sliceBound(s string, def, n int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v += n
	}
	if v < 0 {
		v = 0
	}
	if v > n {
		v = n
	}
	return v, nil
}
