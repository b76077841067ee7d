// Package tagproc dispatches tag occurrences found by tagscan to registered
// processors and resolves cross-file references once all files in a run have
// been scanned.
package tagproc

import "fmt"

// File is one Markdown document flowing through the preprocessor. Path is
// relative to the preprocess root inside the build directory.
type File struct {
	Path    string
	Content string

	original string
}

// NewFile creates a File and remembers the original content for dirty
// tracking.
func NewFile(path, content string) *File {
	return &File{Path: path, Content: content, original: content}
}

// Changed reports whether the content differs from what the file was loaded
// with. Only changed files are written back.
func (f *File) Changed() bool {
	return f.Content != f.original
}

// FileSet is the unit of work for one preprocess action run: every Markdown
// file in scope plus the run-wide state shared between processors.
type FileSet struct {
	Files []*File

	// ProjectDir is the original project directory. Processors that read
	// source material (cat, shell) resolve against it, never against the
	// build directory.
	ProjectDir string

	// BuildDir is the isolated build directory of the current run.
	BuildDir string

	// Root is the preprocess root relative to the build directory, empty
	// when the whole build directory is in scope. Copy actions mirror the
	// project layout, so the same prefix locates the files' source
	// directory under ProjectDir.
	Root string

	// Anchors is the run-wide anchor table, populated during the first
	// pass and read-only during reference resolution.
	Anchors *AnchorIndex

	deferrals []*deferral
	refSeq    int
}

// NewFileSet creates an empty FileSet with a fresh anchor table.
func NewFileSet(projectDir, buildDir string) *FileSet {
	return &FileSet{
		ProjectDir: projectDir,
		BuildDir:   buildDir,
		Anchors:    NewAnchorIndex(),
	}
}

// Add appends a file to the set.
func (fs *FileSet) Add(f *File) {
	fs.Files = append(fs.Files, f)
}

// deferral is a placeholder substituted into a file during the first pass,
// resolved by ResolveDeferred once the anchor table is complete.
type deferral struct {
	file    *File
	marker  string
	resolve ResolveFunc
}

// ResolveFunc finishes rendering a deferred occurrence. It must be a pure
// function of the completed anchor table.
type ResolveFunc func(fs *FileSet) (string, error)

// addDeferral registers a deferral for f and returns the placeholder marker
// to substitute in its place.
func (fs *FileSet) addDeferral(f *File, resolve ResolveFunc) string {
	fs.refSeq++
	d := &deferral{
		file:    f,
		marker:  fmt.Sprintf("\x00docpipe:ref:%d\x00", fs.refSeq),
		resolve: resolve,
	}
	fs.deferrals = append(fs.deferrals, d)
	return d.marker
}
