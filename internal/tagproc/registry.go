package tagproc

import (
	"context"

	"git.home.luguber.info/inful/docpipe/internal/tagscan"
)

// Result is the outcome of dispatching one tag occurrence.
type Result struct {
	replace bool
	text    string
	resolve ResolveFunc
}

// Text produces a Result that substitutes the occurrence with literal text.
func Text(s string) Result {
	return Result{replace: true, text: s}
}

// Keep produces a Result that leaves the occurrence untouched.
func Keep() Result {
	return Result{}
}

// Deferred produces a Result that substitutes a placeholder now and resolves
// it after all files have completed their first pass.
func Deferred(resolve ResolveFunc) Result {
	return Result{replace: true, resolve: resolve}
}

// Processor renders the occurrences of one tag name. Implementations receive
// the occurrence plus read access to the file set; they return literal
// replacement text, a deferral, or keep the occurrence in place.
type Processor interface {
	Process(ctx context.Context, fs *FileSet, f *File, tag tagscan.Tag) (Result, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, fs *FileSet, f *File, tag tagscan.Tag) (Result, error)

func (fn ProcessorFunc) Process(ctx context.Context, fs *FileSet, f *File, tag tagscan.Tag) (Result, error) {
	return fn(ctx, fs, f, tag)
}

// UnknownTagPolicy decides what happens when, after all processors have run,
// a file still contains an occurrence of a tag with no registered processor.
type UnknownTagPolicy string

const (
	// UnknownTagFail aborts the run with a tag error.
	UnknownTagFail UnknownTagPolicy = "fail"

	// UnknownTagKeep passes the occurrence through literally.
	UnknownTagKeep UnknownTagPolicy = "keep"
)

// Entry is one registered processor with the tag name it handles.
type Entry struct {
	Name      string
	Processor Processor
}

// Registry is the ordered pipeline of tag processors. The engine runs one
// pass per entry, in registry order, so a processor may insert text carrying
// tags that a later processor handles.
type Registry struct {
	entries []Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// UseOption positions a processor within the registry order.
type UseOption func(*usePosition)

type usePosition struct {
	head   bool
	before string
}

// Head places the processor at the front of the registry.
func Head() UseOption {
	return func(p *usePosition) { p.head = true }
}

// Before places the processor immediately before the named entry. When no
// such entry exists the processor is appended.
func Before(name string) UseOption {
	return func(p *usePosition) { p.before = name }
}

// Use registers a processor for a tag name. By default the processor is
// appended; Head and Before adjust the position. Registering a name a second
// time replaces the processor and keeps its position.
func (r *Registry) Use(name string, p Processor, opts ...UseOption) {
	for i, e := range r.entries {
		if e.Name == name {
			r.entries[i].Processor = p
			return
		}
	}

	var pos usePosition
	for _, opt := range opts {
		opt(&pos)
	}
	entry := Entry{Name: name, Processor: p}
	switch {
	case pos.head:
		r.entries = append([]Entry{entry}, r.entries...)
	case pos.before != "":
		for i, e := range r.entries {
			if e.Name == pos.before {
				rest := append([]Entry{entry}, r.entries[i:]...)
				r.entries = append(r.entries[:i], rest...)
				return
			}
		}
		r.entries = append(r.entries, entry)
	default:
		r.entries = append(r.entries, entry)
	}
}

// Get returns the processor registered for name.
func (r *Registry) Get(name string) (Processor, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e.Processor, true
		}
	}
	return nil, false
}

// Entries returns the registered processors in pass order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Names returns the registered tag names in pass order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}
