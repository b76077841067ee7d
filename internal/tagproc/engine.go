package tagproc

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/tagscan"
)

// Engine drives the tag rewriting for a file set: one pass per registered
// processor in registry order, an unknown-tag check over what remains, then
// a resolution pass that rewrites the deferred placeholders once the anchor
// table is complete.
type Engine struct {
	Registry *Registry
	Policy   UnknownTagPolicy
}

// NewEngine creates an engine with the given registry and unknown-tag
// policy.
func NewEngine(registry *Registry, policy UnknownTagPolicy) *Engine {
	return &Engine{Registry: registry, Policy: policy}
}

// Run performs the full rewrite. Files are rescanned between processor
// passes, so text inserted by an earlier processor may carry tags handled by
// a later one; a processor's own output is never re-dispatched to itself.
func (e *Engine) Run(ctx context.Context, fs *FileSet) error {
	for _, entry := range e.Registry.Entries() {
		for _, f := range fs.Files {
			if err := e.applyProcessor(ctx, fs, f, entry); err != nil {
				return err
			}
		}
	}
	if err := e.checkRemainingTags(fs); err != nil {
		return err
	}
	if err := e.resolveDeferred(fs); err != nil {
		return err
	}
	for _, f := range fs.Files {
		f.Content = tagscan.Unescape(f.Content)
	}
	return nil
}

// applyProcessor runs one processor's pass over one file: block occurrences
// of its tag first, then inline occurrences over the updated content, each
// dispatched in source order.
func (e *Engine) applyProcessor(ctx context.Context, fs *FileSet, f *File, entry Entry) error {
	blocks, err := tagscan.ParseBlockTags(f.Path, f.Content)
	if err != nil {
		return err
	}
	content, err := e.dispatch(ctx, fs, f, f.Content, matching(blocks, entry.Name), entry.Processor)
	if err != nil {
		return err
	}
	f.Content = content

	inlines, err := tagscan.ParseInlineTags(f.Path, f.Content)
	if err != nil {
		return err
	}
	content, err = e.dispatch(ctx, fs, f, f.Content, matching(inlines, entry.Name), entry.Processor)
	if err != nil {
		return err
	}
	f.Content = content
	return nil
}

func matching(tags []tagscan.Tag, name string) []tagscan.Tag {
	var out []tagscan.Tag
	for _, tag := range tags {
		if tag.Name == name {
			out = append(out, tag)
		}
	}
	return out
}

// dispatch dispatches the given occurrences left to right and applies the
// substitutions.
func (e *Engine) dispatch(ctx context.Context, fs *FileSet, f *File, content string, tags []tagscan.Tag, proc Processor) (string, error) {
	if len(tags) == 0 {
		return content, nil
	}

	replacements := make([]Result, len(tags))
	for i, tag := range tags {
		res, err := proc.Process(ctx, fs, f, tag)
		if err != nil {
			return "", err
		}
		if res.resolve != nil {
			res.text = fs.addDeferral(f, res.resolve)
		}
		replacements[i] = res
	}

	i := 0
	out := tagscan.ReplaceTags(content, tags, func(tagscan.Tag) (string, bool) {
		res := replacements[i]
		i++
		return res.text, res.replace
	})
	return out, nil
}

// checkRemainingTags scans the files once more after all processors ran.
// Occurrences naming an unregistered tag are subject to the unknown-tag
// policy; leftover occurrences of registered names (emitted by a processor
// after its own pass) stay verbatim.
func (e *Engine) checkRemainingTags(fs *FileSet) error {
	for _, f := range fs.Files {
		blocks, err := tagscan.ParseBlockTags(f.Path, f.Content)
		if err != nil {
			return err
		}
		inlines, err := tagscan.ParseInlineTags(f.Path, f.Content)
		if err != nil {
			return err
		}
		for _, tag := range append(blocks, inlines...) {
			if _, ok := e.Registry.Get(tag.Name); ok {
				continue
			}
			if e.Policy == UnknownTagFail {
				return errors.UnknownTag(f.Path, tag.Name, tag.LineSpan[0])
			}
			slog.Debug("Passing through unknown tag", logfields.File(f.Path), logfields.Tag(tag.Name), logfields.Line(tag.LineSpan[0]))
		}
	}
	return nil
}

// resolveDeferred rewrites every placeholder registered during the processor
// passes. Resolution is a pure function of the completed anchor table; it
// never triggers further scanning or dispatch.
func (e *Engine) resolveDeferred(fs *FileSet) error {
	for _, d := range fs.deferrals {
		text, err := d.resolve(fs)
		if err != nil {
			return err
		}
		d.file.Content = strings.Replace(d.file.Content, d.marker, text, 1)
	}
	fs.deferrals = nil
	return nil
}
