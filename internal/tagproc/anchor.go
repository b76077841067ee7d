package tagproc

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/tagscan"
)

// Anchor is a named location marker, globally unique across all files of a
// run.
type Anchor struct {
	// ID is the run-wide unique identifier.
	ID string

	// Text is the explicit display name from the tag arguments or the
	// `text` setting, if any.
	Text string

	// HeaderLevel and HeaderText describe the Markdown heading immediately
	// following the anchor, when present. The heading text is the fallback
	// display name.
	HeaderLevel int
	HeaderText  string

	// File is the owning file (relative to the preprocess root) and Line
	// the tag's position in it.
	File string
	Line int
}

// AnchorIndex is the run-wide anchor table. Registration happens during the
// sequential first pass; lookups happen during reference resolution.
type AnchorIndex struct {
	anchors map[string]*Anchor
}

// NewAnchorIndex creates an empty anchor table.
func NewAnchorIndex() *AnchorIndex {
	return &AnchorIndex{anchors: make(map[string]*Anchor)}
}

// Register adds an anchor. Redefining an id is an error naming both
// locations.
func (ix *AnchorIndex) Register(a *Anchor) error {
	if prev, ok := ix.anchors[a.ID]; ok {
		return errors.DuplicateAnchor(a.ID, a.File, prev.File)
	}
	ix.anchors[a.ID] = a
	return nil
}

// Lookup returns the anchor registered under id.
func (ix *AnchorIndex) Lookup(id string) (*Anchor, bool) {
	a, ok := ix.anchors[id]
	return a, ok
}

// Len returns the number of registered anchors.
func (ix *AnchorIndex) Len() int {
	return len(ix.anchors)
}

// AnchorProcessor implements the `@anchor <id> [<name>]` tag. It registers
// the anchor in the run-wide table and renders a location marker. When the
// tag immediately precedes a heading, the heading text becomes the fallback
// display name.
type AnchorProcessor struct {
	Renderer Renderer
}

func (p *AnchorProcessor) Process(_ context.Context, fs *FileSet, f *File, tag tagscan.Tag) (Result, error) {
	fields := strings.Fields(tag.Args)
	if len(fields) == 0 {
		return Result{}, errors.ScanError(f.Path, tag.LineSpan[0], "@anchor requires an id argument")
	}

	a := &Anchor{
		ID:   fields[0],
		Text: strings.Join(fields[1:], " "),
		File: f.Path,
		Line: tag.LineSpan[0],
	}
	if text, ok := tag.Options["text"].(string); ok {
		a.Text = text
	}
	if level, text, ok := firstHeading(f.Content[tag.OffsetSpan[1]:]); ok {
		a.HeaderLevel = level
		a.HeaderText = text
	}

	if err := fs.Anchors.Register(a); err != nil {
		return Result{}, err
	}
	slog.Debug("Registered anchor", logfields.Anchor(a.ID), logfields.File(f.Path), logfields.Line(a.Line))

	return Text(p.Renderer.AnchorElement(a)), nil
}

// LinkProcessor implements the `{@link <id> [<text>]}` tag. Occurrences are
// deferred: the target anchor may live in a file not yet scanned, so
// rendering waits until the anchor table is complete.
type LinkProcessor struct {
	Renderer Renderer
}

func (p *LinkProcessor) Process(_ context.Context, _ *FileSet, f *File, tag tagscan.Tag) (Result, error) {
	fields := strings.Fields(tag.Args)
	if len(fields) == 0 {
		return Result{}, errors.ScanError(f.Path, tag.LineSpan[0], "@link requires an anchor id argument")
	}
	id := fields[0]
	explicit := strings.Join(fields[1:], " ")
	if text, ok := tag.Options["text"].(string); ok {
		explicit = text
	}
	line := tag.LineSpan[0]

	return Deferred(func(fs *FileSet) (string, error) {
		target, ok := fs.Anchors.Lookup(id)
		if !ok {
			return "", errors.UnresolvedReference(id, f.Path, line)
		}

		text := explicit
		if text == "" {
			text = target.Text
		}
		if text == "" {
			text = target.HeaderText
		}
		if text == "" {
			slog.Warn("Link target has no display name, using anchor id", logfields.Anchor(id), logfields.File(f.Path), logfields.Line(line))
			text = id
		}

		href := ""
		if target.File != f.Path {
			href = p.Renderer.PageHref(f.Path, target.File)
		}
		href += "#" + p.Renderer.Fragment(target)
		return p.Renderer.Link(text, href), nil
	}), nil
}
