// Package tagscan extracts preprocessor tags from Markdown documents.
//
// A block tag is a line whose first column starts with `@name`, standing as
// its own paragraph. Its arguments may continue on subsequent indented lines
// until a blank line or a dedent:
//
//	@pydoc
//	  docpipe.pipeline.Context
//
// An inline tag is embedded in running text and delimited by `{@name ...}`
// with balanced curly braces:
//
//	See the {@link installation} guide.
//
// Both forms accept TOML-style settings after the `:with` keyword, which
// always terminates argument-text capture:
//
//	@cat ../../readme.md :with slice_lines = "2:"
//
// Scanning never executes tag semantics; it only produces Tag occurrences in
// source order.
package tagscan

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

// Kind discriminates block and inline tags.
type Kind string

const (
	KindBlock  Kind = "block"
	KindInline Kind = "inline"
)

// Tag is a single tag occurrence in a document.
type Tag struct {
	Name string

	// Args is the raw argument text with the `:with` settings suffix
	// stripped. Continuation lines of block tags are dedented and joined
	// with newlines.
	Args string

	// Options holds the parsed `:with` settings, or nil if absent.
	Options map[string]any

	// OffsetSpan is the half-open byte range [start, end) the occurrence
	// covers in the document. For block tags the trailing newline of the
	// last line is not included.
	OffsetSpan [2]int

	// LineSpan is the 1-based inclusive first and last line.
	LineSpan [2]int

	Kind Kind
}

var (
	blockTagRe = regexp.MustCompile(`^@([A-Za-z0-9_-]+)`)
	indentRe   = regexp.MustCompile(`^(\s+)`)
)

// lineStarts returns the byte offset of the start of every line, plus a
// final entry one past the end of the content.
func lineStarts(content string) []int {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	if len(content) == 0 || content[len(content)-1] != '\n' {
		starts = append(starts, len(content)+1)
	}
	return starts
}

// ParseBlockTags parses all block tags in content. Lines inside fenced code
// blocks are skipped. The file argument is only used in error messages.
func ParseBlockTags(file, content string) ([]Tag, error) {
	lines := strings.Split(content, "\n")
	starts := lineStarts(content)

	var tags []Tag
	inFence := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		m := blockTagRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := m[1]
		args := line[len(m[0]):]
		startLine := i
		endLine := i

		// Consume indented continuation lines until a blank line or dedent.
		indent := -1
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			next := lines[i+1]
			im := indentRe.FindStringSubmatch(next)
			if im == nil || (indent >= 0 && len(im[1]) < indent) {
				break
			}
			if indent < 0 {
				indent = len(im[1])
			}
			args += "\n" + next[indent:]
			i++
			endLine = i
		}

		args, options, err := splitOptions(args)
		if err != nil {
			return nil, errors.TagSettingsError(file, name, startLine+1, err)
		}

		end := starts[endLine+1] - 1
		if end > len(content) {
			end = len(content)
		}
		tags = append(tags, Tag{
			Name:       name,
			Args:       args,
			Options:    options,
			OffsetSpan: [2]int{starts[startLine], end},
			LineSpan:   [2]int{startLine + 1, endLine + 1},
			Kind:       KindBlock,
		})
	}

	return tags, nil
}

var inlineTagRe = regexp.MustCompile(`^\\?\{@([A-Za-z0-9_-]+)\b`)

// ParseInlineTags parses all inline tags in content. A `\{@` escape prevents
// a span from being scanned as a tag. Curly braces inside the argument text
// must be balanced or backslash-escaped; an occurrence still unterminated at
// the end of the document is a scan error.
func ParseInlineTags(file, content string) ([]Tag, error) {
	var tags []Tag
	line := 1
	pos := 0

	for pos < len(content) {
		if content[pos] == '\n' {
			line++
			pos++
			continue
		}
		m := inlineTagRe.FindStringSubmatch(content[pos:])
		if m == nil {
			pos++
			continue
		}
		if strings.HasPrefix(m[0], `\`) {
			// Escaped tag opener, passed through verbatim.
			pos += len(m[0])
			continue
		}

		name := m[1]
		startPos, startLine := pos, line
		pos += len(m[0])

		args, endPos, endLine, ok := scanInlineArgs(content, pos, line)
		if !ok {
			if endPos >= len(content) {
				return nil, errors.ScanError(file, startLine, "unterminated inline tag @"+name)
			}
			// A nested unescaped tag opener invalidates this occurrence;
			// resume scanning right after the broken opener so the inner
			// tag is still found.
			pos = startPos + len(m[0])
			continue
		}

		args, options, err := splitOptions(args)
		if err != nil {
			return nil, errors.TagSettingsError(file, name, startLine, err)
		}

		tags = append(tags, Tag{
			Name:       name,
			Args:       args,
			Options:    options,
			OffsetSpan: [2]int{startPos, endPos},
			LineSpan:   [2]int{startLine, endLine},
			Kind:       KindInline,
		})
		pos = endPos
		line = endLine
	}

	return tags, nil
}

// scanInlineArgs consumes the argument text of an inline tag starting at pos
// (just past the tag name) until the matching closing brace. It returns the
// raw argument text, the position one past the closing brace, and the line
// that position is on. ok is false when the tag is broken by a nested
// unescaped tag opener or by the end of the document.
func scanInlineArgs(content string, pos, line int) (args string, end, endLine int, ok bool) {
	var b strings.Builder
	depth := 1

	for pos < len(content) {
		// Escaped braces and escaped tag openers become literals.
		if content[pos] == '\\' && pos+1 < len(content) {
			if nested := inlineTagRe.FindString(content[pos:]); nested != "" && nested[0] == '\\' {
				b.WriteString(nested[1:])
				pos += len(nested)
				continue
			}
			if content[pos+1] == '{' || content[pos+1] == '}' {
				b.WriteByte(content[pos+1])
				pos += 2
				continue
			}
		}

		// An unescaped tag opener inside the arguments breaks the tag.
		if nested := inlineTagRe.FindString(content[pos:]); nested != "" && nested[0] != '\\' {
			return "", pos, line, false
		}

		switch content[pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b.String(), pos + 1, line, true
			}
		case '\n':
			line++
		}
		b.WriteByte(content[pos])
		pos++
	}

	return "", pos, line, false
}

// ReplacementFunc produces the replacement text for a tag occurrence. A
// false second return keeps the occurrence untouched.
type ReplacementFunc func(Tag) (string, bool)

// ReplaceTags substitutes tag occurrences in content. Spans must be
// non-overlapping and ordered by position, which is what the parse functions
// produce.
func ReplaceTags(content string, tags []Tag, repl ReplacementFunc) string {
	var b strings.Builder
	last := 0
	for _, tag := range tags {
		text, replace := repl(tag)
		if !replace {
			continue
		}
		b.WriteString(content[last:tag.OffsetSpan[0]])
		b.WriteString(text)
		last = tag.OffsetSpan[1]
	}
	b.WriteString(content[last:])
	return b.String()
}

// Unescape rewrites tag escapes to their literal form. It is applied once
// per file after all processors have run.
func Unescape(content string) string {
	content = strings.ReplaceAll(content, `\{@`, `{@`)
	if strings.HasPrefix(content, `\@`) {
		content = content[1:]
	}
	return strings.ReplaceAll(content, "\n\\@", "\n@")
}
