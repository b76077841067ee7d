package tagscan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

func TestParseBlockTags(t *testing.T) {
	text := "\nHello, World!\n\n@cde\n  Spam and eggs\n    And more things\n  And more\n\n    # Code block here\n\nNormal content\n\n@abc Foobar\n  Spam and eggs\n"

	tags, err := ParseBlockTags("test.md", text)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	assert.Equal(t, "@cde\n  Spam and eggs\n    And more things\n  And more",
		text[tags[0].OffsetSpan[0]:tags[0].OffsetSpan[1]])
	assert.Equal(t, "@abc Foobar\n  Spam and eggs",
		text[tags[1].OffsetSpan[0]:tags[1].OffsetSpan[1]])

	assert.Equal(t, Tag{
		Name:       "cde",
		Args:       "\nSpam and eggs\n  And more things\nAnd more",
		OffsetSpan: [2]int{16, 67},
		LineSpan:   [2]int{4, 7},
		Kind:       KindBlock,
	}, tags[0])
	assert.Equal(t, Tag{
		Name:       "abc",
		Args:       " Foobar\nSpam and eggs",
		OffsetSpan: [2]int{108, 135},
		LineSpan:   [2]int{13, 14},
		Kind:       KindBlock,
	}, tags[1])
}

func TestParseBlockTags_CodeFence(t *testing.T) {
	text := "```\n@inside fence\n```\n@outside fence\n"
	tags, err := ParseBlockTags("test.md", text)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "outside", tags[0].Name)
}

func TestParseBlockTags_NotATag(t *testing.T) {
	for _, text := range []string{"@ nothing\n", "@!x\n", "word@tag\n", "  @indented\n"} {
		tags, err := ParseBlockTags("test.md", text)
		require.NoError(t, err)
		assert.Empty(t, tags, "input %q", text)
	}
}

func TestParseBlockTags_EmptyArgs(t *testing.T) {
	tags, err := ParseBlockTags("test.md", "@toc\n")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "toc", tags[0].Name)
	assert.Equal(t, "", tags[0].Args)
}

func TestParseBlockTags_WithOptions(t *testing.T) {
	tags, err := ParseBlockTags("test.md", `@cat ../readme.md :with slice_lines = "2:"`+"\n")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, " ../readme.md ", tags[0].Args)
	assert.Equal(t, map[string]any{"slice_lines": "2:"}, tags[0].Options)
}

// The :with keyword always terminates argument-text capture, even when it
// appears on a continuation line.
func TestParseBlockTags_WithOnContinuationLine(t *testing.T) {
	text := "@cat ../readme.md\n  :with\n  slice_lines = \"2:\"\n"
	tags, err := ParseBlockTags("test.md", text)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, " ../readme.md\n", tags[0].Args)
	assert.Equal(t, map[string]any{"slice_lines": "2:"}, tags[0].Options)
}

func TestParseBlockTags_MalformedOptions(t *testing.T) {
	_, err := ParseBlockTags("test.md", "@cat x :with not valid toml ===\n")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryScan))
}

func TestReplaceBlockTags(t *testing.T) {
	text := "\n@cdef Hello World!\n\n@abc Foo\n  Bar\n    Baz\n  Bazinga\n\n    @not a tag"
	tags, err := ParseBlockTags("test.md", text)
	require.NoError(t, err)

	out := ReplaceTags(text, tags, func(tag Tag) (string, bool) {
		return strings.Join(strings.Fields(tag.Args), " "), true
	})
	assert.Equal(t, "\nHello World!\n\nFoo Bar Baz Bazinga\n\n    @not a tag", out)
}

func TestParseInlineTags(t *testing.T) {
	text := `Hello {@link World :with{ a = "b" } } and here is a {@escaped tag \} :with a = "b" }`

	tags, err := ParseInlineTags("test.md", text)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	assert.Equal(t, `{@link World :with{ a = "b" } }`, text[tags[0].OffsetSpan[0]:tags[0].OffsetSpan[1]])
	assert.Equal(t, `{@escaped tag \} :with a = "b" }`, text[tags[1].OffsetSpan[0]:tags[1].OffsetSpan[1]])

	assert.Equal(t, "link", tags[0].Name)
	assert.Equal(t, " World ", tags[0].Args)
	assert.Equal(t, map[string]any{"a": "b"}, tags[0].Options)

	assert.Equal(t, "escaped", tags[1].Name)
	assert.Equal(t, " tag } ", tags[1].Args)
	assert.Equal(t, map[string]any{"a": "b"}, tags[1].Options)
}

// An unescaped tag opener inside another tag's arguments invalidates the
// outer occurrence; the inner tag is still found.
func TestParseInlineTags_BrokenOuter(t *testing.T) {
	text := "Hello {@bad to another {@link to this} or that."
	tags, err := ParseInlineTags("test.md", text)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "{@link to this}", text[tags[0].OffsetSpan[0]:tags[0].OffsetSpan[1]])
	assert.Equal(t, "link", tags[0].Name)
	assert.Equal(t, " to this", tags[0].Args)
}

func TestParseInlineTags_BraceBalancing(t *testing.T) {
	text := "{@link x {nested} text}"
	tags, err := ParseInlineTags("test.md", text)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, " x {nested} text", tags[0].Args)
	assert.Equal(t, text, text[tags[0].OffsetSpan[0]:tags[0].OffsetSpan[1]])
}

func TestParseInlineTags_Escaped(t *testing.T) {
	tags, err := ParseInlineTags("test.md", `literal \{@link foo} stays`)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestParseInlineTags_Unterminated(t *testing.T) {
	_, err := ParseInlineTags("test.md", "foo {@link bar")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryScan))
}

func TestParseInlineTags_Multiline(t *testing.T) {
	text := "a {@note spans\ntwo lines} b"
	tags, err := ParseInlineTags("test.md", text)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, " spans\ntwo lines", tags[0].Args)
	assert.Equal(t, [2]int{1, 2}, tags[0].LineSpan)
}

// Scanning the output of an identity replacement must find no occurrences.
func TestReplaceTags_NoDoubleExpansion(t *testing.T) {
	text := "intro\n\n@first some args\n\nmiddle {@second more args} end\n"

	blocks, err := ParseBlockTags("test.md", text)
	require.NoError(t, err)
	out := ReplaceTags(text, blocks, func(tag Tag) (string, bool) { return strings.TrimSpace(tag.Args), true })
	inlines, err := ParseInlineTags("test.md", out)
	require.NoError(t, err)
	out = ReplaceTags(out, inlines, func(tag Tag) (string, bool) { return strings.TrimSpace(tag.Args), true })

	blocks, err = ParseBlockTags("test.md", out)
	require.NoError(t, err)
	assert.Empty(t, blocks)
	inlines, err = ParseInlineTags("test.md", out)
	require.NoError(t, err)
	assert.Empty(t, inlines)
}

func TestReplaceTags_Keep(t *testing.T) {
	text := "@keep me\n\n@replace me\n"
	tags, err := ParseBlockTags("test.md", text)
	require.NoError(t, err)
	out := ReplaceTags(text, tags, func(tag Tag) (string, bool) {
		if tag.Name == "keep" {
			return "", false
		}
		return "replaced", true
	})
	assert.Equal(t, "@keep me\n\nreplaced\n", out)
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "a {@link x} b", Unescape(`a \{@link x} b`))
	assert.Equal(t, "@literal\n@also", Unescape("\\@literal\n\\@also"))
}
