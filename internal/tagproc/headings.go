package tagproc

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// firstHeading reports the level and text of the Markdown heading that
// immediately follows the given content, if any. Only blank lines may
// separate the content start from the heading.
func firstHeading(content string) (level int, text string, ok bool) {
	if !strings.HasPrefix(strings.TrimLeft(content, " \t\r\n"), "#") {
		return 0, "", false
	}

	source := []byte(content)
	root := goldmark.New().Parser().Parse(gmtext.NewReader(source))
	heading, isHeading := root.FirstChild().(*gmast.Heading)
	if !isHeading {
		return 0, "", false
	}

	var b strings.Builder
	_ = gmast.Walk(heading, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if entering {
			if t, isText := n.(*gmast.Text); isText {
				b.Write(t.Segment.Value(source))
			}
		}
		return gmast.WalkContinue, nil
	})
	return heading.Level, strings.TrimSpace(b.String()), true
}
