package tagproc

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Renderer turns anchors and links into output appropriate for the target
// site generator's Markdown dialect.
type Renderer interface {
	// AnchorElement renders the location marker emitted in place of an
	// @anchor tag. May be empty when the following heading's own id is
	// used instead.
	AnchorElement(a *Anchor) string

	// Fragment returns the URL fragment (without '#') that addresses the
	// anchor.
	Fragment(a *Anchor) string

	// PageHref returns the href from one page to another, both given as
	// paths relative to the content root, still carrying the .md suffix.
	PageHref(from, to string) string

	// Link renders a link with the given text and href.
	Link(text, href string) string
}

// MkDocsRenderer renders anchors and links for MkDocs.
type MkDocsRenderer struct {
	// AlwaysRenderAnchors forces an explicit <a id> element for every
	// anchor. When disabled, anchors preceding a heading link to the
	// slugified heading id instead.
	AlwaysRenderAnchors bool
}

func (r *MkDocsRenderer) AnchorElement(a *Anchor) string {
	if r.AlwaysRenderAnchors || a.HeaderText == "" {
		return fmt.Sprintf(`<a id="%s"></a>`, a.ID)
	}
	return ""
}

func (r *MkDocsRenderer) Fragment(a *Anchor) string {
	if !r.AlwaysRenderAnchors && a.HeaderText != "" {
		return Slugify(a.HeaderText)
	}
	return a.ID
}

// PageHref renders a relative link between rendered pages. MkDocs turns
// every page into a directory, so `guide/install.md` is served at
// `../guide/install/` relative to a sibling page.
func (r *MkDocsRenderer) PageHref(from, to string) string {
	target := strings.TrimSuffix(to, ".md")
	if path.Base(target) == "index" {
		target = path.Dir(target)
	}
	rel := relPath(path.Dir(from), target)
	return rel + "/"
}

func (r *MkDocsRenderer) Link(text, href string) string {
	return fmt.Sprintf("[%s](%s)", text, href)
}

// HugoRenderer renders anchors and links for Hugo. Links are absolute from
// the site root since Hugo section bundles make relative links brittle.
type HugoRenderer struct {
	// PathPrefix is prepended to generated URLs when the site is not
	// hosted at the web server root. Should end in a slash when set.
	PathPrefix string
}

func (r *HugoRenderer) AnchorElement(a *Anchor) string {
	if a.HeaderText == "" {
		return fmt.Sprintf(`<a id="%s"></a>`, a.ID)
	}
	return ""
}

func (r *HugoRenderer) Fragment(a *Anchor) string {
	if a.HeaderText != "" {
		return Slugify(a.HeaderText)
	}
	return a.ID
}

func (r *HugoRenderer) PageHref(_, to string) string {
	target := strings.TrimSuffix(to, ".md")
	if path.Base(target) == "_index" || path.Base(target) == "index" {
		target = path.Dir(target)
	}
	if target == "." {
		return "/" + r.PathPrefix
	}
	return "/" + r.PathPrefix + target + "/"
}

func (r *HugoRenderer) Link(text, href string) string {
	return fmt.Sprintf("[%s](%s)", text, href)
}

// relPath is path.Rel for slash-separated paths (path has no Rel).
func relPath(fromDir, target string) string {
	if fromDir == "." {
		return target
	}
	fromParts := strings.Split(fromDir, "/")
	targetParts := strings.Split(target, "/")
	common := 0
	for common < len(fromParts) && common < len(targetParts) && fromParts[common] == targetParts[common] {
		common++
	}
	parts := make([]string, 0, len(fromParts)-common+len(targetParts)-common)
	for i := common; i < len(fromParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[common:]...)
	if len(parts) == 0 {
		return "."
	}
	return path.Join(parts...)
}

var slugTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts heading text into a URL fragment the way common Markdown
// toolchains do: diacritics folded, lowercased, non-alphanumeric runs
// collapsed into single dashes.
func Slugify(s string) string {
	if folded, _, err := transform.String(slugTransformer, s); err == nil {
		s = folded
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteRune('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
