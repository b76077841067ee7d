package tagproc

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/tagscan"
)

func runEngine(t *testing.T, registry *Registry, policy UnknownTagPolicy, files map[string]string) (*FileSet, map[string]*File, error) {
	t.Helper()
	fs := NewFileSet(t.TempDir(), t.TempDir())
	byPath := make(map[string]*File, len(files))
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	// Deterministic processing order for the cross-file scenarios.
	sort.Strings(paths)
	for _, path := range paths {
		f := NewFile(path, files[path])
		fs.Add(f)
		byPath[path] = f
	}
	err := NewEngine(registry, policy).Run(context.Background(), fs)
	return fs, byPath, err
}

func TestEngine_CrossFileLink(t *testing.T) {
	registry := BuiltinRegistry(&MkDocsRenderer{})
	_, files, err := runEngine(t, registry, UnknownTagFail, map[string]string{
		"features.md":      "@anchor getting-started\n# Getting Started\n\nSome text.\n",
		"guide/install.md": "See {@link getting-started} for details.\n",
	})
	require.NoError(t, err)

	// The anchor precedes a heading, so the heading's own slug carries the
	// fragment and no explicit element is emitted.
	assert.Equal(t, "\n# Getting Started\n\nSome text.\n", files["features.md"].Content)
	assert.Equal(t, "See [Getting Started](../features/#getting-started) for details.\n",
		files["guide/install.md"].Content)
}

func TestEngine_SameFileLink(t *testing.T) {
	registry := BuiltinRegistry(&MkDocsRenderer{AlwaysRenderAnchors: true})
	_, files, err := runEngine(t, registry, UnknownTagFail, map[string]string{
		"page.md": "@anchor intro Introduction\n\nLater: {@link intro}.\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "<a id=\"intro\"></a>\n\nLater: [Introduction](#intro).\n", files["page.md"].Content)
}

func TestEngine_LinkTextPrecedence(t *testing.T) {
	registry := BuiltinRegistry(&MkDocsRenderer{AlwaysRenderAnchors: true})
	_, files, err := runEngine(t, registry, UnknownTagFail, map[string]string{
		"page.md": "@anchor intro Introduction\n\n{@link intro Custom Text} and {@link intro}\n",
	})
	require.NoError(t, err)

	assert.Contains(t, files["page.md"].Content, "[Custom Text](#intro)")
	assert.Contains(t, files["page.md"].Content, "[Introduction](#intro)")
}

func TestEngine_ForwardReferenceResolves(t *testing.T) {
	// The link appears in a file processed before the file defining the
	// anchor; resolution must still succeed.
	registry := BuiltinRegistry(&MkDocsRenderer{AlwaysRenderAnchors: true})
	_, files, err := runEngine(t, registry, UnknownTagFail, map[string]string{
		"a.md": "{@link late}\n",
		"z.md": "@anchor late The Late One\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "[The Late One](z/#late)\n", files["a.md"].Content)
}

func TestEngine_UnresolvedReferenceFails(t *testing.T) {
	registry := BuiltinRegistry(&MkDocsRenderer{})
	_, _, err := runEngine(t, registry, UnknownTagFail, map[string]string{
		"page.md": "{@link bar}\n",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryReference))

	var dpe *errors.DocPipeError
	require.ErrorAs(t, err, &dpe)
	assert.Equal(t, "bar", dpe.Context["anchor"])
	assert.Equal(t, "page.md", dpe.Context["file"])
}

func TestEngine_DuplicateAnchorFails(t *testing.T) {
	registry := BuiltinRegistry(&MkDocsRenderer{})
	_, _, err := runEngine(t, registry, UnknownTagFail, map[string]string{
		"a.md": "@anchor foo\n",
		"b.md": "@anchor foo\n",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryAnchor))

	var dpe *errors.DocPipeError
	require.ErrorAs(t, err, &dpe)
	assert.Equal(t, "foo", dpe.Context["anchor"])
	assert.Equal(t, "b.md", dpe.Context["file"])
	assert.Equal(t, "a.md", dpe.Context["previous_file"])
}

func TestEngine_UnknownTagPolicy(t *testing.T) {
	content := map[string]string{"page.md": "@custom something\n"}

	_, _, err := runEngine(t, NewRegistry(), UnknownTagFail, content)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryTag))

	_, files, err := runEngine(t, NewRegistry(), UnknownTagKeep, content)
	require.NoError(t, err)
	assert.Equal(t, "@custom something\n", files["page.md"].Content)
}

func TestEngine_EmittedTextNotReprocessed(t *testing.T) {
	registry := NewRegistry()
	calls := 0
	registry.Use("emit", ProcessorFunc(func(_ context.Context, _ *FileSet, _ *File, _ tagscan.Tag) (Result, error) {
		calls++
		return Text("{@emit again}"), nil
	}))

	_, files, err := runEngine(t, registry, UnknownTagFail, map[string]string{
		"page.md": "x {@emit once} y\n",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "x {@emit again} y\n", files["page.md"].Content)
}

func TestEngine_EscapesCleanedUp(t *testing.T) {
	_, files, err := runEngine(t, NewRegistry(), UnknownTagFail, map[string]string{
		"page.md": "literal \\{@link foo} and\n\\@anchor not-a-tag\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "literal {@link foo} and\n@anchor not-a-tag\n", files["page.md"].Content)
}

func TestEngine_OnlyChangedFilesMarked(t *testing.T) {
	registry := BuiltinRegistry(&MkDocsRenderer{AlwaysRenderAnchors: true})
	_, files, err := runEngine(t, registry, UnknownTagKeep, map[string]string{
		"plain.md":  "no tags here\n",
		"tagged.md": "@anchor a\n",
	})
	require.NoError(t, err)
	assert.False(t, files["plain.md"].Changed())
	assert.True(t, files["tagged.md"].Changed())
}

func TestEngine_IncludedContentTagsProcessed(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "include.md"),
		[]byte("@anchor deep-dive\n# Deep Dive\n"), 0o644))

	// cat runs before anchor, so anchors inside included content register.
	fs := NewFileSet(projectDir, t.TempDir())
	a := NewFile("a.md", "@cat include.md\n")
	b := NewFile("b.md", "{@link deep-dive}\n")
	fs.Add(a)
	fs.Add(b)

	engine := NewEngine(BuiltinRegistry(&MkDocsRenderer{}), UnknownTagFail)
	require.NoError(t, engine.Run(context.Background(), fs))

	assert.Equal(t, "\n# Deep Dive\n\n", a.Content)
	assert.Equal(t, "[Deep Dive](a/#deep-dive)\n", b.Content)
}

func TestRegistry_PassOrder(t *testing.T) {
	noop := ProcessorFunc(func(_ context.Context, _ *FileSet, _ *File, _ tagscan.Tag) (Result, error) {
		return Keep(), nil
	})

	r := NewRegistry()
	r.Use("b", noop)
	r.Use("d", noop)
	r.Use("a", noop, Head())
	r.Use("c", noop, Before("d"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.Names())

	// Before an unknown entry appends.
	r.Use("e", noop, Before("zzz"))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, r.Names())

	// Re-registering replaces the processor and keeps the position.
	echo := ProcessorFunc(func(_ context.Context, _ *FileSet, _ *File, tag tagscan.Tag) (Result, error) {
		return Text(tag.Args), nil
	})
	r.Use("b", echo)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, r.Names())
	got, ok := r.Get("b")
	require.True(t, ok)
	res, err := got.Process(context.Background(), nil, nil, tagscan.Tag{Args: "x"})
	require.NoError(t, err)
	assert.Equal(t, Text("x"), res)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestAnchorIndex(t *testing.T) {
	ix := NewAnchorIndex()
	require.NoError(t, ix.Register(&Anchor{ID: "a", File: "x.md"}))
	require.NoError(t, ix.Register(&Anchor{ID: "b", File: "x.md"}))
	assert.Equal(t, 2, ix.Len())

	got, ok := ix.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "x.md", got.File)

	_, ok = ix.Lookup("missing")
	assert.False(t, ok)

	err := ix.Register(&Anchor{ID: "a", File: "y.md"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryAnchor))
}
