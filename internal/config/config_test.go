package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
template: mkdocs
site:
  name: My Project
  content_dir: docs
  site_dir: _site
  repo_url: https://example.com/proj
options:
  - name: site-dir
    description: Output directory
    default: _site
  - name: draft
    flag: true
markdown:
  path: docs
  unknown_tags: fail
  allow_missing_cat: true
actions:
  - name: changelog
    type: run
    args: ["./gen.sh"]
    after: [mkdocs-copy-files]
    before: [mkdocs-preprocess-markdown]
  - name: mkdocs-run
    rename: publish
`))
	require.NoError(t, err)

	assert.Equal(t, "mkdocs", cfg.Template)
	assert.Equal(t, "My Project", cfg.Site.Name)
	assert.Equal(t, "docs", cfg.Site.ContentDir)
	assert.Equal(t, "https://example.com/proj", cfg.Site.RepoURL)
	require.Len(t, cfg.Options, 2)
	assert.True(t, cfg.Options[1].Flag)
	assert.Equal(t, "fail", cfg.Markdown.UnknownTags)
	assert.True(t, cfg.Markdown.AllowMissingCat)
	require.Len(t, cfg.Actions, 2)
	assert.Equal(t, []string{"mkdocs-copy-files"}, cfg.Actions[0].After)
	assert.Equal(t, "publish", cfg.Actions[1].Rename)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("template: mkdocs\nsiet: {}\n"))
	require.Error(t, err)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown template", "template: sphinx\n"},
		{"bad unknown_tags", "markdown:\n  unknown_tags: explode\n"},
		{"action without name or type", "actions:\n  - after: [x]\n"},
		{"option without name", "options:\n  - default: x\n"},
		{"reserved option name", "options:\n  - name: serve\n    flag: true\n"},
		{"duplicate option", "options:\n  - name: draft\n  - name: draft\n"},
		{"duplicate action", "actions:\n  - name: a\n    type: void\n  - name: a\n    type: void\n"},
		{"unknown action type", "actions:\n  - name: a\n    type: teleport\n"},
		{"run without args", "actions:\n  - name: a\n    type: run\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_NameDefaultsToType(t *testing.T) {
	cfg, err := Parse([]byte("actions:\n  - type: void\n"))
	require.NoError(t, err)
	require.Len(t, cfg.Actions, 1)
	assert.Equal(t, "void", cfg.Actions[0].EffectiveName())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("template: hugo\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hugo", cfg.Template)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestStarterParses(t *testing.T) {
	cfg, err := Parse([]byte(Starter))
	require.NoError(t, err)
	assert.Equal(t, "mkdocs", cfg.Template)
}
