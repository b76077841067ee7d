package templates

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpipe/internal/actions"
	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/repository"
	"git.home.luguber.info/inful/docpipe/internal/tagproc"
)

// Mkdocs bootstraps an MkDocs build: copy the content directory and
// mkdocs.yml into the build directory, apply the default configuration,
// preprocess the Markdown, then run `mkdocs build` (or `mkdocs serve` when
// the serve option is set).
//
// Registered actions, chained in order: mkdocs-copy-files,
// mkdocs-update-config, mkdocs-preprocess-markdown, mkdocs-run.
type Mkdocs struct{}

func (t *Mkdocs) Name() string { return "mkdocs" }

func (t *Mkdocs) Apply(cfg *config.Config, bc *pipeline.Context) error {
	contentDir := cfg.Site.ContentDir
	if contentDir == "" {
		contentDir = "content"
	}
	siteDir := cfg.Site.SiteDir
	if siteDir == "" {
		siteDir = "_site"
	}

	copyPaths := []string{contentDir}
	if _, err := os.Stat(filepath.Join(bc.ProjectDir, "mkdocs.yml")); err == nil {
		copyPaths = append(copyPaths, "mkdocs.yml")
	}

	steps := []pipeline.Action{
		&actions.CopyFiles{
			Meta:  pipeline.Meta{ActionName: "mkdocs-copy-files"},
			Paths: copyPaths,
		},
		&MkdocsUpdateConfig{
			Meta: pipeline.Meta{ActionName: "mkdocs-update-config", RunAfter: []string{"mkdocs-copy-files"}},
			Site: cfg.Site,
		},
		&actions.PreprocessMarkdown{
			Meta:        pipeline.Meta{ActionName: "mkdocs-preprocess-markdown", RunAfter: []string{"mkdocs-update-config"}},
			Path:        cfg.Markdown.Path,
			Registry:    builtinRegistry(cfg, &tagproc.MkDocsRenderer{}),
			UnknownTags: unknownTagPolicy(cfg),
		},
		&MkdocsRun{
			Meta:    pipeline.Meta{ActionName: "mkdocs-run", RunAfter: []string{"mkdocs-preprocess-markdown"}},
			SiteDir: siteDir,
		},
	}
	for _, a := range steps {
		if err := bc.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// defaultMkdocsConfig is applied when the project carries no mkdocs.yml.
var defaultMkdocsConfig = map[string]any{
	"theme": map[string]any{
		"name": "material",
	},
	"markdown_extensions": []any{
		"admonition",
		"pymdownx.superfences",
	},
}

// MkdocsUpdateConfig creates or updates the mkdocs.yml in the build
// directory: the template defaults are applied when the file is missing,
// the configured site name wins over the file's, and the repository URL is
// autodetected from the project when not configured.
type MkdocsUpdateConfig struct {
	pipeline.Meta
	Site config.SiteConfig
}

func (a *MkdocsUpdateConfig) Execute(_ context.Context, bc *pipeline.Context) error {
	path := filepath.Join(bc.BuildDir, "mkdocs.yml")

	cfg := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return err
		}
	} else {
		for k, v := range defaultMkdocsConfig {
			cfg[k] = v
		}
	}

	if a.Site.Name != "" {
		cfg["site_name"] = a.Site.Name
	}
	if _, ok := cfg["site_name"]; !ok {
		cfg["site_name"] = "Documentation"
	}
	contentDir := a.Site.ContentDir
	if contentDir == "" {
		contentDir = "content"
	}
	cfg["docs_dir"] = contentDir

	if _, ok := cfg["repo_url"]; !ok {
		repoURL := a.Site.RepoURL
		if repoURL == "" {
			if details, found := repository.Detect(bc.ProjectDir); found {
				repoURL = details.URL
				slog.Debug("Autodetected repository URL", logfields.Path(repoURL))
			}
		}
		if repoURL != "" {
			cfg["repo_url"] = repoURL
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MkdocsRun invokes MkDocs after preprocessing completed. The serve option
// switches from a one-shot build to the MkDocs live server.
type MkdocsRun struct {
	pipeline.Meta
	SiteDir string
}

func (a *MkdocsRun) Execute(ctx context.Context, bc *pipeline.Context) error {
	siteDir := bc.StringOption("site-dir", a.SiteDir)
	if !filepath.IsAbs(siteDir) {
		// The build directory is disposable; the rendered site is not.
		siteDir = filepath.Join(bc.ProjectDir, siteDir)
	}
	args := []string{"mkdocs", "build", "-d", siteDir}
	if bc.BoolOption("serve") {
		args = []string{"mkdocs", "serve"}
	}
	run := actions.Run{Meta: pipeline.Meta{ActionName: a.ActionName}, Args: args}
	return run.Execute(ctx, bc)
}
