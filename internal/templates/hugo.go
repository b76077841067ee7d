package templates

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpipe/internal/actions"
	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/repository"
	"git.home.luguber.info/inful/docpipe/internal/tagproc"
)

// Hugo bootstraps a Hugo build, mirroring the MkDocs template: hugo-copy-files,
// hugo-update-config, hugo-preprocess-markdown, hugo-run.
type Hugo struct{}

func (t *Hugo) Name() string { return "hugo" }

func (t *Hugo) Apply(cfg *config.Config, bc *pipeline.Context) error {
	contentDir := cfg.Site.ContentDir
	if contentDir == "" {
		contentDir = "content"
	}
	siteDir := cfg.Site.SiteDir
	if siteDir == "" {
		siteDir = "public"
	}

	copyPaths := []string{contentDir}
	for _, extra := range []string{"hugo.yaml", "layouts", "static", "themes"} {
		if _, err := os.Stat(filepath.Join(bc.ProjectDir, extra)); err == nil {
			copyPaths = append(copyPaths, extra)
		}
	}

	steps := []pipeline.Action{
		&actions.CopyFiles{
			Meta:  pipeline.Meta{ActionName: "hugo-copy-files"},
			Paths: copyPaths,
		},
		&HugoUpdateConfig{
			Meta: pipeline.Meta{ActionName: "hugo-update-config", RunAfter: []string{"hugo-copy-files"}},
			Site: cfg.Site,
		},
		&actions.PreprocessMarkdown{
			Meta:        pipeline.Meta{ActionName: "hugo-preprocess-markdown", RunAfter: []string{"hugo-update-config"}},
			Path:        cfg.Markdown.Path,
			Registry:    builtinRegistry(cfg, &tagproc.HugoRenderer{}),
			UnknownTags: unknownTagPolicy(cfg),
		},
		&HugoRun{
			Meta:    pipeline.Meta{ActionName: "hugo-run", RunAfter: []string{"hugo-preprocess-markdown"}},
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

// HugoUpdateConfig creates or updates the hugo.yaml in the build directory.
type HugoUpdateConfig struct {
	pipeline.Meta
	Site config.SiteConfig
}

func (a *HugoUpdateConfig) Execute(_ context.Context, bc *pipeline.Context) error {
	path := filepath.Join(bc.BuildDir, "hugo.yaml")

	cfg := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return err
		}
	}

	if a.Site.Name != "" {
		cfg["title"] = a.Site.Name
	}
	if _, ok := cfg["title"]; !ok {
		cfg["title"] = "Documentation"
	}
	contentDir := a.Site.ContentDir
	if contentDir == "" {
		contentDir = "content"
	}
	cfg["contentDir"] = contentDir

	if _, ok := cfg["params"]; !ok {
		repoURL := a.Site.RepoURL
		if repoURL == "" {
			if details, found := repository.Detect(bc.ProjectDir); found {
				repoURL = details.URL
			}
		}
		if repoURL != "" {
			cfg["params"] = map[string]any{"repo_url": repoURL}
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// HugoRun invokes Hugo after preprocessing completed.
type HugoRun struct {
	pipeline.Meta
	SiteDir string
}

func (a *HugoRun) Execute(ctx context.Context, bc *pipeline.Context) error {
	siteDir := bc.StringOption("site-dir", a.SiteDir)
	if !filepath.IsAbs(siteDir) {
		siteDir = filepath.Join(bc.ProjectDir, siteDir)
	}
	args := []string{"hugo", "--destination", siteDir}
	if bc.BoolOption("serve") {
		args = []string{"hugo", "server"}
	}
	run := actions.Run{Meta: pipeline.Meta{ActionName: a.ActionName}, Args: args}
	return run.Execute(ctx, bc)
}
