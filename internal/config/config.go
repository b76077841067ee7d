// Package config loads the pipeline declaration file. The file selects a
// template, declares CLI options, and may add, rename, or re-constrain
// actions before the pipeline is scheduled.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

// DefaultFileName is the pipeline declaration looked for in the project
// directory.
const DefaultFileName = "docpipe.yaml"

// Config is the root of the pipeline declaration.
type Config struct {
	// Template pre-populates the pipeline with a full set of actions and
	// default ordering constraints. One of "mkdocs" or "hugo".
	Template string `yaml:"template"`

	Site     SiteConfig     `yaml:"site,omitempty"`
	Options  []OptionSpec   `yaml:"options,omitempty"`
	Markdown MarkdownConfig `yaml:"markdown,omitempty"`

	// Actions adds new actions or overrides template-provided ones
	// (matched by name) before scheduling.
	Actions []ActionConfig `yaml:"actions,omitempty"`
}

// SiteConfig carries the site-level settings consumed by the templates.
type SiteConfig struct {
	Name       string `yaml:"name,omitempty"`
	ContentDir string `yaml:"content_dir,omitempty"`
	SiteDir    string `yaml:"site_dir,omitempty"`

	// RepoURL overrides repository autodetection.
	RepoURL string `yaml:"repo_url,omitempty"`
}

// OptionSpec declares a pipeline option settable from the CLI.
type OptionSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Default     string `yaml:"default,omitempty"`
	Flag        bool   `yaml:"flag,omitempty"`
}

// MarkdownConfig configures the Markdown preprocessing action.
type MarkdownConfig struct {
	// Path restricts preprocessing to a directory relative to the build
	// directory.
	Path string `yaml:"path,omitempty"`

	// UnknownTags is "fail" or "keep" (default).
	UnknownTags string `yaml:"unknown_tags,omitempty"`

	// AllowMissingCat downgrades unreadable @cat targets to warnings.
	AllowMissingCat bool `yaml:"allow_missing_cat,omitempty"`
}

// ActionConfig declares or overrides one action.
type ActionConfig struct {
	Name string `yaml:"name"`

	// Type identifies the action implementation (copy-files, run, void,
	// preprocess-markdown). Empty means override an existing action's
	// constraints.
	Type string `yaml:"type,omitempty"`

	// Rename gives a template-provided action a new name.
	Rename string `yaml:"rename,omitempty"`

	After  []string `yaml:"after,omitempty"`
	Before []string `yaml:"before,omitempty"`

	// Paths configures copy-files actions.
	Paths []string `yaml:"paths,omitempty"`

	// Args configures run actions.
	Args []string `yaml:"args,omitempty"`
}

// EffectiveName returns the action's name, defaulting to its type identifier
// when no explicit name is given.
func (a ActionConfig) EffectiveName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Type
}

// Load reads and validates a pipeline declaration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigLoadError(path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.ConfigLoadError(path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a pipeline declaration. Unknown fields are
// rejected so typos surface instead of being silently ignored.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enum fields and per-action consistency.
func (c *Config) Validate() error {
	switch c.Template {
	case "", "mkdocs", "hugo":
	default:
		return fmt.Errorf("unknown template %q", c.Template)
	}
	switch c.Markdown.UnknownTags {
	case "", "fail", "keep":
	default:
		return fmt.Errorf("markdown.unknown_tags must be \"fail\" or \"keep\", got %q", c.Markdown.UnknownTags)
	}

	seenOpts := make(map[string]bool)
	for _, opt := range c.Options {
		if opt.Name == "" {
			return fmt.Errorf("option without a name")
		}
		// serve is set by the CLI; a declaration would clobber the flag.
		if opt.Name == "serve" {
			return fmt.Errorf("option name %q is reserved", opt.Name)
		}
		if seenOpts[opt.Name] {
			return fmt.Errorf("option %q declared twice", opt.Name)
		}
		seenOpts[opt.Name] = true
	}

	seen := make(map[string]bool)
	for _, a := range c.Actions {
		name := a.EffectiveName()
		if name == "" {
			return fmt.Errorf("action without a name or type")
		}
		if seen[name] {
			return fmt.Errorf("action %q declared twice", name)
		}
		seen[name] = true
		switch a.Type {
		case "", "copy-files", "run", "void", "preprocess-markdown":
		default:
			return fmt.Errorf("action %q: unknown type %q", a.Name, a.Type)
		}
		if a.Type == "run" && len(a.Args) == 0 {
			return fmt.Errorf("action %q: run actions need args", a.Name)
		}
	}
	return nil
}

// Starter is the pipeline declaration written by `docpipe init`.
const Starter = `# docpipe pipeline declaration
template: mkdocs

site:
  name: My Project
  content_dir: content

markdown:
  unknown_tags: keep

# Add custom actions or re-constrain template actions here:
#
# actions:
#   - name: changelog
#     type: run
#     args: ["./scripts/gen-changelog.sh"]
#     after: [mkdocs-copy-files]
#     before: [mkdocs-preprocess-markdown]
`
