// Package templates pre-populates pipelines for the supported static site
// generators and assembles the final action set from the pipeline
// declaration.
package templates

import (
	"fmt"

	"git.home.luguber.info/inful/docpipe/internal/actions"
	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/tagproc"
)

// Template pre-populates a pipeline with a full set of actions and default
// ordering constraints.
type Template interface {
	Name() string
	Apply(cfg *config.Config, bc *pipeline.Context) error
}

// ForName returns the template registered under name.
func ForName(name string) (Template, error) {
	switch name {
	case "mkdocs":
		return &Mkdocs{}, nil
	case "hugo":
		return &Hugo{}, nil
	default:
		return nil, fmt.Errorf("unknown template %q", name)
	}
}

// Assemble builds the pipeline's action set from the declaration: template
// actions first, then user overrides and additions. It never runs anything;
// scheduling happens later.
func Assemble(cfg *config.Config, bc *pipeline.Context) error {
	if cfg.Template != "" {
		tpl, err := ForName(cfg.Template)
		if err != nil {
			return err
		}
		if err := tpl.Apply(cfg, bc); err != nil {
			return err
		}
	}

	// Renames first so user constraints can use the new names.
	for _, ac := range cfg.Actions {
		if ac.Rename != "" {
			if err := bc.Rename(ac.EffectiveName(), ac.Rename); err != nil {
				return err
			}
		}
	}

	for _, ac := range cfg.Actions {
		name := ac.EffectiveName()
		if ac.Rename != "" {
			name = ac.Rename
		}
		if ac.Type == "" {
			// Override of an existing action's constraints.
			existing, err := bc.Lookup(name)
			if err != nil {
				return err
			}
			constrainable, ok := existing.(interface {
				After(...string) *pipeline.Meta
				Before(...string) *pipeline.Meta
			})
			if !ok {
				return fmt.Errorf("action %q cannot be re-constrained", name)
			}
			constrainable.After(ac.After...)
			constrainable.Before(ac.Before...)
			continue
		}

		action, err := buildAction(name, ac, cfg)
		if err != nil {
			return err
		}
		if err := bc.Register(action); err != nil {
			return err
		}
	}

	return nil
}

func buildAction(name string, ac config.ActionConfig, cfg *config.Config) (pipeline.Action, error) {
	meta := pipeline.Meta{ActionName: name, RunAfter: ac.After, RunBefore: ac.Before}
	switch ac.Type {
	case "copy-files":
		return &actions.CopyFiles{Meta: meta, Paths: ac.Paths}, nil
	case "run":
		return &actions.Run{Meta: meta, Args: ac.Args}, nil
	case "void":
		return &actions.Void{Meta: meta}, nil
	case "preprocess-markdown":
		return &actions.PreprocessMarkdown{
			Meta:        meta,
			Path:        cfg.Markdown.Path,
			Registry:    builtinRegistry(cfg, &tagproc.MkDocsRenderer{}),
			UnknownTags: unknownTagPolicy(cfg),
		}, nil
	default:
		return nil, fmt.Errorf("action %q: unknown type %q", name, ac.Type)
	}
}

func builtinRegistry(cfg *config.Config, renderer tagproc.Renderer) *tagproc.Registry {
	registry := tagproc.BuiltinRegistry(renderer)
	if cfg.Markdown.AllowMissingCat {
		registry.Use("cat", &tagproc.CatProcessor{AllowMissing: true})
	}
	return registry
}

func unknownTagPolicy(cfg *config.Config) tagproc.UnknownTagPolicy {
	if cfg.Markdown.UnknownTags == "fail" {
		return tagproc.UnknownTagFail
	}
	return tagproc.UnknownTagKeep
}
