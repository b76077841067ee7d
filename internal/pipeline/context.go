package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

// Context is the shared state of one pipeline run: the isolated build
// directory, the original project directory, the resolved option values, and
// the registry of actions by name. It is created at the start of a run and
// discarded at the end; nothing pipeline-scoped lives in package globals.
type Context struct {
	// RunID uniquely identifies this pipeline run in logs.
	RunID string

	// ProjectDir is the original project directory. Actions must never
	// write into it.
	ProjectDir string

	// BuildDir is the isolated, disposable build directory all actions
	// read and write.
	BuildDir string

	options map[string]any
	frozen  bool

	actions []Action
	byName  map[string]Action
	sealed  bool

	watchPaths []string
}

// NewContext creates a run context with a fresh run ID.
func NewContext(projectDir, buildDir string) *Context {
	return &Context{
		RunID:      uuid.NewString(),
		ProjectDir: projectDir,
		BuildDir:   buildDir,
		options:    make(map[string]any),
		byName:     make(map[string]Action),
	}
}

// Register adds an action to the pipeline. Registration is only possible
// before scheduling begins; all actions must be known before the execution
// order is computed.
func (c *Context) Register(a Action) error {
	if c.sealed {
		return errors.New(errors.CategoryConfig, errors.SeverityFatal,
			"cannot register actions after scheduling has started").WithContext("action", a.Name())
	}
	name := a.Name()
	if name == "" {
		return errors.New(errors.CategoryConfig, errors.SeverityFatal, "action has no name")
	}
	if _, exists := c.byName[name]; exists {
		return errors.DuplicateActionName(name)
	}
	c.actions = append(c.actions, a)
	c.byName[name] = a
	return nil
}

// Rename changes a registered action's name before scheduling. Constraints
// held by other actions keep referencing the old name unless updated by the
// caller, so renames are applied before user constraints.
func (c *Context) Rename(oldName, newName string) error {
	if c.sealed {
		return errors.New(errors.CategoryConfig, errors.SeverityFatal,
			"cannot rename actions after scheduling has started").WithContext("action", oldName)
	}
	a, ok := c.byName[oldName]
	if !ok {
		return errors.ActionNotFound(oldName)
	}
	if _, exists := c.byName[newName]; exists {
		return errors.DuplicateActionName(newName)
	}
	named, ok := a.(interface{ SetName(string) })
	if !ok {
		return errors.New(errors.CategoryConfig, errors.SeverityFatal,
			"action does not support renaming").WithContext("action", oldName)
	}
	named.SetName(newName)
	delete(c.byName, oldName)
	c.byName[newName] = a
	return nil
}

// Lookup returns a previously registered action by name.
func (c *Context) Lookup(name string) (Action, error) {
	a, ok := c.byName[name]
	if !ok {
		return nil, errors.ActionNotFound(name)
	}
	return a, nil
}

// Actions returns the registered actions in registration order.
func (c *Context) Actions() []Action {
	return c.actions
}

// seal forbids further registration. Called when scheduling starts.
func (c *Context) seal() {
	c.sealed = true
}

// SetOption sets an option value. Option values are read-only once the run
// starts.
func (c *Context) SetOption(name string, value any) error {
	if c.frozen {
		return fmt.Errorf("option %q set after options were frozen", name)
	}
	c.options[name] = value
	return nil
}

// FreezeOptions makes the option map read-only for the rest of the run.
func (c *Context) FreezeOptions() {
	c.frozen = true
}

// Option returns the resolved value of a named option.
func (c *Context) Option(name string) (any, bool) {
	v, ok := c.options[name]
	return v, ok
}

// StringOption returns a string option, or def when unset.
func (c *Context) StringOption(name, def string) string {
	if v, ok := c.options[name]; ok {
		if s, isStr := v.(string); isStr {
			return s
		}
	}
	return def
}

// BoolOption returns a boolean option, or false when unset.
func (c *Context) BoolOption(name string) bool {
	v, ok := c.options[name]
	if !ok {
		return false
	}
	b, isBool := v.(bool)
	return isBool && b
}

// Watch records a path whose changes should trigger a pipeline re-run in
// watch mode.
func (c *Context) Watch(path string) {
	c.watchPaths = append(c.watchPaths, path)
}

// WatchPaths returns all paths registered with Watch.
func (c *Context) WatchPaths() []string {
	return c.watchPaths
}
