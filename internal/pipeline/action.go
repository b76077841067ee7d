// Package pipeline implements the dependency-ordered action pipeline: named
// actions with before/after constraints are topologically sorted and run one
// at a time against a shared build context.
package pipeline

import "context"

// Constraints are an action's ordering relations, referencing other actions
// by name.
type Constraints struct {
	// After lists actions that must execute before this one.
	After []string

	// Before lists actions that must execute after this one.
	Before []string
}

// Action is a named unit of pipeline work, executed exactly once per run.
// Name and constraints are fixed once the action is registered.
type Action interface {
	Name() string
	Constraints() Constraints

	// Execute performs the step's work. The scheduler relies on side
	// effects on disk and on the context, not on a return value; an error
	// aborts the remainder of the pipeline.
	Execute(ctx context.Context, bc *Context) error
}

// Meta provides name and constraint storage for action implementations.
// Embed it and configure it at construction time.
type Meta struct {
	ActionName  string
	RunAfter    []string
	RunBefore   []string
	Description string
}

func (m *Meta) Name() string { return m.ActionName }

func (m *Meta) SetName(name string) { m.ActionName = name }

func (m *Meta) Constraints() Constraints {
	return Constraints{After: m.RunAfter, Before: m.RunBefore}
}

// After appends names of actions this one must run after.
func (m *Meta) After(names ...string) *Meta {
	m.RunAfter = append(m.RunAfter, names...)
	return m
}

// Before appends names of actions this one must run before.
func (m *Meta) Before(names ...string) *Meta {
	m.RunBefore = append(m.RunBefore, names...)
	return m
}
