package pipeline

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

func TestRun_ExecutesInConstraintOrder(t *testing.T) {
	bc := NewContext("/project", "/build")
	var log []string
	for _, a := range []*testAction{
		newTestAction("render", []string{"preprocess"}, nil),
		newTestAction("copy", nil, nil),
		newTestAction("preprocess", []string{"copy"}, nil),
	} {
		a.log = &log
		require.NoError(t, bc.Register(a))
	}

	require.NoError(t, Run(context.Background(), bc))
	assert.Equal(t, []string{"copy", "preprocess", "render"}, log)
}

func TestRun_AbortsOnFirstFailure(t *testing.T) {
	bc := NewContext("/project", "/build")
	var log []string
	boom := stderrors.New("boom")

	first := newTestAction("first", nil, nil)
	first.log = &log
	failing := newTestAction("failing", []string{"first"}, nil)
	failing.log = &log
	failing.fail = boom
	never := newTestAction("never", []string{"failing"}, nil)
	never.log = &log

	for _, a := range []*testAction{first, failing, never} {
		require.NoError(t, bc.Register(a))
	}

	err := Run(context.Background(), bc)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryAction))
	assert.Contains(t, err.Error(), "failing")
	assert.ErrorIs(t, err, boom)

	// Nothing downstream of the failure ran.
	assert.Equal(t, []string{"first", "failing"}, log)
}

func TestRun_CycleRunsNothing(t *testing.T) {
	bc := NewContext("/project", "/build")
	var log []string
	a := newTestAction("a", []string{"b"}, nil)
	a.log = &log
	b := newTestAction("b", []string{"a"}, nil)
	b.log = &log
	require.NoError(t, bc.Register(a))
	require.NoError(t, bc.Register(b))

	err := Run(context.Background(), bc)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
	assert.Empty(t, log)
}

func TestRun_CancelledContext(t *testing.T) {
	bc := NewContext("/project", "/build")
	var log []string
	a := newTestAction("a", nil, nil)
	a.log = &log
	require.NoError(t, bc.Register(a))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, bc)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, log)
}
