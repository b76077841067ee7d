package actions

import (
	"context"

	"git.home.luguber.info/inful/docpipe/internal/pipeline"
)

// Void does nothing. Templates register void actions as stable anchor
// points so user configuration can order custom actions relative to them.
type Void struct {
	pipeline.Meta
}

func (a *Void) Execute(context.Context, *pipeline.Context) error {
	return nil
}
