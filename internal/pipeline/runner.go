package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
)

// Run schedules and executes the pipeline: one action at a time, in
// constraint order, aborting on the first failure. The failing action's
// name wraps the underlying cause. There is no retry and no partial-success
// mode; a failed run is re-run from scratch.
func Run(ctx context.Context, bc *Context) error {
	order, err := Schedule(bc)
	if err != nil {
		return err
	}

	slog.Info("Executing pipeline", logfields.RunID(bc.RunID), slog.Int("actions", len(order)))
	for _, action := range order {
		select {
		case <-ctx.Done():
			return errors.ActionFailed(action.Name(), ctx.Err())
		default:
		}

		slog.Info("Executing action", logfields.Action(action.Name()))
		t0 := time.Now()
		if err := action.Execute(ctx, bc); err != nil {
			return errors.ActionFailed(action.Name(), err)
		}
		slog.Debug("Action completed", logfields.Action(action.Name()),
			logfields.DurationMS(float64(time.Since(t0).Microseconds())/1000.0))
	}

	return nil
}
