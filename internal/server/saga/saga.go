// Package saga runs multi-resource workflows whose steps cannot share one
// transaction (an object upload followed by a row update). A failed step
// triggers the compensations of the steps that already succeeded.
package saga

import (
	"context"
	"errors"
	"fmt"
)

// ErrCompensation marks a compensating action that itself failed.
var ErrCompensation = errors.New("compensation failed")

// Step is one forward action and its optional compensating action.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// Run executes steps in order. When one fails, the Undo of every completed
// step runs in reverse order on a context that ignores cancellation of ctx.
// The returned error wraps the step error and any compensation errors.
//
//	err := saga.Run(ctx,
//	    saga.Step{Name: "upload", Do: upload, Undo: deleteObject},
//	    saga.Step{Name: "record", Do: updateRow},
//	)
func Run(ctx context.Context, steps ...Step) error {
	done := make([]Step, 0, len(steps))
	for _, s := range steps {
		if err := s.Do(ctx); err != nil {
			stepErr := fmt.Errorf("%s: %w", s.Name, err)
			return errors.Join(stepErr, compensate(context.WithoutCancel(ctx), done))
		}
		done = append(done, s)
	}
	return nil
}

func compensate(ctx context.Context, done []Step) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		s := done[i]
		if s.Undo == nil {
			continue
		}
		if err := s.Undo(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrCompensation, s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// RunWithCompensation runs do followed by then. If then fails, undo reverses
// do. It is the two-step form of Run used by upload-then-record workflows.
func RunWithCompensation(ctx context.Context, do, undo, then func(ctx context.Context) error) error {
	return Run(ctx,
		Step{Name: "do", Do: do, Undo: undo},
		Step{Name: "then", Do: then},
	)
}
