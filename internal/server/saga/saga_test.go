package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ calls []string }

func (r *recorder) step(name string, doErr, undoErr error) Step {
	return Step{
		Name: name,
		Do: func(context.Context) error {
			r.calls = append(r.calls, "do:"+name)
			return doErr
		},
		Undo: func(context.Context) error {
			r.calls = append(r.calls, "undo:"+name)
			return undoErr
		},
	}
}

func TestRun_AllSucceed(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Run(context.Background(), r.step("a", nil, nil), r.step("b", nil, nil)))
	assert.Equal(t, []string{"do:a", "do:b"}, r.calls)
}

func TestRun_CompensatesInReverse(t *testing.T) {
	r := &recorder{}
	boom := errors.New("boom")

	err := Run(context.Background(),
		r.step("a", nil, nil),
		r.step("b", nil, nil),
		r.step("c", boom, nil),
		r.step("d", nil, nil),
	)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrCompensation)
	assert.Equal(t, []string{"do:a", "do:b", "do:c", "undo:b", "undo:a"}, r.calls)
	assert.Contains(t, err.Error(), "c: boom")
}

func TestRun_CompensationFailureIsReported(t *testing.T) {
	r := &recorder{}
	boom := errors.New("boom")
	undoFail := errors.New("delete failed")

	err := Run(context.Background(), r.step("upload", nil, undoFail), r.step("record", boom, nil))
	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrCompensation)
	assert.ErrorIs(t, err, undoFail)
}

func TestRun_UndoIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var undoCtxErr error

	err := Run(ctx,
		Step{
			Name: "upload",
			Do:   func(context.Context) error { return nil },
			Undo: func(ctx context.Context) error {
				undoCtxErr = ctx.Err()
				return nil
			},
		},
		Step{
			Name: "record",
			Do: func(context.Context) error {
				cancel()
				return context.Canceled
			},
		},
	)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, undoCtxErr)
}

func TestRun_NilUndoSkipped(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(),
		Step{Name: "a", Do: func(context.Context) error { return nil }},
		Step{Name: "b", Do: func(context.Context) error { return boom }},
	)
	assert.ErrorIs(t, err, boom)
}

func TestRunWithCompensation(t *testing.T) {
	var undone bool
	boom := errors.New("record failed")

	err := RunWithCompensation(context.Background(),
		func(context.Context) error { return nil },
		func(context.Context) error { undone = true; return nil },
		func(context.Context) error { return boom },
	)
	assert.ErrorIs(t, err, boom)
	assert.True(t, undone)

	undone = false
	require.NoError(t, RunWithCompensation(context.Background(),
		func(context.Context) error { return nil },
		func(context.Context) error { undone = true; return nil },
		func(context.Context) error { return nil },
	))
	assert.False(t, undone)
}
