package ladder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstReturnsEarliestSuccess(t *testing.T) {
	calls := 0
	steps := []Step[int]{
		{Name: "a", Run: func(context.Context) (int, error) { calls++; return 0, errors.New("boom") }},
		{Name: "b", Run: func(context.Context) (int, error) { calls++; return 2, nil }},
		{Name: "c", Run: func(context.Context) (int, error) { calls++; return 3, nil }},
	}
	var failed []string
	out, name, err := First(context.Background(), steps, func(step string, _ error) { failed = append(failed, step) })
	require.NoError(t, err)
	require.Equal(t, 2, out)
	require.Equal(t, "b", name)
	require.Equal(t, 2, calls)
	require.Equal(t, []string{"a"}, failed)
}

func TestFirstExhausted(t *testing.T) {
	last := errors.New("last")
	steps := []Step[string]{
		{Name: "x", Run: func(context.Context) (string, error) { return "", errors.New("first") }},
		{Name: "y", Run: func(context.Context) (string, error) { return "", last }},
	}
	_, _, err := First(context.Background(), steps, nil)
	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	require.Equal(t, []string{"x", "y"}, ex.Attempted)
	require.ErrorIs(t, err, last)
}

func TestFirstNoSteps(t *testing.T) {
	_, _, err := First[int](context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrNoSteps)
}

func TestFirstStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	_, _, err := First(ctx, []Step[int]{{Name: "a", Run: func(context.Context) (int, error) { ran = true; return 1, nil }}}, nil)
	require.False(t, ran)
	require.ErrorIs(t, err, context.Canceled)
}
