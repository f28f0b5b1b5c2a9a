// Package ladder evaluates an ordered list of fallible strategies and returns
// the first success.
package ladder

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNoSteps = errors.New("ladder: no steps")

type Step[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// ExhaustedError is returned when every step failed. Err is the last failure.
type ExhaustedError struct {
	Attempted []string
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d strategies failed (%s): %v", len(e.Attempted), strings.Join(e.Attempted, ", "), e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Observer is notified of every failed step before the next one runs.
type Observer func(step string, err error)

// First runs steps left to right and stops at the first one that returns a nil
// error. A cancelled context stops the ladder between steps.
func First[T any](ctx context.Context, steps []Step[T], onFail Observer) (T, string, error) {
	var zero T
	if len(steps) == 0 {
		return zero, "", ErrNoSteps
	}
	attempted := make([]string, 0, len(steps))
	var last error
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			last = err
			break
		}
		attempted = append(attempted, s.Name)
		out, err := s.Run(ctx)
		if err == nil {
			return out, s.Name, nil
		}
		last = err
		if onFail != nil {
			onFail(s.Name, err)
		}
	}
	return zero, "", &ExhaustedError{Attempted: attempted, Err: last}
}
