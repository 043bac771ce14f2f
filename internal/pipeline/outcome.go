// Package pipeline carries the per-unit run model shared by both
// analysis commands: units (entities, categories, files) are processed
// independently, failures are recorded and skipped, and a run only fails
// outright when no unit succeeded.
package pipeline

import "errors"

// ErrNoResults is returned when every unit of a stage failed or was
// skipped, leaving nothing to analyze.
var ErrNoResults = errors.New("no units produced a result")

// Outcome is the (key, result-or-reason) pair produced for every unit.
type Outcome[T any] struct {
	Key   string
	Value T
	Err   error
}

func (o Outcome[T]) Failed() bool {
	return o.Err != nil
}

// Ok wraps a successful unit.
func Ok[T any](key string, value T) Outcome[T] {
	return Outcome[T]{Key: key, Value: value}
}

// Fail wraps a failed or skipped unit.
func Fail[T any](key string, err error) Outcome[T] {
	return Outcome[T]{Key: key, Err: err}
}

// Collect extracts the successful values in input order. It returns
// ErrNoResults when nothing succeeded.
func Collect[T any](outcomes []Outcome[T]) ([]T, error) {
	values := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Failed() {
			values = append(values, o.Value)
		}
	}
	if len(values) == 0 {
		return nil, ErrNoResults
	}
	return values, nil
}
