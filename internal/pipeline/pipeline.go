// Package pipeline composes read views out of typed stages over in-memory rows.
//
// A view starts from a slice of base rows and runs an ordered list of stages:
// Match filters, Join attaches related records fetched in one batch per stage,
// Derive computes fields from what previous stages attached, and Sort orders
// the rows. Project and Paginate are terminal steps that change the row type.
package pipeline

import (
	"context"
	"fmt"
	"slices"
)

// StageKind tags a stage with the operation it performs.
type StageKind int

const (
	StageMatch StageKind = iota + 1
	StageJoin
	StageDerive
	StageSort
)

func (k StageKind) String() string {
	switch k {
	case StageMatch:
		return "match"
	case StageJoin:
		return "join"
	case StageDerive:
		return "derive"
	case StageSort:
		return "sort"
	default:
		return "unknown"
	}
}

// Stage is a single step over rows of type T.
type Stage[T any] struct {
	kind StageKind
	name string
	run  func(ctx context.Context, rows []T) ([]T, error)
}

// Kind reports the stage's operation.
func (s Stage[T]) Kind() StageKind { return s.kind }

// Name reports the stage's label used in errors.
func (s Stage[T]) Name() string { return s.name }

// Loader fetches related records for a batch of keys. Keys without related
// records may be absent from the returned map.
type Loader[K comparable, R any] func(ctx context.Context, keys []K) (map[K][]R, error)

// One adapts a loader returning at most one record per key.
func One[K comparable, R any](load func(ctx context.Context, keys []K) (map[K]R, error)) Loader[K, R] {
	return func(ctx context.Context, keys []K) (map[K][]R, error) {
		found, err := load(ctx, keys)
		if err != nil {
			return nil, err
		}
		out := make(map[K][]R, len(found))
		for k, r := range found {
			out[k] = []R{r}
		}
		return out, nil
	}
}

// Match keeps the rows for which keep returns true.
func Match[T any](name string, keep func(T) bool) Stage[T] {
	return Stage[T]{
		kind: StageMatch,
		name: name,
		run: func(_ context.Context, rows []T) ([]T, error) {
			out := rows[:0:0]
			for _, row := range rows {
				if keep(row) {
					out = append(out, row)
				}
			}
			return out, nil
		},
	}
}

// Join collects the keys of every row, loads the related records in a single
// call and hands each row the loaded map through attach.
func Join[T any, K comparable, R any](name string, keys func(T) []K, load Loader[K, R], attach func(row *T, related map[K][]R)) Stage[T] {
	return Stage[T]{
		kind: StageJoin,
		name: name,
		run: func(ctx context.Context, rows []T) ([]T, error) {
			var batch []K
			seen := make(map[K]struct{})
			for _, row := range rows {
				for _, k := range keys(row) {
					if _, ok := seen[k]; ok {
						continue
					}
					seen[k] = struct{}{}
					batch = append(batch, k)
				}
			}

			related := map[K][]R{}
			if len(batch) > 0 {
				loaded, err := load(ctx, batch)
				if err != nil {
					return nil, err
				}
				if loaded != nil {
					related = loaded
				}
			}

			for i := range rows {
				attach(&rows[i], related)
			}
			return rows, nil
		},
	}
}

// Derive mutates each row in place, typically computing counts and flags.
func Derive[T any](name string, fn func(row *T)) Stage[T] {
	return Stage[T]{
		kind: StageDerive,
		name: name,
		run: func(_ context.Context, rows []T) ([]T, error) {
			for i := range rows {
				fn(&rows[i])
			}
			return rows, nil
		},
	}
}

// Sort orders rows with a stable sort.
func Sort[T any](name string, cmp func(a, b T) int) Stage[T] {
	return Stage[T]{
		kind: StageSort,
		name: name,
		run: func(_ context.Context, rows []T) ([]T, error) {
			slices.SortStableFunc(rows, cmp)
			return rows, nil
		},
	}
}

// Pipeline is an ordered list of stages.
type Pipeline[T any] struct {
	stages []Stage[T]
}

// New builds a pipeline from stages.
func New[T any](stages ...Stage[T]) Pipeline[T] {
	return Pipeline[T]{stages: slices.Clone(stages)}
}

// Then returns a copy of the pipeline with stages appended.
func (p Pipeline[T]) Then(stages ...Stage[T]) Pipeline[T] {
	return Pipeline[T]{stages: append(slices.Clone(p.stages), stages...)}
}

// Kinds lists the stage kinds in execution order.
func (p Pipeline[T]) Kinds() []StageKind {
	kinds := make([]StageKind, len(p.stages))
	for i, s := range p.stages {
		kinds[i] = s.kind
	}
	return kinds
}

// Run executes every stage in order. The input slice may be reused.
func (p Pipeline[T]) Run(ctx context.Context, rows []T) ([]T, error) {
	var err error
	for _, stage := range p.stages {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		rows, err = stage.run(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("%s stage %q: %w", stage.kind, stage.name, err)
		}
	}
	return rows, nil
}

// Project maps rows onto their public shape.
func Project[T, U any](rows []T, fn func(T) U) []U {
	out := make([]U, 0, len(rows))
	for _, row := range rows {
		out = append(out, fn(row))
	}
	return out
}

// First returns the first related record, if any.
func First[R any](related []R) (R, bool) {
	if len(related) == 0 {
		var zero R
		return zero, false
	}
	return related[0], true
}
