// Package survey expands a base water sample across one or more variation
// axes into the full set of concrete survey points.
package survey

import (
	"fmt"

	"github.com/hydrolytics/olisurvey/internal/state"
)

// Axis sweeps one component of the base State over an ordered value sequence.
type Axis struct {
	Component string
	Values    []float64
}

// Point is one fully-specified sample in the survey. Index is the position
// in the Cartesian product and is stable across runs.
type Point struct {
	Index int
	State *state.State
}

// UnknownComponentError reports an axis naming a component absent from the
// base State. The build fails atomically.
type UnknownComponentError struct {
	Component string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("survey: axis references unknown component %s", e.Component)
}

// EmptyAxisError reports an axis with no values. The build fails atomically.
type EmptyAxisError struct {
	Component string
}

func (e *EmptyAxisError) Error() string {
	return fmt.Sprintf("survey: axis %s has no values", e.Component)
}

// Build expands base across axes into the Cartesian product of all axis
// values. The first declared axis is the outermost, slowest-varying one: with
// axes A (length m) and B (length n), A's value changes every n points.
// Indices run 0..m*n-1 in generation order. Entries of base outside the axes'
// components are carried into every point unchanged. With zero axes the
// result is a single point equal to base.
//
// Build never mutates base and either returns the complete point list or an
// error, never a partial list.
func Build(base *state.State, axes []Axis) ([]Point, error) {
	if base == nil {
		return nil, fmt.Errorf("survey: base state is required")
	}
	for _, axis := range axes {
		if _, ok := base.Component(axis.Component); !ok {
			return nil, &UnknownComponentError{Component: axis.Component}
		}
		if len(axis.Values) == 0 {
			return nil, &EmptyAxisError{Component: axis.Component}
		}
	}

	total := 1
	for _, axis := range axes {
		total *= len(axis.Values)
	}

	points := make([]Point, 0, total)
	// offsets is a mixed-radix counter over the axis value sequences, with
	// the last axis in the least-significant (fastest-varying) position.
	offsets := make([]int, len(axes))
	for i := 0; i < total; i++ {
		s := base.Clone()
		for a, axis := range axes {
			if err := s.SetComponentValue(axis.Component, axis.Values[offsets[a]]); err != nil {
				return nil, fmt.Errorf("survey: point %d: %w", i, err)
			}
		}
		points = append(points, Point{Index: i, State: s})

		for a := len(axes) - 1; a >= 0; a-- {
			offsets[a]++
			if offsets[a] < len(axes[a].Values) {
				break
			}
			offsets[a] = 0
		}
	}

	return points, nil
}
