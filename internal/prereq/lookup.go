// Package prereq fetches the prerequisites of a course from the external
// lookup endpoint and serves fixture-backed prerequisite data.
package prereq

import (
	"context"

	"github.com/jonathan/coursemate/internal/types"
)

// Result is the outcome of a single lookup. Lookups never fail outright: when
// Err is set, Courses is empty and the caller carries on with no
// prerequisites for that course.
type Result struct {
	Courses []types.CourseCode
	Err     error
}

// OK reports whether the lookup succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Failed returns an empty result carrying err.
func Failed(err error) Result {
	return Result{Err: err}
}

// Lookuper returns the prerequisites of a course.
type Lookuper interface {
	Lookup(ctx context.Context, course types.CourseCode) Result
}

// LookupFunc adapts a function to the Lookuper interface.
type LookupFunc func(ctx context.Context, course types.CourseCode) Result

// Lookup calls f.
func (f LookupFunc) Lookup(ctx context.Context, course types.CourseCode) Result {
	return f(ctx, course)
}

// Static returns a Lookuper answering from a fixed table. Unknown courses
// have no prerequisites.
func Static(table map[types.CourseCode][]types.CourseCode) Lookuper {
	return LookupFunc(func(_ context.Context, course types.CourseCode) Result {
		return Result{Courses: table[course]}
	})
}
