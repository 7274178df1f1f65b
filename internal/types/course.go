// Package types provides the data model shared by the catalog, resolver,
// lookup client and graph assembler.
//
//nolint:revive // types is a standard Go package name pattern
package types

// UnitsPerCourse is the fixed credit value of every catalog course.
const UnitsPerCourse = 3

// CourseCode is a normalized course identifier such as "CMPUT 174".
type CourseCode string

// String returns the code as a plain string.
func (c CourseCode) String() string {
	return string(c)
}

// IsZero reports whether the code is empty.
func (c CourseCode) IsZero() bool {
	return c == ""
}

// CompletedCourses is the normalized list of courses a student has finished.
// Input order is kept for display; membership checks use set semantics.
type CompletedCourses struct {
	codes []CourseCode
	set   map[CourseCode]struct{}
}

// NewCompletedCourses builds a completed-course set from codes in input order.
// Empty codes are dropped. Duplicates stay in the ordered list.
func NewCompletedCourses(codes ...CourseCode) CompletedCourses {
	cc := CompletedCourses{
		codes: make([]CourseCode, 0, len(codes)),
		set:   make(map[CourseCode]struct{}, len(codes)),
	}
	for _, code := range codes {
		if code.IsZero() {
			continue
		}
		cc.codes = append(cc.codes, code)
		cc.set[code] = struct{}{}
	}
	return cc
}

// Contains reports whether code was completed.
func (cc CompletedCourses) Contains(code CourseCode) bool {
	_, ok := cc.set[code]
	return ok
}

// Codes returns the completed courses in input order.
func (cc CompletedCourses) Codes() []CourseCode {
	out := make([]CourseCode, len(cc.codes))
	copy(out, cc.codes)
	return out
}

// Len returns the number of entries in input order, duplicates included.
func (cc CompletedCourses) Len() int {
	return len(cc.codes)
}
