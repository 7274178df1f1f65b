package prereq

import (
	"context"
	"embed"
	"fmt"
	"os"

	"github.com/jonathan/coursemate/internal/courses"
	"github.com/jonathan/coursemate/internal/orderedjson"
	"github.com/jonathan/coursemate/internal/schemas"
	"github.com/jonathan/coursemate/internal/types"
	embedded "github.com/jonathan/coursemate/schemas"
)

// Source provides grouped prerequisite data for the /api/{course} endpoint.
// Unknown courses return empty groups and no error.
type Source interface {
	Prerequisites(ctx context.Context, course types.CourseCode) (types.PrerequisiteGroups, error)
}

//go:embed data/prerequisites.json
var builtin embed.FS

// StaticSource serves prerequisites from an in-memory fixture.
type StaticSource struct {
	table map[types.CourseCode]types.PrerequisiteGroups
	order []types.CourseCode
}

// DefaultStaticSource loads the fixture compiled into the binary.
func DefaultStaticSource() (*StaticSource, error) {
	data, err := builtin.ReadFile("data/prerequisites.json")
	if err != nil {
		return nil, fmt.Errorf("embedded prerequisite fixture missing: %w", err)
	}
	return ParseFixture(data)
}

// LoadFixture reads a fixture file of the form
// {"<course>": {"<group label>": ["<code>", ...]}}.
func LoadFixture(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prerequisite fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture content, keeping course and group order. Course
// keys and the codes inside each group are normalized; empty codes are dropped.
func ParseFixture(data []byte) (*StaticSource, error) {
	if err := schemas.ValidateDocument(embedded.Prerequisites, data); err != nil {
		return nil, fmt.Errorf("invalid prerequisite fixture: %w", err)
	}

	members, err := orderedjson.Members(data)
	if err != nil {
		return nil, fmt.Errorf("invalid prerequisite fixture: %w", err)
	}

	s := &StaticSource{table: make(map[types.CourseCode]types.PrerequisiteGroups, len(members))}
	for _, m := range members {
		var groups types.PrerequisiteGroups
		if err := groups.UnmarshalJSON(m.Value); err != nil {
			return nil, fmt.Errorf("course %q: %w", m.Key, err)
		}
		for i := range groups {
			groups[i].Courses = normalizeCodes(groups[i].Courses)
		}
		code := courses.NormalizeCode(m.Key)
		if _, seen := s.table[code]; !seen {
			s.order = append(s.order, code)
		}
		s.table[code] = groups
	}
	return s, nil
}

// Prerequisites returns the groups for course; unknown courses yield nil.
func (s *StaticSource) Prerequisites(_ context.Context, course types.CourseCode) (types.PrerequisiteGroups, error) {
	return s.table[course], nil
}

// Courses returns every course in the fixture, in file order.
func (s *StaticSource) Courses() []types.CourseCode {
	out := make([]types.CourseCode, len(s.order))
	copy(out, s.order)
	return out
}

// SourceLookuper answers lookups directly from a Source, skipping HTTP. Source
// errors degrade to empty results like any other lookup failure.
func SourceLookuper(source Source) Lookuper {
	return LookupFunc(func(ctx context.Context, course types.CourseCode) Result {
		if course.IsZero() {
			return Failed(&Error{Message: "empty course code"})
		}
		groups, err := source.Prerequisites(ctx, course)
		if err != nil {
			return Failed(&Error{Course: string(course), Message: "source lookup failed", Cause: err})
		}
		return Result{Courses: normalizeCodes(groups.Flatten())}
	})
}

// normalizeCodes returns codes in canonical form, without empty entries, so
// in-process lookups agree with ParseResponse.
func normalizeCodes(codes []types.CourseCode) []types.CourseCode {
	out := make([]types.CourseCode, 0, len(codes))
	for _, c := range codes {
		if code := courses.NormalizeCode(string(c)); !code.IsZero() {
			out = append(out, code)
		}
	}
	return out
}
