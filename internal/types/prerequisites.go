package types

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/coursemate/internal/orderedjson"
)

// PrerequisiteGroup is one labelled group of prerequisites, e.g. "one of".
type PrerequisiteGroup struct {
	Label   string       `json:"label"`
	Courses []CourseCode `json:"courses"`
}

// PrerequisiteGroups is the grouped prerequisite structure of a course. It
// encodes as an ordered object of label -> courses.
type PrerequisiteGroups []PrerequisiteGroup

// Flatten returns every course mentioned in the groups, in order. The OR/AND
// structure of the groups is lost.
func (g PrerequisiteGroups) Flatten() []CourseCode {
	var out []CourseCode
	for _, group := range g {
		out = append(out, group.Courses...)
	}
	return out
}

// MarshalJSON encodes the groups as {"label": ["CODE", ...], ...}.
func (g PrerequisiteGroups) MarshalJSON() ([]byte, error) {
	members := make([]orderedjson.Member, 0, len(g))
	for _, group := range g {
		courses := group.Courses
		if courses == nil {
			courses = []CourseCode{}
		}
		value, err := json.Marshal(courses)
		if err != nil {
			return nil, err
		}
		members = append(members, orderedjson.Member{Key: group.Label, Value: value})
	}
	return orderedjson.WriteObject(members)
}

// UnmarshalJSON accepts the ordered object form written by MarshalJSON.
func (g *PrerequisiteGroups) UnmarshalJSON(data []byte) error {
	members, err := orderedjson.Members(data)
	if err != nil {
		return fmt.Errorf("invalid prerequisite groups: %w", err)
	}
	groups := make(PrerequisiteGroups, 0, len(members))
	for _, m := range members {
		var courses []CourseCode
		if err := json.Unmarshal(m.Value, &courses); err != nil {
			return fmt.Errorf("invalid prerequisite group %q: %w", m.Key, err)
		}
		groups = append(groups, PrerequisiteGroup{Label: m.Key, Courses: courses})
	}
	*g = groups
	return nil
}
