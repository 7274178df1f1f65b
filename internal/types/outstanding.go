package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/coursemate/internal/orderedjson"
)

// OutstandingCategory is the unfinished part of one requirement category.
type OutstandingCategory struct {
	Category       string       `json:"category"`
	UnitsRemaining int          `json:"units_remaining"`
	Courses        []CourseCode `json:"courses"`
}

// Label returns the display label, e.g. "Core: 6 units".
func (o OutstandingCategory) Label() string {
	return fmt.Sprintf("%s: %d units", o.Category, o.UnitsRemaining)
}

// OutstandingRequirements lists the categories that still need work, in
// catalog order. Satisfied categories are absent.
type OutstandingRequirements []OutstandingCategory

// Flatten returns every outstanding course in category order, then in
// in-category order.
func (o OutstandingRequirements) Flatten() []CourseCode {
	var out []CourseCode
	for _, cat := range o {
		out = append(out, cat.Courses...)
	}
	return out
}

// Lookup returns the outstanding entry for a label, if present.
func (o OutstandingRequirements) Lookup(label string) (OutstandingCategory, bool) {
	for _, cat := range o {
		if cat.Label() == label {
			return cat, true
		}
	}
	return OutstandingCategory{}, false
}

// MarshalJSON encodes the requirements as an ordered object of
// label -> courses, which is what the presentation layer renders.
func (o OutstandingRequirements) MarshalJSON() ([]byte, error) {
	members := make([]orderedjson.Member, 0, len(o))
	for _, cat := range o {
		courses := cat.Courses
		if courses == nil {
			courses = []CourseCode{}
		}
		value, err := json.Marshal(courses)
		if err != nil {
			return nil, err
		}
		members = append(members, orderedjson.Member{Key: cat.Label(), Value: value})
	}
	return orderedjson.WriteObject(members)
}

// UnmarshalJSON accepts the ordered object written by MarshalJSON, splitting
// each "<category>: <n> units" label back into its parts.
func (o *OutstandingRequirements) UnmarshalJSON(data []byte) error {
	members, err := orderedjson.Members(data)
	if err != nil {
		return fmt.Errorf("invalid outstanding requirements: %w", err)
	}
	out := make(OutstandingRequirements, 0, len(members))
	for _, m := range members {
		category, units, err := parseLabel(m.Key)
		if err != nil {
			return err
		}
		var courses []CourseCode
		if err := json.Unmarshal(m.Value, &courses); err != nil {
			return fmt.Errorf("invalid outstanding courses for %q: %w", m.Key, err)
		}
		out = append(out, OutstandingCategory{Category: category, UnitsRemaining: units, Courses: courses})
	}
	*o = out
	return nil
}

func parseLabel(label string) (string, int, error) {
	i := strings.LastIndex(label, ": ")
	if i < 0 || !strings.HasSuffix(label, " units") {
		return "", 0, fmt.Errorf("invalid outstanding label %q", label)
	}
	units, err := strconv.Atoi(strings.TrimSuffix(label[i+2:], " units"))
	if err != nil {
		return "", 0, fmt.Errorf("invalid outstanding label %q: %w", label, err)
	}
	return label[:i], units, nil
}
