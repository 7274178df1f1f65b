package catalog

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jonathan/coursemate/internal/courses"
	"github.com/jonathan/coursemate/internal/orderedjson"
	"github.com/jonathan/coursemate/internal/schemas"
	"github.com/jonathan/coursemate/internal/types"
	embedded "github.com/jonathan/coursemate/schemas"
)

// rawCategory mirrors a catalog category entry. Pointers distinguish a
// missing field from a zero value.
type rawCategory struct {
	List  *[]string `json:"list"`
	Units *int      `json:"units"`
}

// ParseProgram decodes a program document of the form
// {"Major": {"<category>": {"list": [...], "units": n}, ...}}.
// Categories keep their document order. Categories that are missing list or
// units, or carry negative units, are skipped. When a key repeats, the first
// Major section and the first category of a given name win; later ones are
// logged and ignored.
func ParseProgram(name string, data []byte) (*types.DegreeProgram, error) {
	if err := schemas.ValidateDocument(embedded.DegreeProgram, data); err != nil {
		return nil, err
	}

	top, err := orderedjson.Members(data)
	if err != nil {
		return nil, err
	}

	var major json.RawMessage
	for _, m := range top {
		if m.Key != "Major" {
			continue
		}
		if major != nil {
			log.Printf("[catalog] %s: ignoring repeated Major section", name)
			continue
		}
		major = m.Value
	}
	if major == nil {
		return nil, fmt.Errorf("program %q has no Major section", name)
	}

	members, err := orderedjson.Members(major)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", name, err)
	}

	program := &types.DegreeProgram{
		Name:       name,
		Categories: make([]types.RequirementCategory, 0, len(members)),
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.Key] {
			log.Printf("[catalog] %s: ignoring repeated category %q", name, m.Key)
			continue
		}
		seen[m.Key] = true

		category, ok := parseCategory(m.Key, m.Value)
		if !ok {
			log.Printf("[catalog] %s: skipping malformed category %q", name, m.Key)
			continue
		}
		program.Categories = append(program.Categories, category)
	}

	return program, nil
}

func parseCategory(name string, data json.RawMessage) (types.RequirementCategory, bool) {
	var raw rawCategory
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.RequirementCategory{}, false
	}
	if raw.List == nil || raw.Units == nil || *raw.Units < 0 {
		return types.RequirementCategory{}, false
	}

	list := make([]types.CourseCode, 0, len(*raw.List))
	for _, code := range *raw.List {
		if normalized := courses.NormalizeCode(code); !normalized.IsZero() {
			list = append(list, normalized)
		}
	}

	return types.RequirementCategory{
		Name:    name,
		Courses: list,
		Units:   *raw.Units,
	}, true
}
