// Package requirements computes which degree requirements a student still
// has to satisfy.
package requirements

import "github.com/jonathan/coursemate/internal/types"

// Resolve returns the outstanding requirements of program given the completed
// courses, in catalog order.
//
// A category earns UnitsPerCourse for every completed course in its list.
// Categories whose earned units reach the required total are omitted. For the
// rest, the outstanding list walks the category in order, skips completed
// courses, and stops once the listed courses cover the remaining units. A
// course can count toward several categories at once.
//
// A nil program (unknown key) yields an empty result.
func Resolve(program *types.DegreeProgram, completed types.CompletedCourses) types.OutstandingRequirements {
	out := types.OutstandingRequirements{}
	if program == nil {
		return out
	}

	for _, category := range program.Categories {
		remaining := UnitsRemaining(category, completed)
		if remaining <= 0 {
			continue
		}

		out = append(out, types.OutstandingCategory{
			Category:       category.Name,
			UnitsRemaining: remaining,
			Courses:        needed(category.Courses, completed, remaining),
		})
	}

	return out
}

// UnitsRemaining returns the units still required in category. It may be
// zero or negative when the category is over-satisfied.
func UnitsRemaining(category types.RequirementCategory, completed types.CompletedCourses) int {
	earned := 0
	for _, code := range category.Courses {
		if completed.Contains(code) {
			earned += types.UnitsPerCourse
		}
	}
	return category.Units - earned
}

// needed picks uncompleted courses from list, in order, until they cover
// remaining units.
func needed(list []types.CourseCode, completed types.CompletedCourses, remaining int) []types.CourseCode {
	courses := []types.CourseCode{}
	covered := 0
	for _, code := range list {
		if covered >= remaining {
			break
		}
		if completed.Contains(code) {
			continue
		}
		courses = append(courses, code)
		covered += types.UnitsPerCourse
	}
	return courses
}
