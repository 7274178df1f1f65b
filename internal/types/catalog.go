package types

// RequirementCategory is one requirement bucket of a degree program: a list of
// eligible courses and the number of units that must be earned from it.
type RequirementCategory struct {
	Name    string       `json:"name"`
	Courses []CourseCode `json:"list"`
	Units   int          `json:"units"`
}

// DegreeProgram is a named, ordered collection of requirement categories.
// Programs are loaded once and never mutated.
type DegreeProgram struct {
	Name       string                `json:"name"`
	Categories []RequirementCategory `json:"categories"`
}

// Category returns the category with the given name, or nil.
func (p *DegreeProgram) Category(name string) *RequirementCategory {
	if p == nil {
		return nil
	}
	for i := range p.Categories {
		if p.Categories[i].Name == name {
			return &p.Categories[i]
		}
	}
	return nil
}
