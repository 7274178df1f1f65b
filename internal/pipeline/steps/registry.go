// Package steps defines the submission pipeline steps and their dependencies.
package steps

import (
	"fmt"
	"sort"
)

// Step names.
const (
	NormalizeCourses    = "normalize_courses"
	ResolveRequirements = "resolve_requirements"
	AssembleGraph       = "assemble_graph"
	DedupeGraph         = "dedupe_graph"
)

// Step categories, used to group progress events.
const (
	CategoryInput        = "input"
	CategoryRequirements = "requirements"
	CategoryGraph        = "graph"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	// Optional steps only run when the submission asks for them.
	Optional bool
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	NormalizeCourses: {
		Name:         NormalizeCourses,
		Category:     CategoryInput,
		Dependencies: []string{},
	},
	ResolveRequirements: {
		Name:         ResolveRequirements,
		Category:     CategoryRequirements,
		Dependencies: []string{NormalizeCourses},
	},
	AssembleGraph: {
		Name:         AssembleGraph,
		Category:     CategoryGraph,
		Dependencies: []string{NormalizeCourses, ResolveRequirements},
	},
	DedupeGraph: {
		Name:         DedupeGraph,
		Category:     CategoryGraph,
		Dependencies: []string{AssembleGraph},
		Optional:     true,
	},
}

// executionOrder lists every step in an order that satisfies dependencies.
var executionOrder = []string{NormalizeCourses, ResolveRequirements, AssembleGraph, DedupeGraph}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Plan returns the steps to run, in order. Optional steps are included only
// when named in enabled.
func Plan(enabled ...string) []string {
	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		want[name] = true
	}

	var plan []string
	for _, name := range executionOrder {
		if StepRegistry[name].Optional && !want[name] {
			continue
		}
		plan = append(plan, name)
	}
	return plan
}

// ValidateDependencies checks that every dependency of stepName is in done.
func ValidateDependencies(done map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !done[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// Tracker records completed steps for one submission and numbers them for
// progress output.
type Tracker struct {
	plan []string
	done map[string]bool
}

// NewTracker creates a tracker for the given plan.
func NewTracker(plan []string) *Tracker {
	return &Tracker{plan: plan, done: make(map[string]bool, len(plan))}
}

// Begin checks dependencies for stepName and returns its 1-based position
// in the plan together with the plan length.
func (t *Tracker) Begin(stepName string) (index, total int, err error) {
	if err := ValidateDependencies(t.done, stepName); err != nil {
		return 0, 0, err
	}
	for i, name := range t.plan {
		if name == stepName {
			return i + 1, len(t.plan), nil
		}
	}
	return 0, 0, fmt.Errorf("step %s is not in the plan", stepName)
}

// Complete marks stepName as done.
func (t *Tracker) Complete(stepName string) {
	t.done[stepName] = true
}

// Completed returns the finished steps, sorted by name.
func (t *Tracker) Completed() []string {
	out := make([]string, 0, len(t.done))
	for name := range t.done {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
