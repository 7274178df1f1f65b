package types

import "github.com/go-playground/validator/v10"

// ResolveRequest is a single form submission: a program selection and the
// free-text list of completed courses.
type ResolveRequest struct {
	Program     string `json:"program" validate:"required"`
	Courses     string `json:"courses"`
	Dedupe      bool   `json:"dedupe,omitempty"`
	Concurrency int    `json:"concurrency,omitempty" validate:"gte=0,lte=32"`
}

// Validate validates the ResolveRequest using the validator.
func (r *ResolveRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ResolveResponse is the result of a submission.
type ResolveResponse struct {
	SubmissionID string                  `json:"submission_id"`
	Program      string                  `json:"program"`
	Completed    []CourseCode            `json:"completed"`
	Outstanding  OutstandingRequirements `json:"outstanding"`
	Nodes        []GraphNode             `json:"nodes"`
	Edges        []PrerequisiteEdge      `json:"edges"`
}
