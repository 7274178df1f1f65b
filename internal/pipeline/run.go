// Package pipeline runs one submission end to end: normalize the course
// list, resolve outstanding requirements, then assemble the prerequisite
// graph.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jonathan/coursemate/internal/courses"
	"github.com/jonathan/coursemate/internal/graph"
	"github.com/jonathan/coursemate/internal/observability"
	"github.com/jonathan/coursemate/internal/pipeline/steps"
	"github.com/jonathan/coursemate/internal/prereq"
	"github.com/jonathan/coursemate/internal/requirements"
	"github.com/jonathan/coursemate/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step         string `json:"step"`
	Category     string `json:"category"`
	Message      string `json:"message"`
	SubmissionID string `json:"submission_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// ProgramSource looks up degree programs by name. Unknown names return nil.
type ProgramSource interface {
	Program(name string) *types.DegreeProgram
}

// Request is one submission plus how to report on it.
type Request struct {
	types.ResolveRequest

	// Printer, when set, receives box-formatted summaries of each step.
	Printer    *observability.Printer
	OnProgress ProgressCallback
}

// Result is everything a submission produces.
type Result struct {
	SubmissionID uuid.UUID
	Program      string
	Completed    types.CompletedCourses
	Outstanding  types.OutstandingRequirements
	Graph        types.Graph
}

// Response converts the result to its wire form.
func (r *Result) Response() types.ResolveResponse {
	return types.ResolveResponse{
		SubmissionID: r.SubmissionID.String(),
		Program:      r.Program,
		Completed:    r.Completed.Codes(),
		Outstanding:  r.Outstanding,
		Nodes:        r.Graph.Nodes,
		Edges:        r.Graph.Edges,
	}
}

// run carries per-submission state between steps.
type run struct {
	id      uuid.UUID
	req     *Request
	tracker *steps.Tracker
}

func (r *run) begin(step, message string) error {
	index, total, err := r.tracker.Begin(step)
	if err != nil {
		return err
	}
	log.Printf("[pipeline] %s step %d/%d: %s", r.id, index, total, message)
	return nil
}

func (r *run) complete(step, message string) {
	r.tracker.Complete(step)
	if r.req.OnProgress != nil {
		r.req.OnProgress(ProgressEvent{
			Step:         step,
			Category:     steps.StepRegistry[step].Category,
			Message:      message,
			SubmissionID: r.id.String(),
		})
	}
}

// Run resolves one submission. An unknown program is not an error: it
// resolves to no outstanding requirements. Lookup failures only remove
// edges from the graph.
func Run(ctx context.Context, programs ProgramSource, lookup prereq.Lookuper, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	var enabled []string
	if req.Dedupe {
		enabled = append(enabled, steps.DedupeGraph)
	}
	r := &run{
		id:      uuid.New(),
		req:     &req,
		tracker: steps.NewTracker(steps.Plan(enabled...)),
	}
	result := &Result{SubmissionID: r.id, Program: req.Program}

	if err := r.begin(steps.NormalizeCourses, "normalizing completed courses"); err != nil {
		return nil, err
	}
	result.Completed = courses.Normalize(req.Courses)
	if req.Printer != nil {
		req.Printer.PrintCompleted(req.Program, result.Completed)
	}
	r.complete(steps.NormalizeCourses, fmt.Sprintf("Normalized %d completed courses", result.Completed.Len()))

	if err := r.begin(steps.ResolveRequirements, fmt.Sprintf("resolving requirements for %q", req.Program)); err != nil {
		return nil, err
	}
	program := programs.Program(req.Program)
	if program == nil {
		log.Printf("[pipeline] %s unknown program %q, nothing to resolve", r.id, req.Program)
	}
	result.Outstanding = requirements.Resolve(program, result.Completed)
	if req.Printer != nil {
		req.Printer.PrintOutstanding(result.Outstanding)
	}
	r.complete(steps.ResolveRequirements, fmt.Sprintf("%d categories outstanding", len(result.Outstanding)))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("submission cancelled: %w", err)
	}

	if err := r.begin(steps.AssembleGraph, "assembling prerequisite graph"); err != nil {
		return nil, err
	}
	result.Graph = graph.Assemble(ctx, result.Outstanding, result.Completed, lookup, graph.WithConcurrency(req.Concurrency))
	r.complete(steps.AssembleGraph, fmt.Sprintf("Assembled %d nodes and %d edges", len(result.Graph.Nodes), len(result.Graph.Edges)))

	if req.Dedupe {
		if err := r.begin(steps.DedupeGraph, "deduplicating graph nodes and edges"); err != nil {
			return nil, err
		}
		result.Graph = graph.DedupeEdges(graph.Dedupe(result.Graph))
		r.complete(steps.DedupeGraph, fmt.Sprintf("Kept %d distinct nodes and %d distinct edges", len(result.Graph.Nodes), len(result.Graph.Edges)))
	}

	if req.Printer != nil {
		req.Printer.PrintGraphSummary(result.Graph)
	}
	return result, nil
}
