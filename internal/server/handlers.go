package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/coursemate/internal/courses"
	"github.com/jonathan/coursemate/internal/observability"
	"github.com/jonathan/coursemate/internal/pipeline"
	"github.com/jonathan/coursemate/internal/types"
)

// maxRequestBytes caps the size of a submission body.
const maxRequestBytes = 64 << 10

// ProgramsResponse is the body of GET /programs.
type ProgramsResponse struct {
	Programs []string `json:"programs"`
}

// PrerequisitesResponse is the body of GET /api/{course}.
type PrerequisitesResponse struct {
	Courses any `json:"courses"`
}

// decodeResolveRequest reads and validates a submission body. The program
// must be present and known to the catalog.
func (s *Server) decodeResolveRequest(r *http.Request) (types.ResolveRequest, error) {
	var req types.ResolveRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		return req, &ErrValidation{Field: "body", Message: "Invalid request body: " + err.Error()}
	}

	if req.Program == "" {
		return req, &ErrValidation{Field: "program", Message: "Please select a program."}
	}
	if !s.catalog.Has(req.Program) {
		return req, &ErrValidation{Field: "program", Message: "Unknown program: " + req.Program}
	}
	if err := req.Validate(); err != nil {
		return req, err
	}

	if req.Concurrency == 0 {
		req.Concurrency = s.concurrency
	}
	return req, nil
}

// runSubmission runs the pipeline and records metrics.
func (s *Server) runSubmission(r *http.Request, req pipeline.Request) (*pipeline.Result, error) {
	start := time.Now()
	result, err := pipeline.Run(r.Context(), s.catalog, s.lookup, req)
	if err != nil {
		s.metrics.ObserveSubmission(req.Program, observability.SubmissionError, time.Since(start), nil, types.Graph{})
		return nil, err
	}
	s.metrics.ObserveSubmission(req.Program, observability.SubmissionOK, time.Since(start), result.Outstanding, result.Graph)
	return result, nil
}

// handleResolve resolves one submission and returns the outstanding
// requirements with the prerequisite graph.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeResolveRequest(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), validationMessage(err))
		return
	}

	result, err := s.runSubmission(r, pipeline.Request{ResolveRequest: req})
	if err != nil {
		log.Printf("[server] resolve failed for %q: %v", req.Program, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to resolve requirements")
		return
	}

	s.jsonResponse(w, http.StatusOK, result.Response())
}

// handleResolveStream resolves one submission, streaming a "step" event per
// pipeline step and a final "result" event.
func (s *Server) handleResolveStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeResolveRequest(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), validationMessage(err))
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.runSubmission(r, pipeline.Request{
		ResolveRequest: req,
		OnProgress: func(event pipeline.ProgressEvent) {
			if err := sse.WriteEvent("step", event); err != nil {
				log.Printf("[server] error writing SSE event: %v", err)
			}
		},
	})
	if err != nil {
		log.Printf("[server] streaming resolve failed for %q: %v", req.Program, err)
		sse.WriteError("Failed to resolve requirements")
		return
	}

	if err := sse.WriteEvent("result", result.Response()); err != nil {
		log.Printf("[server] error writing SSE result: %v", err)
		return
	}
	sse.WriteComplete(result.SubmissionID.String(), "completed")
}

// handleListPrograms returns the catalog's program names in order.
func (s *Server) handleListPrograms(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, ProgramsResponse{Programs: s.catalog.Names()})
}

// handleGetProgram returns the categories of one program.
func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	program := s.catalog.Program(name)
	if program == nil {
		err := &ErrProgramNotFound{Name: name}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, program)
}

// handlePrerequisites serves the grouped prerequisites of a course. Unknown
// courses get an empty list, not a 404.
func (s *Server) handlePrerequisites(w http.ResponseWriter, r *http.Request) {
	course := courses.NormalizeCode(r.PathValue("course"))
	if course.IsZero() {
		err := &ErrValidation{Field: "course", Message: "Course code is required"}
		s.errorResponse(w, HTTPStatus(err), err.Message)
		return
	}

	groups, err := s.source.Prerequisites(r.Context(), course)
	if err != nil {
		err = &ErrSourceUnavailable{Course: course.String(), Cause: err}
		log.Printf("[server] %v", err)
		s.errorResponse(w, HTTPStatus(err), "Prerequisite data is unavailable")
		return
	}

	if len(groups) == 0 {
		s.jsonResponse(w, http.StatusOK, PrerequisitesResponse{Courses: []types.CourseCode{}})
		return
	}
	s.jsonResponse(w, http.StatusOK, PrerequisitesResponse{Courses: groups})
}
