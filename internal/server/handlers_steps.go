package server

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/jonathan/coursemate/internal/pipeline/steps"
)

// StepInfo describes one pipeline step a submission goes through.
type StepInfo struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Dependencies []string `json:"dependencies"`
	Optional     bool     `json:"optional"`
}

// StepsResponse lists the steps a submission would run, in order.
type StepsResponse struct {
	Steps []StepInfo `json:"steps"`
}

// handleListSteps handles GET /steps. ?dedupe=true includes the optional
// dedupe step, matching what POST /resolve runs for that flag.
func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	var enabled []string
	if raw := r.URL.Query().Get("dedupe"); raw != "" {
		dedupe, err := strconv.ParseBool(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid dedupe value: "+raw)
			return
		}
		if dedupe {
			enabled = append(enabled, steps.DedupeGraph)
		}
	}

	plan := steps.Plan(enabled...)
	resp := StepsResponse{Steps: make([]StepInfo, 0, len(plan))}
	for _, name := range plan {
		def := steps.StepRegistry[name]
		resp.Steps = append(resp.Steps, StepInfo{
			Name:         def.Name,
			Category:     def.Category,
			Dependencies: slices.Clone(def.Dependencies),
			Optional:     def.Optional,
		})
	}
	s.jsonResponse(w, http.StatusOK, resp)
}
