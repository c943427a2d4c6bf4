package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"comprules/internal/benefit"
	"comprules/internal/criteria"
)

// extractRequest is the stateless extraction input: a rule row as exported
// from the comp system. Only the criteria is required.
type extractRequest struct {
	RuleName     string `json:"rule_name"`
	RuleCriteria string `json:"rule_criteria"`
	Benefit      string `json:"benefit,omitempty"`
}

type extractResponse struct {
	RuleName string          `json:"rule_name,omitempty"`
	Facts    criteria.Facts  `json:"facts"`
	Benefit  *benefitSummary `json:"benefit,omitempty"`
}

type benefitSummary struct {
	Formula     string   `json:"formula"`
	Target      string   `json:"target"`
	Attributes  []string `json:"attributes"`
	Procedure   string   `json:"procedure,omitempty"`
	Description string   `json:"description"`
}

// handleExtract runs criteria extraction (and benefit parsing when a
// formula is supplied) without touching the store.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.RuleCriteria) == "" {
		BadRequestError(w, r, ErrCodeBadRequest, "rule_criteria is required")
		return
	}

	facts, err := criteria.Extract(req.RuleCriteria)
	countExtraction(err)
	if err != nil {
		UnprocessableError(w, r, extractionErrorCode(err), err.Error())
		return
	}

	resp := extractResponse{RuleName: req.RuleName, Facts: facts}
	if req.Benefit != "" {
		parsed, err := benefit.Parse(req.Benefit)
		if err != nil {
			UnprocessableError(w, r, ErrCodeInvalidBenefit, "benefit formula is not valid")
			return
		}
		resp.Benefit = &benefitSummary{
			Formula:     parsed.String(),
			Target:      parsed.Target,
			Attributes:  parsed.Vars(),
			Procedure:   parsed.Procedure,
			Description: parsed.Describe(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
