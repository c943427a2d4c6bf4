package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"comprules/internal/audit"
	"comprules/internal/benefit"
	"comprules/internal/criteria"
	"comprules/internal/eligibility"
	"comprules/internal/script"
	"comprules/internal/snapshot"
	"comprules/internal/store"
	"comprules/internal/validation"
	"comprules/internal/webhook"
)

type upsertRuleRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Criteria    string  `json:"criteria"`
	Benefit     string  `json:"benefit,omitempty"`
	Enabled     bool    `json:"enabled"`
	Env         *string `json:"env,omitempty"` // defaults to the server env
}

type upsertRuleResponse struct {
	OK    bool           `json:"ok"`
	ETag  string         `json:"etag"`
	Facts criteria.Facts `json:"facts"`
}

// handleUpsertRule validates, persists, and publishes a rule change:
// field validation (criteria must extract, benefit must parse), store
// upsert, snapshot rebuild, audit record, webhook dispatch.
func (s *Server) handleUpsertRule(w http.ResponseWriter, r *http.Request) {
	var req upsertRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	env := s.env
	if req.Env != nil && strings.TrimSpace(*req.Env) != "" {
		env = strings.TrimSpace(*req.Env)
	}

	result := validation.ValidateRule(validation.RuleValidationParams{
		Name:        req.Name,
		Env:         env,
		Description: req.Description,
		Criteria:    req.Criteria,
		Benefit:     req.Benefit,
	})
	if !result.Valid {
		ValidationError(w, r, "rule is not valid", result.Errors)
		return
	}

	facts, err := criteria.Extract(req.Criteria)
	countExtraction(err)
	if err != nil {
		// Unreachable after validation, kept as a guard.
		UnprocessableError(w, r, extractionErrorCode(err), err.Error())
		return
	}

	before, err := s.store.GetRuleByName(r.Context(), req.Name)
	if err != nil && !errors.Is(err, store.ErrRuleNotFound) {
		InternalError(w, r, "rule lookup failed")
		return
	}

	params := store.UpsertParams{
		Name:        req.Name,
		Description: req.Description,
		Criteria:    req.Criteria,
		Benefit:     req.Benefit,
		Enabled:     req.Enabled,
		Env:         env,
	}
	if err := s.store.UpsertRule(r.Context(), params); err != nil {
		InternalError(w, r, "rule upsert failed")
		return
	}

	after, err := s.store.GetRuleByName(r.Context(), req.Name)
	if err != nil {
		InternalError(w, r, "rule readback failed")
		return
	}

	if err := s.RebuildSnapshot(r.Context()); err != nil {
		InternalError(w, r, "snapshot rebuild failed")
		return
	}

	action := audit.ActionUpdated
	if before == nil {
		action = audit.ActionCreated
	}
	s.audit.Log(r.Context(), audit.NewEventBuilder(r).
		ForResource(audit.ResourceTypeRule, req.Name).
		WithAction(action).
		WithEnvironment(env).
		WithBeforeState(ruleState(before)).
		WithAfterState(ruleState(after)).
		Build())

	s.dispatch(webhook.NewEventBuilder(r).
		ForRule(req.Name, env).
		WithStates(ruleState(before), ruleState(after)).
		Build())

	writeJSON(w, http.StatusOK, upsertRuleResponse{
		OK:    true,
		ETag:  snapshot.Load().ETag,
		Facts: facts,
	})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.GetAllRules(r.Context(), s.env)
	if err != nil {
		InternalError(w, r, "rule listing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.lookupRule(w, r)
	if !ok {
		return
	}

	facts, err := criteria.Extract(rule.Criteria)
	if err != nil {
		// Stored rules always extract; imported data may not.
		UnprocessableError(w, r, extractionErrorCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rule": rule, "facts": facts})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.lookupRule(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteRule(r.Context(), rule.Name, rule.Env); err != nil {
		InternalError(w, r, "rule delete failed")
		return
	}
	if err := s.RebuildSnapshot(r.Context()); err != nil {
		InternalError(w, r, "snapshot rebuild failed")
		return
	}

	s.audit.Log(r.Context(), audit.NewEventBuilder(r).
		ForResource(audit.ResourceTypeRule, rule.Name).
		WithAction(audit.ActionDeleted).
		WithEnvironment(rule.Env).
		WithBeforeState(ruleState(rule)).
		Build())

	s.dispatch(webhook.NewEventBuilder(r).
		ForRule(rule.Name, rule.Env).
		WithStates(ruleState(rule), nil).
		Build())

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "etag": snapshot.Load().ETag})
}

// handleRulePrompt renders the marketing prompt for a rule in the
// requested language (?language=, default English).
func (s *Server) handleRulePrompt(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.lookupRule(w, r)
	if !ok {
		return
	}

	facts, err := criteria.Extract(rule.Criteria)
	if err != nil {
		UnprocessableError(w, r, extractionErrorCode(err), err.Error())
		return
	}

	var parsed *benefit.Assignment
	if rule.Benefit != "" {
		if parsed, err = benefit.Parse(rule.Benefit); err != nil {
			UnprocessableError(w, r, ErrCodeInvalidBenefit, "stored benefit formula is not valid")
			return
		}
	}

	language := r.URL.Query().Get("language")
	statements := script.Statements(rule.Name, facts, parsed)
	prompt, err := script.BuildPrompt(language, script.RuleData(rule.Name, rule.Criteria, rule.Benefit), statements)
	if err != nil {
		InternalError(w, r, "prompt rendering failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rule_name":  rule.Name,
		"language":   language,
		"statements": statements,
		"prompt":     prompt,
	})
}

// handleRuleEligibility evaluates a player context against a rule.
func (s *Server) handleRuleEligibility(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.lookupRule(w, r)
	if !ok {
		return
	}

	var ctx eligibility.PlayerContext
	if err := json.NewDecoder(r.Body).Decode(&ctx); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	facts, err := criteria.Extract(rule.Criteria)
	if err != nil {
		UnprocessableError(w, r, extractionErrorCode(err), err.Error())
		return
	}

	eligible, err := eligibility.Evaluate(facts, ctx)
	if err != nil {
		InternalError(w, r, "eligibility evaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rule_name": rule.Name,
		"eligible":  eligible,
		"facts":     facts,
	})
}

// lookupRule fetches the {name} route parameter's rule, writing the error
// response on failure.
func (s *Server) lookupRule(w http.ResponseWriter, r *http.Request) (*store.Rule, bool) {
	name := chi.URLParam(r, "name")
	rule, err := s.store.GetRuleByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			NotFoundError(w, r, "rule not found")
		} else {
			InternalError(w, r, "rule lookup failed")
		}
		return nil, false
	}
	return rule, true
}
