package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"comprules/internal/criteria"
	"comprules/internal/store"
	"comprules/internal/telemetry"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ruleState flattens a rule for audit and webhook payloads.
func ruleState(rule *store.Rule) map[string]any {
	if rule == nil {
		return nil
	}
	return map[string]any{
		"name":        rule.Name,
		"description": rule.Description,
		"criteria":    rule.Criteria,
		"benefit":     rule.Benefit,
		"enabled":     rule.Enabled,
		"env":         rule.Env,
	}
}

// extractionErrorCode maps a criteria parse error to its API error code.
func extractionErrorCode(err error) ErrorCode {
	var parseErr *criteria.ParseError
	if errors.As(err, &parseErr) {
		switch parseErr.Kind {
		case criteria.KindMissingProperty:
			return ErrCodeMissingProperty
		case criteria.KindUnbalancedGroup:
			return ErrCodeUnbalancedGroup
		}
	}
	return ErrCodeInvalidCriteria
}

// countExtraction records an extraction attempt outcome.
func countExtraction(err error) {
	switch {
	case err == nil:
		telemetry.Extractions.WithLabelValues("ok").Inc()
	case errors.Is(err, criteria.ErrMissingProperty):
		telemetry.Extractions.WithLabelValues("missing_property").Inc()
	case errors.Is(err, criteria.ErrUnbalancedGroup):
		telemetry.Extractions.WithLabelValues("unbalanced_group").Inc()
	default:
		telemetry.Extractions.WithLabelValues("error").Inc()
	}
}
