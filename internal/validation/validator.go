// Package validation provides validation rules for comp-rule data and
// request parameters.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"comprules/internal/benefit"
	"comprules/internal/criteria"
)

const (
	// MaxNameLength is the maximum length for rule names
	MaxNameLength = 64
	// MaxEnvLength is the maximum length for environment names
	MaxEnvLength = 32
	// MaxDescriptionLength is the maximum length for rule descriptions
	MaxDescriptionLength = 500
	// MaxCriteriaLength is the maximum length for criteria expressions
	MaxCriteriaLength = 4096
	// MaxBenefitLength is the maximum length for benefit formulas
	MaxBenefitLength = 1024
)

// namePattern matches alphanumeric characters, underscores, and hyphens
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidationResult holds the result of validation
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:  true,
		Errors: make(map[string]string),
	}
}

// AddError adds a field error and marks the result as invalid
func (v *ValidationResult) AddError(field, message string) {
	v.Valid = false
	v.Errors[field] = message
}

// Merge combines another validation result into this one
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for field, message := range other.Errors {
		v.AddError(field, message)
	}
}

// RuleValidationParams contains the parameters for validating a rule.
type RuleValidationParams struct {
	Name        string
	Env         string
	Description string
	Criteria    string
	Benefit     string
}

// ValidateRule validates all rule fields and returns a merged result.
// Criteria must extract successfully; the benefit formula, when present,
// must parse.
func ValidateRule(params RuleValidationParams) *ValidationResult {
	result := NewValidationResult()
	result.Merge(ValidateName(params.Name))
	result.Merge(ValidateEnv(params.Env))
	result.Merge(ValidateDescription(params.Description))
	result.Merge(ValidateCriteria(params.Criteria))
	result.Merge(ValidateBenefit(params.Benefit))
	return result
}

// ValidateName validates a rule name.
func ValidateName(name string) *ValidationResult {
	result := NewValidationResult()
	if name == "" {
		result.AddError("name", "name is required")
		return result
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		result.AddError("name", fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if !namePattern.MatchString(name) {
		result.AddError("name", "name may only contain letters, digits, underscores, and hyphens")
	}
	return result
}

// ValidateEnv validates an environment name.
func ValidateEnv(env string) *ValidationResult {
	result := NewValidationResult()
	if env == "" {
		result.AddError("env", "env is required")
		return result
	}
	if utf8.RuneCountInString(env) > MaxEnvLength {
		result.AddError("env", fmt.Sprintf("env must be at most %d characters", MaxEnvLength))
	}
	if !namePattern.MatchString(env) {
		result.AddError("env", "env may only contain letters, digits, underscores, and hyphens")
	}
	return result
}

// ValidateDescription validates a rule description.
func ValidateDescription(description string) *ValidationResult {
	result := NewValidationResult()
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		result.AddError("description", fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	return result
}

// ValidateCriteria checks that a criteria expression extracts successfully.
// A rule whose criteria cannot be extracted would be useless to every
// downstream consumer, so it is rejected at the door.
func ValidateCriteria(ruleCriteria string) *ValidationResult {
	result := NewValidationResult()
	if ruleCriteria == "" {
		result.AddError("criteria", "criteria is required")
		return result
	}
	if len(ruleCriteria) > MaxCriteriaLength {
		result.AddError("criteria", fmt.Sprintf("criteria must be at most %d bytes", MaxCriteriaLength))
		return result
	}

	if _, err := criteria.Extract(ruleCriteria); err != nil {
		var parseErr *criteria.ParseError
		if errors.As(err, &parseErr) {
			result.AddError("criteria", parseErr.Message)
		} else {
			result.AddError("criteria", "criteria cannot be extracted")
		}
	}
	return result
}

// ValidateBenefit checks that a benefit formula parses. Benefit is
// optional: empty means the rule carries no formula.
func ValidateBenefit(benefitFormula string) *ValidationResult {
	result := NewValidationResult()
	if benefitFormula == "" {
		return result
	}
	if len(benefitFormula) > MaxBenefitLength {
		result.AddError("benefit", fmt.Sprintf("benefit must be at most %d bytes", MaxBenefitLength))
		return result
	}
	if _, err := benefit.Parse(benefitFormula); err != nil {
		result.AddError("benefit", "benefit formula is not valid")
	}
	return result
}
