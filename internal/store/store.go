package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel lookup errors shared by all Store implementations.
var (
	ErrRuleNotFound   = errors.New("rule not found")
	ErrAPIKeyNotFound = errors.New("api key not found")
)

// Store defines the interface for comp-rule persistence operations.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// GetAllRules retrieves all rules for the given environment.
	// Returns an empty slice if no rules are found.
	GetAllRules(ctx context.Context, env string) ([]Rule, error)

	// GetRuleByName retrieves a single rule by its name.
	// Returns ErrRuleNotFound if the rule does not exist.
	GetRuleByName(ctx context.Context, name string) (*Rule, error)

	// UpsertRule creates or updates a rule.
	// If a rule with the same name exists, it will be updated.
	UpsertRule(ctx context.Context, params UpsertParams) error

	// DeleteRule removes a rule by name and environment.
	// Returns no error if the rule doesn't exist (idempotent).
	DeleteRule(ctx context.Context, name, env string) error

	// ListAPIKeys retrieves all API keys, revoked ones included.
	ListAPIKeys(ctx context.Context) ([]APIKey, error)

	// CreateAPIKey stores a new API key record and returns it.
	CreateAPIKey(ctx context.Context, params CreateAPIKeyParams) (APIKey, error)

	// RevokeAPIKey disables an API key by ID.
	// Returns ErrAPIKeyNotFound if no key has that ID.
	RevokeAPIKey(ctx context.Context, id string) error

	// UpdateAPIKeyLastUsed stamps the key's last_used_at with the current time.
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	// After Close is called, the store should not be used.
	Close() error
}

// Rule represents a comp reward rule with all its attributes.
// Criteria holds the raw rule-criteria expression; it is validated by
// extraction before a rule is admitted, so stored criteria always extract.
type Rule struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Criteria    string    `json:"criteria"`
	Benefit     string    `json:"benefit,omitempty"`
	Enabled     bool      `json:"enabled"`
	Env         string    `json:"env"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpsertParams contains the parameters for upserting a rule.
type UpsertParams struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
	Benefit     string `json:"benefit,omitempty"`
	Enabled     bool   `json:"enabled"`
	Env         string `json:"env"`
}

// APIKey is a stored API-key record. The plaintext key is never stored;
// KeyHash holds its bcrypt hash.
type APIKey struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	KeyHash    string     `json:"-"`
	Role       string     `json:"role"`
	Enabled    bool       `json:"enabled"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// CreateAPIKeyParams contains the parameters for creating an API key.
type CreateAPIKeyParams struct {
	ID      string
	Name    string
	KeyHash string
	Role    string
}
