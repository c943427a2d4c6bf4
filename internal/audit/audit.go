// Package audit records who changed which comp rule or API key, with
// before/after state, for compliance review. Events are written through a
// pluggable sink; the default sink emits structured log lines.
package audit

import (
	"time"
)

// Action constants for audit logging
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionRevoked   = "revoked"
	ActionExtracted = "extracted"
)

// ResourceType constants for audit logging
const (
	ResourceTypeRule   = "rule"
	ResourceTypeAPIKey = "api_key"
)

// Status constants for audit logging
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// ActorKind constants for audit logging
const (
	ActorKindAPIKey = "api_key"
	ActorKindSystem = "system"
)

// Actor represents who performed the action.
type Actor struct {
	Kind    string  `json:"kind"` // api_key, system
	ID      *string `json:"id,omitempty"`
	Display string  `json:"display"`
}

// Source describes where the request came from.
type Source struct {
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// Event is a single audit record.
type Event struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	RequestID    string         `json:"requestId,omitempty"`
	Actor        Actor          `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resourceType"`
	ResourceID   string         `json:"resourceId"`
	Environment  string         `json:"environment,omitempty"`
	BeforeState  map[string]any `json:"beforeState,omitempty"`
	AfterState   map[string]any `json:"afterState,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// Redactor removes sensitive values from state maps before they are sunk.
type Redactor struct {
	sensitiveKeys map[string]bool
}

// NewRedactor creates a redactor for the usual credential-shaped keys.
func NewRedactor() *Redactor {
	keys := []string{"password", "secret", "token", "api_key", "key_hash", "authorization"}
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return &Redactor{sensitiveKeys: m}
}

// Redact returns a copy of data with sensitive values replaced. Nested
// maps are redacted recursively.
func (r *Redactor) Redact(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	redacted := make(map[string]any, len(data))
	for k, v := range data {
		switch {
		case r.sensitiveKeys[k]:
			redacted[k] = "[REDACTED]"
		default:
			if nested, ok := v.(map[string]any); ok {
				redacted[k] = r.Redact(nested)
			} else {
				redacted[k] = v
			}
		}
	}
	return redacted
}
