// Package webhook delivers rule-change events to the registered downstream
// renderer endpoints (the marketing-copy generator, the PDF/video
// pipeline) so they can regenerate assets without polling the snapshot.
package webhook

import (
	"time"
)

// Event types that can trigger webhooks
const (
	EventRuleCreated = "rule.created"
	EventRuleUpdated = "rule.updated"
	EventRuleDeleted = "rule.deleted"
)

// Event represents a rule change sent to subscribed endpoints.
type Event struct {
	Type        string    `json:"event"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Resource    Resource  `json:"resource"`
	Data        EventData `json:"data"`
	Metadata    Metadata  `json:"metadata"`
}

// Resource identifies the resource that triggered the event.
type Resource struct {
	Type string `json:"type"` // e.g. "rule"
	Name string `json:"name"`
}

// EventData contains the before/after state of the rule.
type EventData struct {
	Before map[string]any `json:"before,omitempty"`
	After  map[string]any `json:"after,omitempty"`
}

// Metadata contains additional context about the event.
type Metadata struct {
	APIKeyID  string `json:"apiKeyId,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Endpoint is a configured webhook destination. Endpoints are declared in
// the webhook config file, not stored in the database: the set of
// downstream renderers changes with deployments, not at runtime.
type Endpoint struct {
	Name           string   `yaml:"name"`
	URL            string   `yaml:"url"`
	Secret         string   `yaml:"secret"`
	Events         []string `yaml:"events"`
	Environments   []string `yaml:"environments,omitempty"`
	TimeoutSeconds int      `yaml:"timeoutSeconds,omitempty"`
	MaxRetries     int      `yaml:"maxRetries,omitempty"`
}
