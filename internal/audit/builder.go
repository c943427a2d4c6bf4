package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"comprules/internal/auth"
)

// EventBuilder provides a fluent API for constructing audit events.
//
// Usage:
//
//	event := audit.NewEventBuilder(r).
//		ForResource(audit.ResourceTypeRule, name).
//		WithAction(audit.ActionUpdated).
//		WithAfterState(state).
//		Build()
//	service.Log(event)
type EventBuilder struct {
	event Event
}

// NewEventBuilder creates a builder initialized from the HTTP request:
// request ID, actor (API key from context or system), and source address.
func NewEventBuilder(r *http.Request) *EventBuilder {
	actor := Actor{Kind: ActorKindSystem, Display: "system"}
	if keyID, ok := auth.GetAPIKeyIDFromContext(r.Context()); ok && keyID != "" {
		id := keyID
		display := "api_key:" + keyID
		if len(keyID) >= 8 {
			display = "api_key:" + keyID[:8]
		}
		actor = Actor{Kind: ActorKindAPIKey, ID: &id, Display: display}
	}

	return &EventBuilder{
		event: Event{
			RequestID: middleware.GetReqID(r.Context()),
			Actor:     actor,
			Status:    StatusSuccess,
		},
	}
}

// ForResource sets the resource type and ID for the event.
func (b *EventBuilder) ForResource(resourceType, resourceID string) *EventBuilder {
	b.event.ResourceType = resourceType
	b.event.ResourceID = resourceID
	return b
}

// WithAction sets the action for the event (created, updated, deleted...).
func (b *EventBuilder) WithAction(action string) *EventBuilder {
	b.event.Action = action
	return b
}

// WithEnvironment sets the environment for the event.
func (b *EventBuilder) WithEnvironment(env string) *EventBuilder {
	b.event.Environment = env
	return b
}

// WithBeforeState sets the before state for the event.
func (b *EventBuilder) WithBeforeState(state map[string]any) *EventBuilder {
	b.event.BeforeState = state
	return b
}

// WithAfterState sets the after state for the event.
func (b *EventBuilder) WithAfterState(state map[string]any) *EventBuilder {
	b.event.AfterState = state
	return b
}

// Failure marks the event as failed with an error message.
func (b *EventBuilder) Failure(errorMsg string) *EventBuilder {
	b.event.Status = StatusFailure
	b.event.ErrorMessage = errorMsg
	return b
}

// Build returns the constructed Event, ready for service.Log.
func (b *EventBuilder) Build() Event {
	return b.event
}
