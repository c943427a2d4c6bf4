package webhook

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"comprules/internal/auth"
)

// EventBuilder provides a fluent API for constructing webhook events.
//
// Usage:
//
//	event := webhook.NewEventBuilder(r).
//		ForRule(name, env).
//		WithStates(before, after).
//		Build()
//	dispatcher.Dispatch(event)
type EventBuilder struct {
	event Event
}

// NewEventBuilder creates a builder initialized with request context:
// request ID, caller IP, and API key ID.
func NewEventBuilder(r *http.Request) *EventBuilder {
	metadata := Metadata{
		RequestID: middleware.GetReqID(r.Context()),
		IPAddress: auth.GetIPAddress(r),
	}
	if keyID, ok := auth.GetAPIKeyIDFromContext(r.Context()); ok {
		metadata.APIKeyID = keyID
	}

	return &EventBuilder{
		event: Event{
			Timestamp: time.Now().UTC(),
			Metadata:  metadata,
		},
	}
}

// ForRule sets the resource to a rule with the given name and environment.
func (b *EventBuilder) ForRule(name, env string) *EventBuilder {
	b.event.Resource = Resource{Type: "rule", Name: name}
	b.event.Environment = env
	return b
}

// WithStates sets the before and after states and derives the event type:
//   - before=nil, after!=nil → created
//   - before!=nil, after=nil → deleted
//   - both non-nil → updated
func (b *EventBuilder) WithStates(before, after map[string]any) *EventBuilder {
	b.event.Data.Before = before
	b.event.Data.After = after

	switch {
	case before == nil && after != nil:
		b.event.Type = EventRuleCreated
	case before != nil && after == nil:
		b.event.Type = EventRuleDeleted
	case before != nil && after != nil:
		b.event.Type = EventRuleUpdated
	}
	return b
}

// Build returns the constructed Event.
func (b *EventBuilder) Build() Event {
	return b.event
}
