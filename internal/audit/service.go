package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

// Sink persists audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// LogSink writes audit events as single structured log lines. It is the
// default sink; deployments with retention requirements plug in their own.
type LogSink struct{}

func (LogSink) Write(_ context.Context, event Event) error {
	blob, err := json.Marshal(event)
	if err != nil {
		return err
	}
	log.Printf("[audit] %s", blob)
	return nil
}

// Service stamps, redacts, and sinks audit events.
type Service struct {
	sink     Sink
	redactor *Redactor
}

// NewService creates an audit service over the given sink.
func NewService(sink Sink) *Service {
	return &Service{sink: sink, redactor: NewRedactor()}
}

// Log completes and persists an event. Sink failures are logged, never
// propagated: auditing must not fail the mutation it describes.
func (s *Service) Log(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.BeforeState = s.redactor.Redact(event.BeforeState)
	event.AfterState = s.redactor.Redact(event.AfterState)

	if err := s.sink.Write(ctx, event); err != nil {
		log.Printf("[audit] failed to write event %s: %v", event.ID, err)
	}
}
