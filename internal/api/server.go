// Package api implements the HTTP surface of the comp-rules service:
// rule CRUD, stateless criteria extraction, the downstream snapshot with
// SSE change notifications, eligibility previews, prompt rendering, and
// API-key management.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"comprules/internal/audit"
	"comprules/internal/auth"
	"comprules/internal/snapshot"
	"comprules/internal/store"
	"comprules/internal/telemetry"
	"comprules/internal/webhook"
)

// Server carries the dependencies of all HTTP handlers.
type Server struct {
	store          store.Store
	env            string
	authenticator  *auth.Authenticator
	dispatcher     *webhook.Dispatcher
	audit          *audit.Service
	rateLimitPerIP int
}

// NewServer creates an API server over the given store. The dispatcher
// may be nil when no webhooks are configured.
func NewServer(s store.Store, env string, authenticator *auth.Authenticator, dispatcher *webhook.Dispatcher, auditService *audit.Service, rateLimitPerIP int) *Server {
	if auditService == nil {
		auditService = audit.NewService(audit.LogSink{})
	}
	if rateLimitPerIP <= 0 {
		rateLimitPerIP = 100
	}
	return &Server{
		store:          s,
		env:            env,
		authenticator:  authenticator,
		dispatcher:     dispatcher,
		audit:          auditService,
		rateLimitPerIP: rateLimitPerIP,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(telemetry.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public: extraction, rate-limited per caller IP
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.rateLimitPerIP, time.Minute))
		r.Post("/v1/extract", s.handleExtract)
	})

	// public: snapshot + SSE stream for downstream consumers
	r.Get("/v1/rules/snapshot", s.handleSnapshot)
	r.Get("/v1/rules/stream", s.handleStream)

	// readonly: rule retrieval, prompt rendering, eligibility preview
	r.Group(func(r chi.Router) {
		r.Use(s.authenticator.RequireAuth(auth.RoleReadonly))
		r.Get("/v1/rules", s.handleListRules)
		r.Get("/v1/rules/{name}", s.handleGetRule)
		r.Get("/v1/rules/{name}/prompt", s.handleRulePrompt)
		r.Post("/v1/rules/{name}/eligibility", s.handleRuleEligibility)
	})

	// admin: rule mutations
	r.Group(func(r chi.Router) {
		r.Use(s.authenticator.RequireAuth(auth.RoleAdmin))
		r.Post("/v1/rules", s.handleUpsertRule)
		r.Delete("/v1/rules/{name}", s.handleDeleteRule)
	})

	// superadmin: API key management
	r.Group(func(r chi.Router) {
		r.Use(s.authenticator.RequireAuth(auth.RoleSuperadmin))
		r.Get("/v1/keys", s.handleListKeys)
		r.Post("/v1/keys", s.handleCreateKey)
		r.Delete("/v1/keys/{id}", s.handleRevokeKey)
	})

	return r
}

// RebuildSnapshot loads rules for the server's environment and swaps the
// atomic snapshot, updating the snapshot-size gauge.
func (s *Server) RebuildSnapshot(ctx context.Context) error {
	rules, err := s.store.GetAllRules(ctx, s.env)
	if err != nil {
		return err
	}
	snap := snapshot.BuildFromRules(rules)
	snapshot.Update(snap)
	telemetry.SnapshotRules.Set(float64(len(snap.Rules)))
	return nil
}

// dispatch forwards an event to the webhook dispatcher when configured.
func (s *Server) dispatch(event webhook.Event) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(event)
		telemetry.WebhookQueueDepth.Set(float64(s.dispatcher.QueueDepth()))
	}
}
