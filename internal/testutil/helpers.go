// Package testutil provides shared helpers for HTTP-level tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"comprules/internal/api"
	"comprules/internal/audit"
	"comprules/internal/auth"
	"comprules/internal/store"
)

// NewTestServer creates an API server with an in-memory store, a legacy
// admin key, and a log audit sink.
func NewTestServer(t *testing.T, env, adminKey string) (*api.Server, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	authenticator := auth.NewAuthenticator(memStore, adminKey)
	server := api.NewServer(memStore, env, authenticator, nil, audit.NewService(audit.LogSink{}), 1000)
	return server, memStore
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// SeedRules populates the store with test rules.
func SeedRules(ctx context.Context, st store.Store, rules []store.UpsertParams) error {
	for _, r := range rules {
		if err := st.UpsertRule(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
