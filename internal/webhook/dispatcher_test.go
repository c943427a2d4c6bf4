package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type receivedDelivery struct {
	event     Event
	signature string
	eventType string
}

func TestDispatcher_DeliversSignedEvent(t *testing.T) {
	var (
		mu       sync.Mutex
		received []receivedDelivery
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var ev Event
		_ = json.Unmarshal(body, &ev)
		if !VerifySignature(body, r.Header.Get("X-Comprules-Signature"), "s3cret") {
			t.Error("delivery signature does not verify")
		}
		mu.Lock()
		received = append(received, receivedDelivery{
			event:     ev,
			signature: r.Header.Get("X-Comprules-Signature"),
			eventType: r.Header.Get("X-Comprules-Event"),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Endpoint{{
		Name:           "renderer",
		URL:            srv.URL,
		Secret:         "s3cret",
		Events:         []string{EventRuleUpdated},
		TimeoutSeconds: 5,
	}})
	d.Start()

	d.Dispatch(Event{
		Type:        EventRuleUpdated,
		Timestamp:   time.Now().UTC(),
		Environment: "prod",
		Resource:    Resource{Type: "rule", Name: "comp-dollars"},
	})
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(received))
	}
	if received[0].eventType != EventRuleUpdated {
		t.Errorf("event header: got %s, want %s", received[0].eventType, EventRuleUpdated)
	}
	if received[0].event.Resource.Name != "comp-dollars" {
		t.Errorf("rule name: got %s", received[0].event.Resource.Name)
	}
}

func TestDispatcher_FiltersByEventAndEnv(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Endpoint{{
		Name:           "prod-only-creates",
		URL:            srv.URL,
		Secret:         "s",
		Events:         []string{EventRuleCreated},
		Environments:   []string{"prod"},
		TimeoutSeconds: 5,
	}})
	d.Start()

	d.Dispatch(Event{Type: EventRuleDeleted, Environment: "prod"})   // wrong event
	d.Dispatch(Event{Type: EventRuleCreated, Environment: "staging"}) // wrong env
	d.Dispatch(Event{Type: EventRuleCreated, Environment: "prod"})   // matches
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("expected exactly 1 delivery, got %d", count)
	}
}

func TestDispatcher_RetriesOnFailure(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Endpoint{{
		Name:           "flaky",
		URL:            srv.URL,
		Secret:         "s",
		Events:         []string{EventRuleUpdated},
		TimeoutSeconds: 5,
		MaxRetries:     2,
	}})
	d.Start()
	d.Dispatch(Event{Type: EventRuleUpdated, Environment: "prod"})
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("expected 2 attempts (one failure, one success), got %d", attempts)
	}
}

func TestLoadEndpoints(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webhooks.yaml")
	content := `endpoints:
  - name: pdf-renderer
    url: https://renderer.internal/hooks/rules
    secret: whsec_abc
    events: [rule.created, rule.updated]
    environments: [prod]
  - name: copy-generator
    url: https://copy.internal/hooks
    secret: whsec_def
    events: [rule.updated]
    timeoutSeconds: 3
    maxRetries: 1
  - name: no-retry
    url: https://flaky.internal/hooks
    secret: whsec_ghi
    events: [rule.deleted]
    maxRetries: 0
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	endpoints, err := LoadEndpoints(path)
	if err != nil {
		t.Fatalf("LoadEndpoints: %v", err)
	}
	if len(endpoints) != 3 {
		t.Fatalf("expected 3 endpoints, got %d", len(endpoints))
	}

	first := endpoints[0]
	if first.Name != "pdf-renderer" || len(first.Events) != 2 {
		t.Errorf("unexpected first endpoint: %+v", first)
	}
	if first.TimeoutSeconds != defaultTimeoutSeconds {
		t.Errorf("timeout default: got %d, want %d", first.TimeoutSeconds, defaultTimeoutSeconds)
	}
	if first.MaxRetries != defaultMaxRetries {
		t.Errorf("max retries default: got %d, want %d", first.MaxRetries, defaultMaxRetries)
	}

	second := endpoints[1]
	if second.TimeoutSeconds != 3 || second.MaxRetries != 1 {
		t.Errorf("explicit settings not honored: %+v", second)
	}

	// maxRetries: 0 is an explicit choice, not an unset value.
	third := endpoints[2]
	if third.MaxRetries != 0 {
		t.Errorf("explicit zero retries: got %d, want 0", third.MaxRetries)
	}
	if third.TimeoutSeconds != defaultTimeoutSeconds {
		t.Errorf("timeout default on third: got %d, want %d", third.TimeoutSeconds, defaultTimeoutSeconds)
	}
}

func TestLoadEndpoints_MissingFileIsEmpty(t *testing.T) {
	endpoints, err := LoadEndpoints(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadEndpoints: %v", err)
	}
	if len(endpoints) != 0 {
		t.Errorf("expected no endpoints, got %d", len(endpoints))
	}
}

func TestLoadEndpoints_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webhooks.yaml")
	if err := os.WriteFile(path, []byte("endpoints:\n  - name: broken\n    url: https://x\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadEndpoints(path); err == nil {
		t.Fatal("expected error for endpoint without events")
	}
}
