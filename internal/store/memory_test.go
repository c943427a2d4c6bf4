package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_RuleLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	params := UpsertParams{
		Name:        "comp-dollars-prop13",
		Description: "Comp dollars at property 13, table games except poker",
		Criteria:    `@RatingTypeID=2 AND NOT ((@TableGameType="PK")) AND (@Property=13)`,
		Benefit:     `@CompDollars = (@CoinIN)/10; EXECUTE AddPlayerCompDollars`,
		Enabled:     true,
		Env:         "prod",
	}
	if err := s.UpsertRule(ctx, params); err != nil {
		t.Fatalf("UpsertRule: %v", err)
	}

	rule, err := s.GetRuleByName(ctx, "comp-dollars-prop13")
	if err != nil {
		t.Fatalf("GetRuleByName: %v", err)
	}
	if rule.Criteria != params.Criteria {
		t.Errorf("criteria: got %q, want %q", rule.Criteria, params.Criteria)
	}
	if rule.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}

	// Upsert with the same name updates in place.
	params.Enabled = false
	if err := s.UpsertRule(ctx, params); err != nil {
		t.Fatalf("UpsertRule (update): %v", err)
	}
	rule, err = s.GetRuleByName(ctx, "comp-dollars-prop13")
	if err != nil {
		t.Fatalf("GetRuleByName after update: %v", err)
	}
	if rule.Enabled {
		t.Error("expected rule to be disabled after update")
	}

	if err := s.DeleteRule(ctx, "comp-dollars-prop13", "prod"); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if _, err := s.GetRuleByName(ctx, "comp-dollars-prop13"); !errors.Is(err, ErrRuleNotFound) {
		t.Fatalf("after delete: got %v, want ErrRuleNotFound", err)
	}
}

func TestMemoryStore_GetAllRulesFiltersByEnv(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, p := range []UpsertParams{
		{Name: "prod-rule", Criteria: "(@Property=1)", Env: "prod", Enabled: true},
		{Name: "staging-rule", Criteria: "(@Property=2)", Env: "staging", Enabled: true},
	} {
		if err := s.UpsertRule(ctx, p); err != nil {
			t.Fatalf("UpsertRule(%s): %v", p.Name, err)
		}
	}

	rules, err := s.GetAllRules(ctx, "prod")
	if err != nil {
		t.Fatalf("GetAllRules: %v", err)
	}
	if len(rules) != 1 || rules[0].Name != "prod-rule" {
		t.Errorf("got %v, want only prod-rule", rules)
	}
}

func TestMemoryStore_DeleteWrongEnvIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.UpsertRule(ctx, UpsertParams{Name: "r", Criteria: "(@Property=1)", Env: "prod"}); err != nil {
		t.Fatalf("UpsertRule: %v", err)
	}
	if err := s.DeleteRule(ctx, "r", "staging"); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if _, err := s.GetRuleByName(ctx, "r"); err != nil {
		t.Errorf("rule should survive delete for a different env: %v", err)
	}
}

func TestMemoryStore_APIKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	key, err := s.CreateAPIKey(ctx, CreateAPIKeyParams{
		ID:      "11111111-1111-1111-1111-111111111111",
		Name:    "ci",
		KeyHash: "$2a$12$fakehash",
		Role:    "admin",
	})
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	if !key.Enabled {
		t.Error("new key should be enabled")
	}
	if key.LastUsedAt != nil {
		t.Error("new key should have no last-used time")
	}

	if err := s.UpdateAPIKeyLastUsed(ctx, key.ID); err != nil {
		t.Fatalf("UpdateAPIKeyLastUsed: %v", err)
	}
	keys, err := s.ListAPIKeys(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeys: %v", err)
	}
	if len(keys) != 1 || keys[0].LastUsedAt == nil {
		t.Fatalf("expected one key with last-used set, got %+v", keys)
	}

	if err := s.RevokeAPIKey(ctx, key.ID); err != nil {
		t.Fatalf("RevokeAPIKey: %v", err)
	}
	keys, _ = s.ListAPIKeys(ctx)
	if keys[0].Enabled {
		t.Error("revoked key should be disabled")
	}

	if err := s.RevokeAPIKey(ctx, "missing"); !errors.Is(err, ErrAPIKeyNotFound) {
		t.Errorf("got %v, want ErrAPIKeyNotFound", err)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = s.UpsertRule(ctx, UpsertParams{Name: "r", Criteria: "(@Property=1)", Env: "prod", Enabled: true})
		}
	}()
	for i := 0; i < 100; i++ {
		_, _ = s.GetAllRules(ctx, "prod")
	}
	<-done
}
