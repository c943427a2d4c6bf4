package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It uses maps for storage and RWMutex for thread-safe concurrent access.
// This implementation is suitable for development, testing, or
// single-instance deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	rules map[string]Rule   // name -> Rule
	keys  map[string]APIKey // id -> APIKey
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules: make(map[string]Rule),
		keys:  make(map[string]APIKey),
	}
}

// GetAllRules retrieves all rules for the given environment.
func (m *MemoryStore) GetAllRules(ctx context.Context, env string) ([]Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Rule, 0, len(m.rules))
	for _, rule := range m.rules {
		if rule.Env == env {
			result = append(result, rule)
		}
	}
	return result, nil
}

// GetRuleByName retrieves a single rule by its name.
func (m *MemoryStore) GetRuleByName(ctx context.Context, name string) (*Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rule, exists := m.rules[name]
	if !exists {
		return nil, ErrRuleNotFound
	}
	return &rule, nil
}

// UpsertRule creates or updates a rule in memory.
func (m *MemoryStore) UpsertRule(ctx context.Context, params UpsertParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules[params.Name] = Rule{
		Name:        params.Name,
		Description: params.Description,
		Criteria:    params.Criteria,
		Benefit:     params.Benefit,
		Enabled:     params.Enabled,
		Env:         params.Env,
		UpdatedAt:   time.Now().UTC(),
	}
	return nil
}

// DeleteRule removes a rule from memory.
func (m *MemoryStore) DeleteRule(ctx context.Context, name, env string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rule, exists := m.rules[name]; exists && rule.Env == env {
		delete(m.rules, name)
	}

	// Idempotent: no error if rule doesn't exist
	return nil
}

// ListAPIKeys retrieves all API keys.
func (m *MemoryStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]APIKey, 0, len(m.keys))
	for _, key := range m.keys {
		result = append(result, key)
	}
	return result, nil
}

// CreateAPIKey stores a new API key record.
func (m *MemoryStore) CreateAPIKey(ctx context.Context, params CreateAPIKeyParams) (APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := APIKey{
		ID:        params.ID,
		Name:      params.Name,
		KeyHash:   params.KeyHash,
		Role:      params.Role,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
	m.keys[key.ID] = key
	return key, nil
}

// RevokeAPIKey disables an API key.
func (m *MemoryStore) RevokeAPIKey(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, exists := m.keys[id]
	if !exists {
		return ErrAPIKeyNotFound
	}
	key.Enabled = false
	m.keys[id] = key
	return nil
}

// UpdateAPIKeyLastUsed stamps the key's last-used time.
func (m *MemoryStore) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, exists := m.keys[id]
	if !exists {
		return ErrAPIKeyNotFound
	}
	now := time.Now().UTC()
	key.LastUsedAt = &now
	m.keys[id] = key
	return nil
}

// Close is a no-op for MemoryStore as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
