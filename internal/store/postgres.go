package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tables the store needs if they do not exist.
// It is safe to call on every startup.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS comp_rules (
    name        TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    criteria    TEXT NOT NULL,
    benefit     TEXT NOT NULL DEFAULT '',
    enabled     BOOLEAN NOT NULL DEFAULT TRUE,
    env         TEXT NOT NULL DEFAULT 'prod',
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS api_keys (
    id           UUID PRIMARY KEY,
    name         TEXT NOT NULL,
    key_hash     TEXT NOT NULL,
    role         TEXT NOT NULL,
    enabled      BOOLEAN NOT NULL DEFAULT TRUE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_used_at TIMESTAMPTZ
);`
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetAllRules retrieves all rules for the given environment from the database.
func (p *PostgresStore) GetAllRules(ctx context.Context, env string) ([]Rule, error) {
	rows, err := p.pool.Query(ctx, `
SELECT name, description, criteria, benefit, enabled, env, updated_at
FROM comp_rules
WHERE env = $1
ORDER BY name`, env)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	rules := make([]Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// GetRuleByName retrieves a single rule by its name from the database.
func (p *PostgresStore) GetRuleByName(ctx context.Context, name string) (*Rule, error) {
	row := p.pool.QueryRow(ctx, `
SELECT name, description, criteria, benefit, enabled, env, updated_at
FROM comp_rules
WHERE name = $1`, name)

	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// UpsertRule creates or updates a rule in the database.
func (p *PostgresStore) UpsertRule(ctx context.Context, params UpsertParams) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO comp_rules (name, description, criteria, benefit, enabled, env, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    criteria    = EXCLUDED.criteria,
    benefit     = EXCLUDED.benefit,
    enabled     = EXCLUDED.enabled,
    env         = EXCLUDED.env,
    updated_at  = now()`,
		params.Name, params.Description, params.Criteria, params.Benefit, params.Enabled, params.Env)
	if err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}
	return nil
}

// DeleteRule removes a rule from the database. Idempotent.
func (p *PostgresStore) DeleteRule(ctx context.Context, name, env string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM comp_rules WHERE name = $1 AND env = $2`, name, env)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// ListAPIKeys retrieves all API keys from the database.
func (p *PostgresStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, name, key_hash, role, enabled, created_at, last_used_at
FROM api_keys
ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// CreateAPIKey creates a new API key record in the database.
func (p *PostgresStore) CreateAPIKey(ctx context.Context, params CreateAPIKeyParams) (APIKey, error) {
	row := p.pool.QueryRow(ctx, `
INSERT INTO api_keys (id, name, key_hash, role, enabled, created_at)
VALUES ($1, $2, $3, $4, TRUE, now())
RETURNING id, name, key_hash, role, enabled, created_at, last_used_at`,
		params.ID, params.Name, params.KeyHash, params.Role)

	key, err := scanAPIKey(row)
	if err != nil {
		return APIKey{}, fmt.Errorf("create api key: %w", err)
	}
	return key, nil
}

// RevokeAPIKey disables an API key.
func (p *PostgresStore) RevokeAPIKey(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE api_keys SET enabled = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// UpdateAPIKeyLastUsed updates the last_used_at timestamp for an API key.
func (p *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func scanRule(row pgx.Row) (Rule, error) {
	var (
		rule      Rule
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&rule.Name, &rule.Description, &rule.Criteria, &rule.Benefit,
		&rule.Enabled, &rule.Env, &updatedAt); err != nil {
		return Rule{}, err
	}
	rule.UpdatedAt = updatedAt.Time
	return rule, nil
}

func scanAPIKey(row pgx.Row) (APIKey, error) {
	var (
		key        APIKey
		id         pgtype.UUID
		createdAt  pgtype.Timestamptz
		lastUsedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &key.Name, &key.KeyHash, &key.Role, &key.Enabled,
		&createdAt, &lastUsedAt); err != nil {
		return APIKey{}, err
	}
	key.ID = uuidString(id)
	key.CreatedAt = createdAt.Time
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		key.LastUsedAt = &t
	}
	return key, nil
}

func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	b := u.Bytes
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
