package auth

import (
	"context"
	"net/http"

	"comprules/internal/store"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ContextKeyAPIKey is the context key for storing the API key ID
	ContextKeyAPIKey contextKey = "api_key_id"
	// ContextKeyRole is the context key for storing the caller role
	ContextKeyRole contextKey = "role"
)

// KeyStore defines the interface for API key lookup during authentication.
type KeyStore interface {
	ListAPIKeys(ctx context.Context) ([]store.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// Authenticator handles authentication for API requests.
type Authenticator struct {
	keyStore       KeyStore
	legacyAdminKey string // single configured key, superadmin
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(keyStore KeyStore, legacyAdminKey string) *Authenticator {
	return &Authenticator{
		keyStore:       keyStore,
		legacyAdminKey: legacyAdminKey,
	}
}

// AuthResult contains the result of an authentication attempt.
type AuthResult struct {
	Authenticated bool
	Role          Role
	APIKeyID      string
	Error         string
}

// Authenticate authenticates a request using the Authorization header.
// It supports both the configured ADMIN_API_KEY and stored API keys.
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) AuthResult {
	token := ExtractBearerToken(authHeader)
	if token == "" {
		return AuthResult{Error: "missing bearer token"}
	}

	if a.legacyAdminKey != "" && VerifyAPIKeyConstantTime(token, a.legacyAdminKey) {
		return AuthResult{Authenticated: true, Role: RoleSuperadmin}
	}

	// Stored keys must be checked one by one: bcrypt hashes are
	// non-deterministic, so there is no hash lookup.
	keys, err := a.keyStore.ListAPIKeys(ctx)
	if err != nil {
		return AuthResult{Error: "authentication service unavailable"}
	}

	var apiKey *store.APIKey
	for i := range keys {
		if keys[i].Enabled && VerifyAPIKey(token, keys[i].KeyHash) {
			apiKey = &keys[i]
			break
		}
	}
	if apiKey == nil {
		return AuthResult{Error: "invalid token"}
	}

	// Update last used timestamp (async, ignore errors)
	go func() {
		_ = a.keyStore.UpdateAPIKeyLastUsed(context.Background(), apiKey.ID)
	}()

	return AuthResult{
		Authenticated: true,
		Role:          Role(apiKey.Role),
		APIKeyID:      apiKey.ID,
	}
}

// RequireAuth is a middleware that requires authentication at the given
// role or above.
func (a *Authenticator) RequireAuth(requiredRole Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := a.Authenticate(r.Context(), r.Header.Get("Authorization"))

			if !result.Authenticated {
				http.Error(w, result.Error, http.StatusUnauthorized)
				return
			}
			if !HasPermission(result.Role, requiredRole) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyRole, result.Role)
			if result.APIKeyID != "" {
				ctx = context.WithValue(ctx, ContextKeyAPIKey, result.APIKeyID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRoleFromContext extracts the role from the request context.
func GetRoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(ContextKeyRole).(Role)
	return role, ok
}

// GetAPIKeyIDFromContext extracts the API key ID from the request context.
func GetAPIKeyIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyAPIKey).(string)
	return id, ok
}
