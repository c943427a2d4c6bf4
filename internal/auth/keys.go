// Package auth implements API-key authentication for the comp-rules
// service: key generation, bcrypt hashing, role checks, and the HTTP
// middleware that enforces them.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// KeyPrefix is the prefix for all generated API keys
	KeyPrefix = "crk_"
	// KeyLength is the length of the random part of the key (32 bytes = 256 bits)
	KeyLength = 32
	// BCryptCost is the cost factor for bcrypt hashing
	BCryptCost = 12
)

// Role represents the access level of an API key
type Role string

const (
	RoleReadonly   Role = "readonly"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// GenerateAPIKey generates a new API key with the service prefix.
func GenerateAPIKey() (string, error) {
	randomBytes := make([]byte, KeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return KeyPrefix + base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// HashAPIKey hashes an API key using bcrypt.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hash), nil
}

// VerifyAPIKey verifies an API key against a bcrypt hash.
func VerifyAPIKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// VerifyAPIKeyConstantTime verifies an API key against a plain text key
// using constant-time comparison. Used for the legacy ADMIN_API_KEY.
func VerifyAPIKeyConstantTime(got, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// ExtractBearerToken extracts the bearer token from an Authorization header.
func ExtractBearerToken(authHeader string) string {
	token := strings.TrimSpace(authHeader)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// ValidateRole checks if a given role string is valid.
func ValidateRole(role string) bool {
	switch Role(role) {
	case RoleReadonly, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// HasPermission checks if a given role has permission to act as the
// required role. readonly < admin < superadmin; only superadmin may
// manage keys.
func HasPermission(userRole Role, requiredRole Role) bool {
	if userRole == RoleSuperadmin {
		return true
	}
	if userRole == RoleAdmin && (requiredRole == RoleAdmin || requiredRole == RoleReadonly) {
		return true
	}
	return userRole == RoleReadonly && requiredRole == RoleReadonly
}
