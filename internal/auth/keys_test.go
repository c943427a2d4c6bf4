package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		t.Errorf("key %q missing prefix %q", key, KeyPrefix)
	}

	other, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if key == other {
		t.Error("two generated keys must differ")
	}
}

func TestHashAndVerifyAPIKey(t *testing.T) {
	key := "crk_testkey"
	hash, err := HashAPIKey(key)
	if err != nil {
		t.Fatalf("HashAPIKey: %v", err)
	}
	if hash == key {
		t.Error("hash must not equal plaintext")
	}
	if !VerifyAPIKey(key, hash) {
		t.Error("correct key must verify")
	}
	if VerifyAPIKey("crk_wrong", hash) {
		t.Error("wrong key must not verify")
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"  Bearer   abc123  ", "abc123"},
		{"abc123", "abc123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractBearerToken(tt.header); got != tt.want {
			t.Errorf("ExtractBearerToken(%q): got %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		user     Role
		required Role
		want     bool
	}{
		{RoleSuperadmin, RoleSuperadmin, true},
		{RoleSuperadmin, RoleAdmin, true},
		{RoleSuperadmin, RoleReadonly, true},
		{RoleAdmin, RoleSuperadmin, false},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleReadonly, true},
		{RoleReadonly, RoleAdmin, false},
		{RoleReadonly, RoleReadonly, true},
	}
	for _, tt := range tests {
		if got := HasPermission(tt.user, tt.required); got != tt.want {
			t.Errorf("HasPermission(%s, %s): got %v, want %v", tt.user, tt.required, got, tt.want)
		}
	}
}

func TestValidateRole(t *testing.T) {
	for _, valid := range []string{"readonly", "admin", "superadmin"} {
		if !ValidateRole(valid) {
			t.Errorf("ValidateRole(%q): got false, want true", valid)
		}
	}
	for _, invalid := range []string{"", "root", "ADMIN"} {
		if ValidateRole(invalid) {
			t.Errorf("ValidateRole(%q): got true, want false", invalid)
		}
	}
}
