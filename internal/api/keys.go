package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"comprules/internal/audit"
	"comprules/internal/auth"
	"comprules/internal/store"
)

type createKeyRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// createKeyResponse carries the plaintext key exactly once; only the
// bcrypt hash is stored.
type createKeyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	Key  string `json:"key"`
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		BadRequestError(w, r, ErrCodeBadRequest, "name is required")
		return
	}
	if !auth.ValidateRole(req.Role) {
		BadRequestError(w, r, ErrCodeInvalidRole, "role must be one of: readonly, admin, superadmin")
		return
	}

	plaintext, err := auth.GenerateAPIKey()
	if err != nil {
		InternalError(w, r, "key generation failed")
		return
	}
	hash, err := auth.HashAPIKey(plaintext)
	if err != nil {
		InternalError(w, r, "key hashing failed")
		return
	}

	key, err := s.store.CreateAPIKey(r.Context(), store.CreateAPIKeyParams{
		ID:      uuid.NewString(),
		Name:    req.Name,
		KeyHash: hash,
		Role:    req.Role,
	})
	if err != nil {
		InternalError(w, r, "key creation failed")
		return
	}

	s.audit.Log(r.Context(), audit.NewEventBuilder(r).
		ForResource(audit.ResourceTypeAPIKey, key.ID).
		WithAction(audit.ActionCreated).
		WithAfterState(map[string]any{"name": key.Name, "role": key.Role}).
		Build())

	writeJSON(w, http.StatusCreated, createKeyResponse{
		ID:   key.ID,
		Name: key.Name,
		Role: key.Role,
		Key:  plaintext,
	})
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.store.ListAPIKeys(r.Context())
	if err != nil {
		InternalError(w, r, "key listing failed")
		return
	}
	// APIKey marshals without the hash (json:"-").
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

func (s *Server) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RevokeAPIKey(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrAPIKeyNotFound) {
			NotFoundError(w, r, "api key not found")
		} else {
			InternalError(w, r, "key revocation failed")
		}
		return
	}

	s.audit.Log(r.Context(), audit.NewEventBuilder(r).
		ForResource(audit.ResourceTypeAPIKey, id).
		WithAction(audit.ActionRevoked).
		Build())

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
