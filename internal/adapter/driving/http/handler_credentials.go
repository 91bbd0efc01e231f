package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// StoreCredential encrypts and stores an organization's provider secret.
func (h *Handler) StoreCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider := providerOrDefault(req.Provider)
	if err := h.vault.Store(r.Context(), strings.TrimSpace(req.OrganizationID), provider, req.APIKey); err != nil {
		h.writeServiceError(w, err, "store credential")
		return
	}

	writeJSON(w, http.StatusOK, StoreCredentialResponse{
		Success:        true,
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		Provider:       provider,
	})
}

// DeleteCredential removes an organization's provider secret.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	orgID := strings.TrimSpace(r.URL.Query().Get("organization_uuid"))
	if orgID == "" {
		writeError(w, http.StatusBadRequest, "organization_uuid is required")
		return
	}

	if err := h.vault.Delete(r.Context(), orgID, providerOrDefault(r.URL.Query().Get("provider"))); err != nil {
		h.writeServiceError(w, err, "delete credential")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DecryptCredential returns the plaintext secret for an organization.
func (h *Handler) DecryptCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	orgID := strings.TrimSpace(req.OrganizationID)
	if orgID == "" {
		writeError(w, http.StatusBadRequest, "organization_uuid is required")
		return
	}

	secret, err := h.vault.Resolve(r.Context(), orgID, providerOrDefault(req.Provider))
	if err != nil {
		h.writeServiceError(w, err, "decrypt credential")
		return
	}

	writeJSON(w, http.StatusOK, DecryptCredentialResponse{APIKey: secret})
}

// ValidateCredential checks a caller-supplied secret against the provider.
func (h *Handler) ValidateCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.proxy.ValidateSecret(r.Context(), req.APIKey)

	var upstream *driven.UpstreamError
	if err != nil && !errors.Is(err, driven.ErrInvalidCredential) && errors.As(err, &upstream) {
		// Any rejection other than 401 means the check itself failed.
		h.logger.Error("key validation failed upstream", "status", upstream.StatusCode)
		writeError(w, http.StatusBadGateway, "ElevenLabs API error")
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "validate credential")
		return
	}

	writeJSON(w, http.StatusOK, ValidateCredentialResponse{Valid: true, Message: "API key is valid"})
}

func providerOrDefault(provider string) string {
	if p := strings.TrimSpace(provider); p != "" {
		return p
	}
	return model.ProviderElevenLabs
}
