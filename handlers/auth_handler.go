package handlers

import (
	"net/http"
	"strings"

	auth "ledgergate-backend/storage/auth"
)

// AuthHandler issues API keys and binds ledger accounts to them.
type AuthHandler struct {
	*BaseHandler
	issuer     auth.APIKeyIssuer
	updater    auth.APIKeyAccountUpdater
	challenges *auth.ChallengeStore
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(issuer auth.APIKeyIssuer, updater auth.APIKeyAccountUpdater, challenges *auth.ChallengeStore) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(),
		issuer:      issuer,
		updater:     updater,
		challenges:  challenges,
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	AccountID string `json:"accountId,omitempty"`
}

// HandleRegister issues a new API key.
// @Summary Register
// @Description Issue a new API key for the frontend proxy layer
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req registerRequest
	if err := h.parseJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		h.sendError(w, http.StatusBadRequest, "email is required")
		return
	}

	key, err := h.issuer.Issue(req.Email, req.AccountID, "registration")
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to issue API key")
		return
	}

	h.sendSuccess(w, key)
}

type challengeRequest struct {
	AccountID string `json:"accountId"`
}

// HandleChallenge issues a verification nonce for a ledger account.
// @Summary Account challenge
// @Description Issue a nonce the account holder signs to prove ownership
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /api/auth/challenge [post]
func (h *AuthHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req challengeRequest
	if err := h.parseJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.AccountID) == "" {
		h.sendError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	challenge, err := h.challenges.Issue(req.AccountID)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to issue challenge")
		return
	}

	h.sendSuccess(w, challenge)
}

type bindAccountRequest struct {
	AccountID string `json:"accountId"`
	Signature string `json:"signature"`
}

// HandleBindAccount binds a verified ledger account to the caller's API key.
// @Summary Bind account
// @Description Bind a ledger account to the caller's API key after challenge verification
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/auth/account [post]
func (h *AuthHandler) HandleBindAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	apiKey := r.Header.Get("X-API-Key")
	if apiKey == "" {
		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			apiKey = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if apiKey == "" {
		h.sendError(w, http.StatusUnauthorized, "API key required")
		return
	}

	var req bindAccountRequest
	if err := h.parseJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.AccountID) == "" {
		h.sendError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	if !h.challenges.Verify(req.AccountID, req.Signature) {
		h.sendError(w, http.StatusForbidden, "Challenge verification failed")
		return
	}

	rec, err := h.updater.UpdateAccount(apiKey, req.AccountID)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Failed to bind account: "+err.Error())
		return
	}

	h.sendSuccess(w, rec)
}
