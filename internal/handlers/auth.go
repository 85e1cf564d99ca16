package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
)

type AuthHandler struct {
	service *app.Service
}

func NewAuthHandler(service *app.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.service.Auth.SignIn(r.Context(), req.Password)
	if err != nil {
		logger.Error.Printf("Sign-in failed: %v", err)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	token := h.service.SessionToken(r)
	if err := h.service.Auth.SignOut(r.Context(), token); err != nil {
		logger.Error.Printf("Sign-out failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// HandleResetStart mints a reset token. The token is returned in the
// response for out-of-band delivery; there is no mailer here.
func (h *AuthHandler) HandleResetStart(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.Auth.StartReset(r.Context())
	if err != nil {
		logger.Error.Printf("Reset start failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to start password reset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reset_token": token})
}

func (h *AuthHandler) HandleResetComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetToken  string `json:"reset_token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResetToken == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "reset_token and new_password are required")
		return
	}

	if err := h.service.Auth.CompleteReset(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		logger.Error.Printf("Reset failed: %v", err)
		writeError(w, http.StatusUnauthorized, "invalid or expired reset token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
