package handlers

import (
	"net/http"
	"time"

	"github.com/diagnosis/shelter-loyalty/pkg/auth"
	"github.com/diagnosis/shelter-loyalty/pkg/logger"
	"github.com/diagnosis/shelter-loyalty/pkg/response"
)

type sessionRes struct {
	Token        string     `json:"token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	AuthDisabled bool       `json:"auth_disabled,omitempty"`
}

// Login handles POST /api/auth/login and exchanges the staff password for a session token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	if h.passwords.Disabled() {
		if err := h.recordBypass(r.Context()); err != nil {
			h.writeAuthError(w, err)
			return
		}
		response.OK(w, http.StatusOK, sessionRes{AuthDisabled: true}, "Staff authentication is disabled")
		return
	}

	if err := h.verifyPassword(r.Context(), payload.Get(passwordField).String()); err != nil {
		h.writeAuthError(w, err)
		return
	}

	token, expires, err := auth.NewStaffSession(h.config.Auth.JWTSecret, h.config.Auth.StaffSessionTTL)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to issue staff session", "error", err)
		response.WriteError(w, http.StatusInternalServerError, "internal error", response.CodeInternalError)
		return
	}

	logger.InfoContext(r.Context(), "Staff session issued", "expires_at", expires)
	response.OK(w, http.StatusOK, sessionRes{Token: token, ExpiresAt: &expires}, "")
}
