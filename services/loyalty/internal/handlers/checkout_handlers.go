package handlers

import (
	"net/http"

	"github.com/diagnosis/shelter-loyalty/pkg/response"
)

// CreateGuestCheckout handles POST /api/guest-checkout.
func (h *Handlers) CreateGuestCheckout(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	password := payload.Get(passwordField).String()
	delete(payload, passwordField)
	if err := h.authenticate(r, password); err != nil {
		h.writeAuthError(w, err)
		return
	}

	row, err := h.loyaltyService.Checkout(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, r, "store guest checkout", err)
		return
	}

	response.OK(w, http.StatusCreated, row, "Guest checkout saved")
}
