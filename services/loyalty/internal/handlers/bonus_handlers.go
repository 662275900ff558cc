package handlers

import (
	"net/http"

	"github.com/diagnosis/shelter-loyalty/pkg/response"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/normalize"
)

// LookupBonus handles GET /api/bonus-lookup?phone=.
func (h *Handlers) LookupBonus(w http.ResponseWriter, r *http.Request) {
	if err := h.authenticate(r, ""); err != nil {
		h.writeAuthError(w, err)
		return
	}

	phone := normalize.PayloadFromValues(r.URL.Query()).Get("phone").String()
	result, err := h.loyaltyService.LookupBonus(r.Context(), phone)
	if err != nil {
		h.writeServiceError(w, r, "look up bonus balance", err)
		return
	}
	if result == nil {
		response.OK(w, http.StatusOK, nil, "No bonus record found for this phone")
		return
	}

	response.OK(w, http.StatusOK, result, "")
}
