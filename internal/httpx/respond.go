package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pasarhub/marketplace-orders/internal/market"
)

// Envelope is the uniform response shape, success or failure.
type Envelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Error   any    `json:"error"`
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Code)
	_ = json.NewEncoder(w).Encode(env)
}

func respondOK(w http.ResponseWriter, code int, message string, data any) {
	writeEnvelope(w, Envelope{Success: true, Code: code, Message: message, Data: data})
}

func respondFail(w http.ResponseWriter, code int, message, reason string) {
	writeEnvelope(w, Envelope{Success: false, Code: code, Message: message, Error: reason})
}

// respondDomainErr maps a market error to HTTP code + machine reason code.
// Internal detail leaks only outside production.
func respondDomainErr(w http.ResponseWriter, err error, production bool) {
	reason := market.ReasonCode(err)
	var ise *market.InsufficientStockError
	var ite *market.InvalidTransitionError
	switch {
	case errors.Is(err, market.ErrListingNotFound), errors.Is(err, market.ErrOrderNotFound):
		respondFail(w, http.StatusNotFound, err.Error(), reason)
	case errors.Is(err, market.ErrNoVendorAccess), errors.Is(err, market.ErrBuyerOnlyCancel):
		respondFail(w, http.StatusForbidden, err.Error(), reason)
	case errors.As(err, &ise), errors.As(err, &ite),
		errors.Is(err, market.ErrListingUnavailable),
		errors.Is(err, market.ErrNoPrice),
		errors.Is(err, market.ErrInvalidStatus),
		errors.Is(err, market.ErrInvalidQuantity):
		respondFail(w, http.StatusBadRequest, err.Error(), reason)
	default:
		msg := "internal server error"
		if !production {
			msg = err.Error()
		}
		respondFail(w, http.StatusInternalServerError, msg, reason)
	}
}
