package handler

import (
	"errors"
	"net/http"

	"storefront/internal/discount"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const msgInvalidSubtotal = "Invalid 'subtotal' parameter. Provide a decimal number."

// VerifyErrorResponse is the failure envelope of the verification endpoint.
type VerifyErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DiscountHandler handles discount code HTTP requests.
type DiscountHandler struct {
	service       service.DiscountService
	exposeDetails bool
	logger        zerolog.Logger
}

// NewDiscountHandler creates a new discount handler. When exposeDetails is
// set, upstream failure messages are included in error responses.
func NewDiscountHandler(service service.DiscountService, exposeDetails bool, logger zerolog.Logger) *DiscountHandler {
	return &DiscountHandler{
		service:       service,
		exposeDetails: exposeDetails,
		logger:        logger.With().Str("handler", "discount").Logger(),
	}
}

// Verify handles GET /verify-discount-code requests.
func (h *DiscountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := discount.Request{
		Codes:        query.Get("codes"),
		CartVariants: query.Get("cartVariants"),
	}

	if raw := query.Get("subtotal"); raw != "" {
		subtotal, err := decimal.NewFromString(raw)
		if err != nil {
			h.writeFailure(w, http.StatusBadRequest, msgInvalidSubtotal, "")
			return
		}
		req.Subtotal = &subtotal
	}

	report, err := h.service.Verify(r.Context(), req)
	if err != nil {
		var inputErr *discount.InputError
		if errors.As(err, &inputErr) {
			h.writeFailure(w, http.StatusBadRequest, inputErr.Message, "")
			return
		}

		h.logger.Error().Err(err).Msg("discount verification failed")
		details := ""
		if h.exposeDetails {
			details = err.Error()
		}
		h.writeFailure(w, http.StatusInternalServerError, "Failed to verify discount codes", details)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Overview handles GET /discounts requests.
func (h *DiscountHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build discount overview")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to fetch discounts"})
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

func (h *DiscountHandler) writeFailure(w http.ResponseWriter, status int, message, details string) {
	h.logger.Warn().Int("status", status).Str("error", message).Msg("discount request rejected")
	writeJSON(w, status, VerifyErrorResponse{Success: false, Error: message, Details: details})
}
