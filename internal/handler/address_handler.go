package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AddressResponse wraps a saved address.
type AddressResponse struct {
	Success         bool                   `json:"success"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress"`
}

// AddressListResponse is the body of GET /addresses.
type AddressListResponse struct {
	Addresses []model.ShippingAddress `json:"addresses"`
}

// AddressHandler handles shipping address HTTP requests.
type AddressHandler struct {
	service service.AddressService
	logger  zerolog.Logger
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(service service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "address").Logger(),
	}
}

// List handles GET /addresses requests.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	addresses, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch addresses", h.logger)
		return
	}
	if addresses == nil {
		addresses = []model.ShippingAddress{}
	}

	writeJSON(w, http.StatusOK, AddressListResponse{Addresses: addresses})
}

// AddressDetailResponse is the body of GET /address/{id}.
type AddressDetailResponse struct {
	Address *model.ShippingAddress `json:"address"`
}

// Get handles GET /address/{id} requests.
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := pathUUID(w, chi.URLParam(r, "id"), model.ErrAddressNotFound.Message, h.logger)
	if !ok {
		return
	}

	address, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch address", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, AddressDetailResponse{Address: address})
}

// Create handles POST /add-shipping-address requests.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddressRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	address, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err, "Failed to add shipping address", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, AddressResponse{Success: true, ShippingAddress: address})
}

// Update handles PUT /address/{id} requests.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := pathUUID(w, chi.URLParam(r, "id"), model.ErrAddressNotFound.Message, h.logger)
	if !ok {
		return
	}

	var req model.AddressRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	address, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, err, "Failed to update address", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, AddressResponse{Success: true, ShippingAddress: address})
}

// Delete handles DELETE /address/{id} requests.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := pathUUID(w, chi.URLParam(r, "id"), model.ErrAddressNotFound.Message, h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err, "Failed to delete address", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Address deleted successfully"})
}
