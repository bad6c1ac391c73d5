package handler

import (
	"errors"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/shopify"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CreateOrderResponse is the body of a successful POST /create-order.
type CreateOrderResponse struct {
	Success bool                 `json:"success"`
	Order   *model.OrderResponse `json:"order"`
}

// OrderErrorResponse is the failure envelope of POST /create-order.
type OrderErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// OrderListResponse is the body of GET /orders.
type OrderListResponse struct {
	Orders []model.Order `json:"orders"`
}

// OrderHandler handles order HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /create-order requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		status, resp := orderFailure(err)
		event := h.logger.Warn()
		if status >= http.StatusInternalServerError {
			event = h.logger.Error()
		}
		event.Err(err).Int("status", status).Msg("order creation failed")
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, CreateOrderResponse{Success: true, Order: order})
}

// orderFailure maps an order placement error to its status and body.
func orderFailure(err error) (int, OrderErrorResponse) {
	resp := OrderErrorResponse{Success: false}

	var (
		stockErr    *model.StockError
		domainErr   *model.DomainError
		rejectedErr *shopify.OrderRejectedError
		queryErr    *shopify.QueryError
		statusErr   *shopify.StatusError
	)

	switch {
	case errors.As(err, &stockErr):
		resp.Error = stockErr.Error()
		resp.Details = stockErr.Titles
		return http.StatusBadRequest, resp
	case errors.As(err, &domainErr):
		resp.Error = domainErr.Message
		return domainStatus(domainErr), resp
	case errors.As(err, &rejectedErr):
		resp.Error = "Order validation failed"
		for _, ue := range rejectedErr.Errors {
			resp.Details = append(resp.Details, ue.Message)
		}
		return http.StatusBadRequest, resp
	case errors.As(err, &queryErr):
		resp.Error = "Shopify API error"
		return http.StatusBadRequest, resp
	case errors.Is(err, shopify.ErrOrderNotCreated):
		resp.Error = "Order creation failed"
		return http.StatusInternalServerError, resp
	case shopify.IsTimeout(err):
		resp.Error = "Request timeout - please try again"
		return http.StatusGatewayTimeout, resp
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized:
		resp.Error = "Authentication failed"
		return http.StatusUnauthorized, resp
	case errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500:
		resp.Error = "Invalid request to Shopify"
		return http.StatusBadRequest, resp
	default:
		resp.Error = "Failed to create order"
		return http.StatusInternalServerError, resp
	}
}

// List handles GET /orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch orders", h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, OrderListResponse{Orders: orders})
}

// Get handles GET /orders/{id} requests.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := pathUUID(w, chi.URLParam(r, "id"), model.ErrOrderNotFound.Message, h.logger)
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
