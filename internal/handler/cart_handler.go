package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler handles cart and wishlist HTTP requests.
type CartHandler struct {
	cart     service.CartService
	wishlist service.WishlistService
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart service.CartService, wishlist service.WishlistService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		wishlist: wishlist,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

// ListCart handles GET /cart requests.
func (h *CartHandler) ListCart(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.cart.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ReconciledCartResponse{Cart: items})
}

// AddToCart handles POST /add-to-cart requests.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddToCartRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	item, err := h.cart.Add(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err, "Failed to add item to cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// UpdateCartItem handles PUT /cart/{itemId} requests.
func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	itemID, ok := pathUUID(w, chi.URLParam(r, "itemId"), model.ErrCartItemNotFound.Message, h.logger)
	if !ok {
		return
	}

	var req model.UpdateCartItemRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), userID, itemID, req.Quantity); err != nil {
		writeServiceError(w, err, "Failed to update cart item", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Cart item updated"})
}

// RemoveCartItem handles DELETE /cart/{itemId} requests.
func (h *CartHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	itemID, ok := pathUUID(w, chi.URLParam(r, "itemId"), model.ErrCartItemNotFound.Message, h.logger)
	if !ok {
		return
	}

	if err := h.cart.Remove(r.Context(), userID, itemID); err != nil {
		writeServiceError(w, err, "Failed to remove cart item", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Item removed from cart"})
}

// CartCount handles GET /cart-items-count requests.
func (h *CartHandler) CartCount(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	count, err := h.cart.Count(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch total cart items", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

// ListWishlist handles GET /wishlist requests.
func (h *CartHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.wishlist.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch wishlist", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ReconciledWishlistResponse{Wishlist: items})
}

// AddToWishlist handles POST /add-to-wishlist requests.
func (h *CartHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddToWishlistRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	item, err := h.wishlist.Add(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err, "Failed to add item to wishlist", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// RemoveFromWishlist handles DELETE /remove-from-wishlist requests.
func (h *CartHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.RemoveFromWishlistRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	removed, err := h.wishlist.Remove(r.Context(), userID, req.ShopifyVariantID)
	if err != nil {
		writeServiceError(w, err, "Failed to remove item from wishlist", h.logger)
		return
	}

	if !removed {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Item Already Removed"})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Item removed from wishlist"})
}

// WishlistCount handles GET /total-wishlist-items-count requests.
func (h *CartHandler) WishlistCount(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	count, err := h.wishlist.Count(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch total wishlist items", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}
