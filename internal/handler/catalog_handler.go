package handler

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductResponse is the body of GET /products?productId=.
type ProductResponse struct {
	Product *model.Product `json:"product"`
}

// ProductListResponse is the body of GET /products.
type ProductListResponse struct {
	Products []model.Product `json:"products"`
}

// CollectionListResponse is the body of GET /collections.
type CollectionListResponse struct {
	Collections []model.Collection `json:"collections"`
}

// CollectionResponse is the body of GET /collections/{id}.
type CollectionResponse struct {
	Collection []model.CollectionProduct `json:"collection"`
}

// CatalogHandler serves storefront catalog reads.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// Products handles GET /products requests. A productId returns one product;
// otherwise product_ids or numberOfProducts select the list.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if id := strings.TrimSpace(query.Get("productId")); id != "" {
		product, err := h.service.Product(r.Context(), id)
		if err != nil {
			writeServiceError(w, err, "Failed to fetch product", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, ProductResponse{Product: product})
		return
	}

	var n int
	if raw := query.Get("numberOfProducts"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "numberOfProducts must be a positive integer", h.logger)
			return
		}
		n = parsed
	}

	products, err := h.service.Products(r.Context(), splitIDs(query.Get("product_ids")), n)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch products", h.logger)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	writeJSON(w, http.StatusOK, ProductListResponse{Products: products})
}

// Collections handles GET /collections requests.
func (h *CatalogHandler) Collections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.Collections(r.Context(), splitIDs(r.URL.Query().Get("collectionsIds")))
	if err != nil {
		writeServiceError(w, err, "Failed to fetch collections", h.logger)
		return
	}
	if collections == nil {
		collections = []model.Collection{}
	}

	writeJSON(w, http.StatusOK, CollectionListResponse{Collections: collections})
}

// Collection handles GET /collections/{id} requests.
func (h *CatalogHandler) Collection(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.CollectionProducts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "Failed to fetch collection", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CollectionResponse{Collection: products})
}

// splitIDs parses a comma separated id list, dropping blanks.
func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
