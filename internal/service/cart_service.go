package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	repo     repository.CartRepository
	variants VariantFetcher
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, variants VariantFetcher, logger zerolog.Logger) CartService {
	return &cartService{
		repo:     repo,
		variants: variants,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// List returns the user's cart reconciled against live variant data.
func (s *cartService) List(ctx context.Context, userID uuid.UUID) ([]model.ReconciledItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := cartLines(items)
	if len(lines) == 0 {
		return []model.ReconciledItem{}, nil
	}

	live, err := s.variants.FetchVariants(ctx, variantIDs(lines))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch live variants")
		return nil, fmt.Errorf("failed to fetch live variants: %w", err)
	}

	reconciled := reconcile(lines, live)

	s.logger.Debug().
		Str("user_id", userID.String()).
		Int("lines", len(reconciled)).
		Msg("cart reconciled")

	return reconciled, nil
}

// Add inserts a variant or increments the quantity already in the cart.
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, model.ErrInvalidQuantity
	}

	now := time.Now().UTC()
	item := &model.CartItem{
		ID:               uuid.New(),
		UserID:           userID,
		ShopifyProductID: req.ShopifyProductID,
		ShopifyVariantID: req.ShopifyVariantID,
		Title:            req.Title,
		Price:            req.Price,
		Quantity:         quantity,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	stored, err := s.repo.Upsert(ctx, item)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("variant_id", req.ShopifyVariantID).
		Int("quantity", stored.Quantity).
		Msg("cart updated")

	return stored, nil
}

// UpdateQuantity sets the quantity of one cart line.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	return s.repo.UpdateQuantity(ctx, userID, itemID, quantity)
}

// Remove deletes one cart line.
func (s *cartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, itemID)
}

// Count returns the total number of units in the cart.
func (s *cartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountItems(ctx, userID)
}

// wishlistService implements WishlistService.
type wishlistService struct {
	repo     repository.WishlistRepository
	variants VariantFetcher
	logger   zerolog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(repo repository.WishlistRepository, variants VariantFetcher, logger zerolog.Logger) WishlistService {
	return &wishlistService{
		repo:     repo,
		variants: variants,
		logger:   logger.With().Str("service", "wishlist").Logger(),
	}
}

// List returns the user's wishlist reconciled against live variant data.
func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]model.ReconciledItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := wishlistLines(items)
	if len(lines) == 0 {
		return []model.ReconciledItem{}, nil
	}

	live, err := s.variants.FetchVariants(ctx, variantIDs(lines))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch live variants")
		return nil, fmt.Errorf("failed to fetch live variants: %w", err)
	}

	return reconcile(lines, live), nil
}

// Add saves a variant.
func (s *wishlistService) Add(ctx context.Context, userID uuid.UUID, req *model.AddToWishlistRequest) (*model.WishlistItem, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := &model.WishlistItem{
		ID:               uuid.New(),
		UserID:           userID,
		ShopifyProductID: req.ShopifyProductID,
		ShopifyVariantID: req.ShopifyVariantID,
		Title:            req.Title,
		Price:            req.Price,
		Quantity:         quantity,
		AddedAt:          time.Now().UTC(),
	}

	stored, err := s.repo.Add(ctx, item)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("variant_id", req.ShopifyVariantID).
		Msg("variant saved to wishlist")

	return stored, nil
}

// Remove deletes a saved variant and reports whether it was present.
func (s *wishlistService) Remove(ctx context.Context, userID uuid.UUID, variantID string) (bool, error) {
	return s.repo.RemoveByVariant(ctx, userID, variantID)
}

// Count returns the number of saved variants.
func (s *wishlistService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.Count(ctx, userID)
}
