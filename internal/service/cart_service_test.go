package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartService_List(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("reconciles stored lines", func(t *testing.T) {
		repo := new(MockCartRepository)
		variants := new(MockVariantFetcher)
		svc := NewCartService(repo, variants, zerolog.Nop())

		items := []model.CartItem{
			{ID: uuid.New(), ShopifyVariantID: "101", Price: decimal.NewFromInt(20), Quantity: 4},
			{ID: uuid.New(), ShopifyVariantID: "102", Price: decimal.NewFromInt(5), Quantity: 1},
		}
		repo.On("ListByUser", ctx, userID).Return(items, nil)
		variants.On("FetchVariants", ctx, []string{"101", "102"}).Return([]model.Variant{
			{ID: "gid://shopify/ProductVariant/101", Title: "Mug", Price: decimal.NewFromInt(20), InventoryQuantity: 2},
		}, nil)

		got, err := svc.List(ctx, userID)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].IsQuantityAdjusted)
		assert.Equal(t, 2, got[0].Quantity)
		assert.True(t, got[1].IsUnavailable)

		repo.AssertExpectations(t)
		variants.AssertExpectations(t)
	})

	t.Run("empty cart skips the platform", func(t *testing.T) {
		repo := new(MockCartRepository)
		variants := new(MockVariantFetcher)
		svc := NewCartService(repo, variants, zerolog.Nop())

		repo.On("ListByUser", ctx, userID).Return([]model.CartItem{}, nil)

		got, err := svc.List(ctx, userID)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		variants.AssertNotCalled(t, "FetchVariants", mock.Anything, mock.Anything)
	})

	t.Run("platform failure", func(t *testing.T) {
		repo := new(MockCartRepository)
		variants := new(MockVariantFetcher)
		svc := NewCartService(repo, variants, zerolog.Nop())

		repo.On("ListByUser", ctx, userID).Return([]model.CartItem{{ShopifyVariantID: "1", Quantity: 1}}, nil)
		variants.On("FetchVariants", ctx, []string{"1"}).Return(nil, errors.New("timeout"))

		_, err := svc.List(ctx, userID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch live variants")
	})
}

func TestCartService_Add(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name             string
		quantity         int
		expectedQuantity int
		expectError      error
	}{
		{name: "default quantity is one", quantity: 0, expectedQuantity: 1},
		{name: "explicit quantity", quantity: 3, expectedQuantity: 3},
		{name: "negative quantity", quantity: -1, expectError: model.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCartRepository)
			svc := NewCartService(repo, new(MockVariantFetcher), zerolog.Nop())

			if tt.expectError == nil {
				repo.On("Upsert", ctx, mock.MatchedBy(func(it *model.CartItem) bool {
					return it.UserID == userID && it.Quantity == tt.expectedQuantity && it.ShopifyVariantID == "gid://shopify/ProductVariant/9"
				})).Return(&model.CartItem{Quantity: tt.expectedQuantity}, nil)
			}

			got, err := svc.Add(ctx, userID, &model.AddToCartRequest{
				ShopifyVariantID: "gid://shopify/ProductVariant/9",
				Price:            decimal.NewFromInt(12),
				Quantity:         tt.quantity,
			})

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedQuantity, got.Quantity)
			repo.AssertExpectations(t)
		})
	}
}

func TestCartService_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	userID, itemID := uuid.New(), uuid.New()

	repo := new(MockCartRepository)
	svc := NewCartService(repo, new(MockVariantFetcher), zerolog.Nop())

	assert.ErrorIs(t, svc.UpdateQuantity(ctx, userID, itemID, 0), model.ErrInvalidQuantity)

	repo.On("UpdateQuantity", ctx, userID, itemID, 4).Return(nil)
	assert.NoError(t, svc.UpdateQuantity(ctx, userID, itemID, 4))

	repo.On("Delete", ctx, userID, itemID).Return(model.ErrCartItemNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, userID, itemID), model.ErrCartItemNotFound)

	repo.On("CountItems", ctx, userID).Return(6, nil)
	count, err := svc.Count(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestWishlistService(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	repo := new(MockWishlistRepository)
	variants := new(MockVariantFetcher)
	svc := NewWishlistService(repo, variants, zerolog.Nop())

	repo.On("Add", ctx, mock.MatchedBy(func(it *model.WishlistItem) bool {
		return it.Quantity == 1 && it.ShopifyVariantID == "55"
	})).Return(&model.WishlistItem{ShopifyVariantID: "55", Quantity: 1}, nil)

	added, err := svc.Add(ctx, userID, &model.AddToWishlistRequest{ShopifyVariantID: "55"})
	require.NoError(t, err)
	assert.Equal(t, "55", added.ShopifyVariantID)

	repo.On("ListByUser", ctx, userID).Return([]model.WishlistItem{
		{ID: uuid.New(), ShopifyVariantID: "55", Price: decimal.NewFromInt(3), Quantity: 1},
	}, nil)
	variants.On("FetchVariants", ctx, []string{"55"}).Return([]model.Variant{
		{ID: "gid://shopify/ProductVariant/55", Price: decimal.NewFromInt(4), InventoryQuantity: 0},
	}, nil)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsOutOfStock)
	assert.True(t, list[0].IsPriceUpdated)

	repo.On("RemoveByVariant", ctx, userID, "55").Return(true, nil).Once()
	repo.On("RemoveByVariant", ctx, userID, "55").Return(false, nil).Once()

	removed, err := svc.Remove(ctx, userID, "55")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Remove(ctx, userID, "55")
	require.NoError(t, err)
	assert.False(t, removed)

	repo.On("Count", ctx, userID).Return(0, nil)
	count, err := svc.Count(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	repo.AssertExpectations(t)
}
