package service

import (
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	weight := &model.Weight{Unit: "KILOGRAMS", Value: 0.4}

	tests := []struct {
		name     string
		line     storedLine
		variants []model.Variant
		check    func(t *testing.T, got model.ReconciledItem)
	}{
		{
			name: "variant gone",
			line: storedLine{VariantID: "111", Title: "Old title", Price: decimal.NewFromInt(10), Quantity: 2},
			check: func(t *testing.T, got model.ReconciledItem) {
				assert.True(t, got.IsUnavailable)
				assert.Equal(t, model.UnavailableNote, got.Note)
				assert.Equal(t, "Old title", got.Title)
				assert.Equal(t, 2, got.Quantity)
				assert.Equal(t, 2, got.QuantityUserInput)
			},
		},
		{
			name: "in stock and unchanged",
			line: storedLine{VariantID: "222", Price: decimal.NewFromInt(10), Quantity: 2},
			variants: []model.Variant{{
				ID: "gid://shopify/ProductVariant/222", Title: "Shirt - M", Price: decimal.NewFromInt(10),
				InventoryQuantity: 5, ImageURL: "https://cdn.example.com/m.png", Weight: weight,
			}},
			check: func(t *testing.T, got model.ReconciledItem) {
				assert.False(t, got.IsUnavailable)
				assert.False(t, got.IsOutOfStock)
				assert.False(t, got.IsQuantityAdjusted)
				assert.False(t, got.IsPriceUpdated)
				assert.Equal(t, "Shirt - M", got.Title)
				assert.Equal(t, "https://cdn.example.com/m.png", got.VariantImage)
				assert.Equal(t, 5, got.VariantInventoryQuantity)
				assert.Equal(t, weight, got.Weight)
				assert.Empty(t, got.Note)
			},
		},
		{
			name: "out of stock",
			line: storedLine{VariantID: "gid://shopify/ProductVariant/333", Price: decimal.NewFromInt(10), Quantity: 3},
			variants: []model.Variant{{
				ID: "gid://shopify/ProductVariant/333", Price: decimal.NewFromInt(10), InventoryQuantity: 0,
			}},
			check: func(t *testing.T, got model.ReconciledItem) {
				assert.True(t, got.IsOutOfStock)
				assert.False(t, got.IsQuantityAdjusted)
				assert.Equal(t, 0, got.Quantity)
				assert.Equal(t, 3, got.QuantityUserInput)
			},
		},
		{
			name: "quantity capped at inventory",
			line: storedLine{VariantID: "444", Price: decimal.NewFromInt(10), Quantity: 8},
			variants: []model.Variant{{
				ID: "gid://shopify/ProductVariant/444", Price: decimal.NewFromInt(10), InventoryQuantity: 3,
			}},
			check: func(t *testing.T, got model.ReconciledItem) {
				assert.True(t, got.IsQuantityAdjusted)
				assert.Equal(t, 3, got.Quantity)
				assert.Equal(t, 8, got.QuantityUserInput)
			},
		},
		{
			name: "price went up",
			line: storedLine{VariantID: "555", Price: decimal.RequireFromString("19.99"), Quantity: 1},
			variants: []model.Variant{{
				ID: "gid://shopify/ProductVariant/555", Price: decimal.RequireFromString("24.99"), InventoryQuantity: 10,
			}},
			check: func(t *testing.T, got model.ReconciledItem) {
				assert.True(t, got.IsPriceUpdated)
				assert.True(t, decimal.RequireFromString("24.99").Equal(got.Price))
			},
		},
		{
			name: "price drop keeps stored price",
			line: storedLine{VariantID: "666", Price: decimal.RequireFromString("19.99"), Quantity: 1},
			variants: []model.Variant{{
				ID: "gid://shopify/ProductVariant/666", Price: decimal.RequireFromString("9.99"), InventoryQuantity: 10,
			}},
			check: func(t *testing.T, got model.ReconciledItem) {
				assert.False(t, got.IsPriceUpdated)
				assert.True(t, decimal.RequireFromString("19.99").Equal(got.Price))
			},
		},
		{
			name: "numeric id does not match a longer id",
			line: storedLine{VariantID: "77", Price: decimal.NewFromInt(1), Quantity: 1},
			variants: []model.Variant{{
				ID: "gid://shopify/ProductVariant/177", Price: decimal.NewFromInt(1), InventoryQuantity: 1,
			}},
			check: func(t *testing.T, got model.ReconciledItem) {
				assert.True(t, got.IsUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.line.ID = uuid.New()
			got := reconcile([]storedLine{tt.line}, tt.variants)
			require.Len(t, got, 1)
			assert.Equal(t, tt.line.ID, got[0].ID)
			tt.check(t, got[0])
		})
	}
}

func TestReconcile_PreservesOrder(t *testing.T) {
	lines := []storedLine{
		{ID: uuid.New(), VariantID: "1", Quantity: 1},
		{ID: uuid.New(), VariantID: "2", Quantity: 1},
		{ID: uuid.New(), VariantID: "3", Quantity: 1},
	}
	variants := []model.Variant{
		{ID: "gid://shopify/ProductVariant/3", InventoryQuantity: 1},
		{ID: "gid://shopify/ProductVariant/1", InventoryQuantity: 1},
	}

	got := reconcile(lines, variants)

	require.Len(t, got, 3)
	for i := range lines {
		assert.Equal(t, lines[i].ID, got[i].ID)
	}
	assert.True(t, got[1].IsUnavailable)
}
