package service

import (
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// storedLine is the part of a cart or wishlist row that reconciliation reads.
type storedLine struct {
	ID        uuid.UUID
	ProductID string
	VariantID string
	Title     string
	Price     decimal.Decimal
	Quantity  int
}

func cartLines(items []model.CartItem) []storedLine {
	lines := make([]storedLine, len(items))
	for i, it := range items {
		lines[i] = storedLine{it.ID, it.ShopifyProductID, it.ShopifyVariantID, it.Title, it.Price, it.Quantity}
	}
	return lines
}

func wishlistLines(items []model.WishlistItem) []storedLine {
	lines := make([]storedLine, len(items))
	for i, it := range items {
		lines[i] = storedLine{it.ID, it.ShopifyProductID, it.ShopifyVariantID, it.Title, it.Price, it.Quantity}
	}
	return lines
}

func variantIDs(lines []storedLine) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.VariantID
	}
	return ids
}

// reconcile checks stored lines against live variants. Nothing is written
// back: the adjusted quantity and price are only reported.
func reconcile(lines []storedLine, variants []model.Variant) []model.ReconciledItem {
	out := make([]model.ReconciledItem, 0, len(lines))

	for _, line := range lines {
		item := model.ReconciledItem{
			ID:                line.ID,
			ShopifyProductID:  line.ProductID,
			ShopifyVariantID:  line.VariantID,
			Title:             line.Title,
			Price:             line.Price,
			Quantity:          line.Quantity,
			QuantityUserInput: line.Quantity,
		}

		live, ok := findVariant(variants, line.VariantID)
		if !ok {
			item.IsUnavailable = true
			item.Note = model.UnavailableNote
			out = append(out, item)
			continue
		}

		item.Title = live.Title
		item.VariantImage = live.ImageURL
		item.VariantInventoryQuantity = live.InventoryQuantity
		item.Weight = live.Weight

		switch {
		case live.InventoryQuantity <= 0:
			item.IsOutOfStock = true
			item.Quantity = 0
		case line.Quantity > live.InventoryQuantity:
			item.IsQuantityAdjusted = true
			item.Quantity = live.InventoryQuantity
		}

		if live.Price.GreaterThan(line.Price) {
			item.IsPriceUpdated = true
			item.Price = live.Price
		}

		out = append(out, item)
	}

	return out
}

// findVariant matches a stored id, either numeric or a global id, against
// the global ids returned by the platform.
func findVariant(variants []model.Variant, storedID string) (model.Variant, bool) {
	for _, v := range variants {
		if v.ID == storedID || strings.HasSuffix(v.ID, "/"+storedID) {
			return v, true
		}
	}
	return model.Variant{}, false
}
