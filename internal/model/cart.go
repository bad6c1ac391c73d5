package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnavailableNote is attached to stored items whose variant no longer exists.
const UnavailableNote = "This variant is no longer available on Shopify."

// CartItem represents a stored line in a user's cart.
type CartItem struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"userId" db:"user_id"`
	ShopifyProductID string          `json:"shopifyProductId" db:"shopify_product_id"`
	ShopifyVariantID string          `json:"shopifyVariantId" db:"shopify_variant_id"`
	Title            string          `json:"title" db:"title"`
	Price            decimal.Decimal `json:"price" db:"price"`
	Quantity         int             `json:"quantity" db:"quantity"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// WishlistItem represents a variant saved by a user.
type WishlistItem struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"userId" db:"user_id"`
	ShopifyProductID string          `json:"shopifyProductId" db:"shopify_product_id"`
	ShopifyVariantID string          `json:"shopifyVariantId" db:"shopify_variant_id"`
	Title            string          `json:"title" db:"title"`
	Price            decimal.Decimal `json:"price" db:"price"`
	Quantity         int             `json:"quantity" db:"quantity"`
	AddedAt          time.Time       `json:"addedAt" db:"added_at"`
}

// ReconciledItem is a stored cart or wishlist line checked against the
// live variant. Quantity and Price carry the adjusted values while
// QuantityUserInput keeps what the user originally asked for.
type ReconciledItem struct {
	ID                       uuid.UUID       `json:"id"`
	ShopifyProductID         string          `json:"shopifyProductId"`
	ShopifyVariantID         string          `json:"shopifyVariantId"`
	Title                    string          `json:"title"`
	Price                    decimal.Decimal `json:"price"`
	Quantity                 int             `json:"quantity"`
	QuantityUserInput        int             `json:"quantityUserInput"`
	VariantImage             string          `json:"variantImage,omitempty"`
	VariantInventoryQuantity int             `json:"variantInventoryQuantity"`
	Weight                   *Weight         `json:"weight,omitempty"`
	IsUnavailable            bool            `json:"isUnavailable"`
	IsOutOfStock             bool            `json:"isOutOfStock"`
	IsQuantityAdjusted       bool            `json:"isQuantityAdjusted"`
	IsPriceUpdated           bool            `json:"isPriceUpdated"`
	Note                     string          `json:"note,omitempty"`
}

// AddToCartRequest represents the request payload for adding a variant to the cart.
type AddToCartRequest struct {
	ShopifyProductID string          `json:"shopifyProductId"`
	ShopifyVariantID string          `json:"shopifyVariantId" validate:"required"`
	Title            string          `json:"title"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity" validate:"omitempty,gt=0"`
}

// UpdateCartItemRequest sets the quantity of a cart line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

// AddToWishlistRequest represents the request payload for saving a variant.
type AddToWishlistRequest struct {
	ShopifyProductID string          `json:"shopifyProductId"`
	ShopifyVariantID string          `json:"shopifyVariantId" validate:"required"`
	Title            string          `json:"title"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity" validate:"omitempty,gt=0"`
}

// RemoveFromWishlistRequest identifies the variant to remove.
type RemoveFromWishlistRequest struct {
	ShopifyVariantID string `json:"shopifyVariantId" validate:"required"`
}

// ReconciledCartResponse is the body of GET /cart.
type ReconciledCartResponse struct {
	Cart []ReconciledItem `json:"cart"`
}

// ReconciledWishlistResponse is the body of GET /wishlist.
type ReconciledWishlistResponse struct {
	Wishlist []ReconciledItem `json:"wishlist"`
}
