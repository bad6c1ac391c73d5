package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a placed order mirrored from the commerce platform.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"userId" db:"user_id"`
	ShopifyOrderID string          `json:"shopifyOrderId" db:"shopify_order_id"`
	Name           string          `json:"name" db:"name"`
	Currency       string          `json:"currency" db:"currency"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax            decimal.Decimal `json:"tax" db:"tax"`
	Shipping       decimal.Decimal `json:"shipping" db:"shipping"`
	Total          decimal.Decimal `json:"total" db:"total"`
	Note           string          `json:"note,omitempty" db:"note"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID               uuid.UUID       `json:"-" db:"id"`
	OrderID          uuid.UUID       `json:"-" db:"order_id"`
	ShopifyVariantID string          `json:"shopifyVariantId" db:"shopify_variant_id"`
	Title            string          `json:"title" db:"title"`
	Price            decimal.Decimal `json:"price" db:"price"`
	Quantity         int             `json:"quantity" db:"quantity"`
	Tax              decimal.Decimal `json:"tax" db:"tax"`
}

// CreateOrderRequest places the caller's current cart. The billing address
// defaults to the shipping address.
type CreateOrderRequest struct {
	ShippingAddressID uuid.UUID       `json:"shippingAddressId" validate:"required"`
	BillingAddressID  *uuid.UUID      `json:"billingAddressId,omitempty"`
	Shipping          decimal.Decimal `json:"shipping"`
	Note              string          `json:"note"`
}

// OrderResponse is an order with its lines.
type OrderResponse struct {
	*Order
	Items []OrderItem `json:"items"`
}
