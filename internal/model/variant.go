package model

import "github.com/shopspring/decimal"

// Weight is a variant's shipping weight as reported by the platform.
type Weight struct {
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// Variant is the live state of a product variant on the commerce platform.
type Variant struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity int             `json:"inventoryQuantity"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	Weight            *Weight         `json:"weight,omitempty"`
}
