package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Image is a product or collection image.
type Image struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

// ProductOption is a selectable product option such as size or colour.
type ProductOption struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ProductVariant is a purchasable variant as listed in the catalog.
type ProductVariant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	DisplayName       string           `json:"displayName,omitempty"`
	SKU               string           `json:"sku,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compareAtPrice,omitempty"`
	AvailableForSale  bool             `json:"availableForSale"`
	InventoryQuantity int              `json:"inventoryQuantity"`
	Image             *Image           `json:"image,omitempty"`
}

// Product is a catalog product.
type Product struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle,omitempty"`
	Description string           `json:"description"`
	Status      string           `json:"status,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Options     []ProductOption  `json:"options,omitempty"`
	Images      []Image          `json:"images"`
	Variants    []ProductVariant `json:"variants"`
}

// CollectionRef identifies the collection a listed product came from.
type CollectionRef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Description string `json:"description"`
}

// CollectionProduct is a published product of a collection.
type CollectionProduct struct {
	Product
	Collection CollectionRef `json:"collection"`
}

// Collection is a catalog collection. ActiveProductsCount is only set when
// collections are requested by id.
type Collection struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Handle              string     `json:"handle"`
	Description         string     `json:"description,omitempty"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
	Image               *Image     `json:"image,omitempty"`
	ProductsCount       int        `json:"productsCount"`
	ActiveProductsCount *int       `json:"activeProductsItemsCount,omitempty"`
}
