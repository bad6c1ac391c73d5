package service

import (
	"context"

	"storefront/internal/discount"
	"storefront/internal/model"
	"storefront/internal/shopify"

	"github.com/google/uuid"
)

// AuthService defines account and session operations.
type AuthService interface {
	// Signup creates an account, opens a session and returns a signed token.
	Signup(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error)

	// Login verifies credentials, opens a session and returns a signed token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Logout closes the caller's session.
	Logout(ctx context.Context, userID, sessionID uuid.UUID) error

	// CheckSession fails with model.ErrSessionExpired unless the session
	// exists, belongs to userID and has not expired.
	CheckSession(ctx context.Context, userID, sessionID uuid.UUID) error

	// ExchangeSession issues a fresh token for an unexpired session.
	ExchangeSession(ctx context.Context, sessionID uuid.UUID) (*model.AuthResponse, error)

	// Profile returns the caller's account.
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)

	// Sessions lists the caller's login sessions, newest first.
	Sessions(ctx context.Context, userID uuid.UUID) ([]model.Session, error)
}

// CartService defines cart operations.
type CartService interface {
	// List returns the user's cart reconciled against live variant data.
	List(ctx context.Context, userID uuid.UUID) ([]model.ReconciledItem, error)

	// Add inserts a variant or increments the quantity already in the cart.
	Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error)

	// UpdateQuantity sets the quantity of one cart line.
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error

	// Remove deletes one cart line.
	Remove(ctx context.Context, userID, itemID uuid.UUID) error

	// Count returns the total number of units in the cart.
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

// WishlistService defines wishlist operations.
type WishlistService interface {
	// List returns the user's wishlist reconciled against live variant data.
	List(ctx context.Context, userID uuid.UUID) ([]model.ReconciledItem, error)

	// Add saves a variant. Saving the same variant twice is a no-op.
	Add(ctx context.Context, userID uuid.UUID, req *model.AddToWishlistRequest) (*model.WishlistItem, error)

	// Remove deletes a saved variant and reports whether it was present.
	Remove(ctx context.Context, userID uuid.UUID, variantID string) (bool, error)

	// Count returns the number of saved variants.
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

// AddressService defines shipping address operations.
type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.ShippingAddress, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.ShippingAddress, error)
	Create(ctx context.Context, userID uuid.UUID, req *model.AddressRequest) (*model.ShippingAddress, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *model.AddressRequest) (*model.ShippingAddress, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// DiscountService defines discount code operations.
type DiscountService interface {
	// Verify validates a batch of codes and selects the applicable set.
	Verify(ctx context.Context, req discount.Request) (*discount.Report, error)

	// Overview lists every active discount with usage status.
	Overview(ctx context.Context) (*discount.Overview, error)
}

// OrderService defines order placement and history.
type OrderService interface {
	// Create places the caller's cart on the store and clears the ordered lines.
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.OrderResponse, error)

	// Get returns one of the caller's orders with its lines.
	Get(ctx context.Context, userID, id uuid.UUID) (*model.OrderResponse, error)

	// List returns the caller's orders, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
}

// CatalogService defines read access to the store catalog.
type CatalogService interface {
	// Products returns the listed products, or the first n products when ids is empty.
	Products(ctx context.Context, ids []string, n int) ([]model.Product, error)

	// Product returns one product with its options and variants.
	Product(ctx context.Context, id string) (*model.Product, error)

	// Collections returns the listed collections, or the first page when ids is empty.
	Collections(ctx context.Context, ids []string) ([]model.Collection, error)

	// CollectionProducts returns the published products of one collection.
	CollectionProducts(ctx context.Context, id string) ([]model.CollectionProduct, error)
}

// OrderPlacer creates orders on the commerce platform.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, in shopify.OrderInput) (*shopify.PlacedOrder, error)
}

// CatalogReader reads products and collections from the commerce platform.
// Single lookups return nil for unknown ids.
type CatalogReader interface {
	FetchProducts(ctx context.Context, first int) ([]model.Product, error)
	FetchProductsByID(ctx context.Context, ids []string) ([]model.Product, error)
	FetchProduct(ctx context.Context, id string) (*model.Product, error)
	FetchCollections(ctx context.Context) ([]model.Collection, error)
	FetchCollectionsByID(ctx context.Context, ids []string) ([]model.Collection, error)
	FetchCollectionProducts(ctx context.Context, id string) ([]model.CollectionProduct, error)
}

// VariantFetcher returns the live state of product variants. Unknown ids are
// omitted from the result.
type VariantFetcher interface {
	FetchVariants(ctx context.Context, ids []string) ([]model.Variant, error)
}
