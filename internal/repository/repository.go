package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields model.ErrEmailTaken.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail retrieves a user by email. Returns nil when not found.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user by ID. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// SessionRepository defines the interface for login session storage.
type SessionRepository interface {
	// Create inserts a new session.
	Create(ctx context.Context, session *model.Session) error

	// GetByID retrieves a session by ID. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)

	// ListByUser retrieves the user's sessions, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Session, error)

	// Delete removes a session owned by userID. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// ListByUser retrieves every cart line of a user, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// Upsert inserts the line or, when the user already has the variant,
	// increments its quantity by item.Quantity. Returns the stored line.
	Upsert(ctx context.Context, item *model.CartItem) (*model.CartItem, error)

	// UpdateQuantity sets the quantity of a line owned by userID.
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error

	// Delete removes a line owned by userID.
	Delete(ctx context.Context, userID, itemID uuid.UUID) error

	// CountItems returns the sum of quantities in the user's cart.
	CountItems(ctx context.Context, userID uuid.UUID) (int, error)
}

// WishlistRepository defines the interface for wishlist data access operations.
type WishlistRepository interface {
	// ListByUser retrieves every saved variant of a user, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error)

	// Add saves a variant. Adding an already saved variant returns the existing row.
	Add(ctx context.Context, item *model.WishlistItem) (*model.WishlistItem, error)

	// RemoveByVariant deletes the user's entry for a variant and reports whether one existed.
	RemoveByVariant(ctx context.Context, userID uuid.UUID, variantID string) (bool, error)

	// Count returns the number of saved variants.
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

// AddressRepository defines the interface for shipping address data access operations.
type AddressRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// ListByUser retrieves the user's addresses, default first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ShippingAddress, error)

	// GetByID retrieves an address owned by userID. Returns nil when not found.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.ShippingAddress, error)

	// ClearDefault unsets the default flag on every address of the user
	// except exceptID, within the provided transaction.
	ClearDefault(ctx context.Context, tx pgx.Tx, userID, exceptID uuid.UUID) error

	// Create inserts an address within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, address *model.ShippingAddress) error

	// Update overwrites an address owned by address.UserID within the provided transaction.
	Update(ctx context.Context, tx pgx.Tx, address *model.ShippingAddress) error

	// Delete removes an address owned by userID.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// DeleteCartItems removes the ordered lines from the user's cart within
	// the provided transaction and returns how many were removed.
	DeleteCartItems(ctx context.Context, tx pgx.Tx, userID uuid.UUID, itemIDs []uuid.UUID) (int64, error)

	// GetByID retrieves an order owned by userID along with its items.
	// Returns nil when not found.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// ListByUser retrieves the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
}
