package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

const cartColumns = `id, user_id, shopify_product_id, shopify_variant_id, title, price, quantity, created_at, updated_at`

func scanCartItem(row pgx.Row) (model.CartItem, error) {
	var c model.CartItem
	err := row.Scan(
		&c.ID, &c.UserID, &c.ShopifyProductID, &c.ShopifyVariantID,
		&c.Title, &c.Price, &c.Quantity, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// ListByUser retrieves every cart line of a user.
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Upsert inserts the line or increments the quantity of an existing one.
func (r *cartRepository) Upsert(ctx context.Context, item *model.CartItem) (*model.CartItem, error) {
	query := `
		INSERT INTO cart_items (id, user_id, shopify_product_id, shopify_variant_id, title, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id, shopify_variant_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING ` + cartColumns

	stored, err := scanCartItem(r.pool.QueryRow(ctx, query,
		item.ID, item.UserID, item.ShopifyProductID, item.ShopifyVariantID,
		item.Title, item.Price, item.Quantity, item.CreatedAt,
	))
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", item.UserID.String()).
			Str("variant_id", item.ShopifyVariantID).
			Msg("failed to upsert cart item")
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	r.logger.Debug().
		Str("cart_item_id", stored.ID.String()).
		Int("quantity", stored.Quantity).
		Msg("cart item stored")

	return &stored, nil
}

// UpdateQuantity sets the quantity of a line owned by userID.
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	query := `UPDATE cart_items SET quantity = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, itemID, userID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", itemID.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}

// Delete removes a line owned by userID.
func (r *cartRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", itemID.String()).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}

// CountItems returns the sum of quantities in the user's cart.
func (r *cartRepository) CountItems(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}
