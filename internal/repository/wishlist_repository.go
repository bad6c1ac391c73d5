package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// wishlistRepository implements the WishlistRepository interface using PostgreSQL.
type wishlistRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool *pgxpool.Pool, logger zerolog.Logger) WishlistRepository {
	return &wishlistRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "wishlist").Logger(),
	}
}

const wishlistColumns = `id, user_id, shopify_product_id, shopify_variant_id, title, price, quantity, added_at`

func scanWishlistItem(row pgx.Row) (model.WishlistItem, error) {
	var w model.WishlistItem
	err := row.Scan(
		&w.ID, &w.UserID, &w.ShopifyProductID, &w.ShopifyVariantID,
		&w.Title, &w.Price, &w.Quantity, &w.AddedAt,
	)
	return w, err
}

// ListByUser retrieves every saved variant of a user.
func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlist_items WHERE user_id = $1 ORDER BY added_at, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query wishlist items")
		return nil, fmt.Errorf("failed to query wishlist items: %w", err)
	}
	defer rows.Close()

	items := []model.WishlistItem{}
	for rows.Next() {
		item, err := scanWishlistItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan wishlist item row")
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating wishlist item rows")
		return nil, fmt.Errorf("error iterating wishlist items: %w", err)
	}

	return items, nil
}

// Add saves a variant, returning the existing row when it is already saved.
func (r *wishlistRepository) Add(ctx context.Context, item *model.WishlistItem) (*model.WishlistItem, error) {
	insert := `
		INSERT INTO wishlist_items (id, user_id, shopify_product_id, shopify_variant_id, title, price, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, shopify_variant_id) DO NOTHING
		RETURNING ` + wishlistColumns

	stored, err := scanWishlistItem(r.pool.QueryRow(ctx, insert,
		item.ID, item.UserID, item.ShopifyProductID, item.ShopifyVariantID,
		item.Title, item.Price, item.Quantity, item.AddedAt,
	))
	if err == nil {
		r.logger.Debug().Str("wishlist_item_id", stored.ID.String()).Msg("wishlist item added")
		return &stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Str("variant_id", item.ShopifyVariantID).Msg("failed to add wishlist item")
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	// Conflict: the variant is already saved.
	existing, err := scanWishlistItem(r.pool.QueryRow(ctx,
		`SELECT `+wishlistColumns+` FROM wishlist_items WHERE user_id = $1 AND shopify_variant_id = $2`,
		item.UserID, item.ShopifyVariantID,
	))
	if err != nil {
		r.logger.Error().Err(err).Str("variant_id", item.ShopifyVariantID).Msg("failed to load existing wishlist item")
		return nil, fmt.Errorf("failed to load existing wishlist item: %w", err)
	}
	return &existing, nil
}

// RemoveByVariant deletes the user's entry for a variant.
func (r *wishlistRepository) RemoveByVariant(ctx context.Context, userID uuid.UUID, variantID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND shopify_variant_id = $2`,
		userID, variantID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("variant_id", variantID).Msg("failed to remove wishlist item")
		return false, fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Count returns the number of saved variants.
func (r *wishlistRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`, userID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to count wishlist items")
		return 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}
	return count, nil
}
