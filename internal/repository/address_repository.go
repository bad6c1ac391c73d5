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

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *addressRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// ListByUser retrieves the user's addresses, default first.
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ShippingAddress, error) {
	query := `
		SELECT id, user_id, first_name, last_name, phone, address1, address2, city,
		       province, postal_code, country, type, is_default, created_at, updated_at
		FROM shipping_addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []model.ShippingAddress{}
	for rows.Next() {
		var a model.ShippingAddress
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Phone, &a.Address1, &a.Address2,
			&a.City, &a.Province, &a.PostalCode, &a.Country, &a.Type, &a.IsDefault,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating address rows")
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// GetByID retrieves an address owned by userID.
func (r *addressRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.ShippingAddress, error) {
	query := `
		SELECT id, user_id, first_name, last_name, phone, address1, address2, city,
		       province, postal_code, country, type, is_default, created_at, updated_at
		FROM shipping_addresses
		WHERE id = $1 AND user_id = $2
	`

	var a model.ShippingAddress
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Phone, &a.Address1, &a.Address2,
		&a.City, &a.Province, &a.PostalCode, &a.Country, &a.Type, &a.IsDefault,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("address_id", id.String()).Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}
	return &a, nil
}

// ClearDefault unsets the default flag on the user's other addresses.
func (r *addressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, userID, exceptID uuid.UUID) error {
	query := `
		UPDATE shipping_addresses
		SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND id <> $2 AND is_default
	`

	tag, err := tx.Exec(ctx, query, userID, exceptID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear default address")
		return fmt.Errorf("failed to clear default address: %w", err)
	}

	r.logger.Debug().Int64("cleared", tag.RowsAffected()).Msg("cleared previous default address")
	return nil
}

// Create inserts an address within the provided transaction.
func (r *addressRepository) Create(ctx context.Context, tx pgx.Tx, a *model.ShippingAddress) error {
	query := `
		INSERT INTO shipping_addresses (id, user_id, first_name, last_name, phone, address1, address2, city,
		                                province, postal_code, country, type, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, query,
		a.ID, a.UserID, a.FirstName, a.LastName, a.Phone, a.Address1, a.Address2, a.City,
		a.Province, a.PostalCode, a.Country, a.Type, a.IsDefault, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", a.ID.String()).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	r.logger.Debug().Str("address_id", a.ID.String()).Bool("is_default", a.IsDefault).Msg("address created")
	return nil
}

// Update overwrites an address owned by a.UserID within the provided transaction.
func (r *addressRepository) Update(ctx context.Context, tx pgx.Tx, a *model.ShippingAddress) error {
	query := `
		UPDATE shipping_addresses
		SET first_name = $3, last_name = $4, phone = $5, address1 = $6, address2 = $7, city = $8,
		    province = $9, postal_code = $10, country = $11, type = $12, is_default = $13, updated_at = $14
		WHERE id = $1 AND user_id = $2
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		a.ID, a.UserID, a.FirstName, a.LastName, a.Phone, a.Address1, a.Address2, a.City,
		a.Province, a.PostalCode, a.Country, a.Type, a.IsDefault, a.UpdatedAt,
	).Scan(&a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return model.ErrAddressNotFound
		}
		r.logger.Error().Err(err).Str("address_id", a.ID.String()).Msg("failed to update address")
		return fmt.Errorf("failed to update address: %w", err)
	}
	return nil
}

// Delete removes an address owned by userID.
func (r *addressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shipping_addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAddressNotFound
	}
	return nil
}
