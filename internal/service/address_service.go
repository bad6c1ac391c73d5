package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// addressService implements AddressService.
type addressService struct {
	repo   repository.AddressRepository
	logger zerolog.Logger
}

// NewAddressService creates a new shipping address service.
func NewAddressService(repo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		repo:   repo,
		logger: logger.With().Str("service", "address").Logger(),
	}
}

func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]model.ShippingAddress, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *addressService) Get(ctx context.Context, userID, id uuid.UUID) (*model.ShippingAddress, error) {
	address, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) Create(ctx context.Context, userID uuid.UUID, req *model.AddressRequest) (*model.ShippingAddress, error) {
	now := time.Now().UTC()
	address := &model.ShippingAddress{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(address)

	if err := s.save(ctx, address, s.repo.Create); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("address_id", address.ID.String()).
		Bool("is_default", address.IsDefault).
		Msg("address created")

	return address, nil
}

func (s *addressService) Update(ctx context.Context, userID, id uuid.UUID, req *model.AddressRequest) (*model.ShippingAddress, error) {
	address := &model.ShippingAddress{
		ID:        id,
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}
	req.Apply(address)

	if err := s.save(ctx, address, s.repo.Update); err != nil {
		return nil, err
	}

	s.logger.Info().Str("address_id", id.String()).Msg("address updated")
	return address, nil
}

func (s *addressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

// save writes the address and, when it is the new default, clears the flag
// on the user's other addresses in the same transaction.
func (s *addressService) save(
	ctx context.Context,
	address *model.ShippingAddress,
	write func(context.Context, pgx.Tx, *model.ShippingAddress) error,
) (err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to save address: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if address.IsDefault {
		if err = s.repo.ClearDefault(ctx, tx, address.UserID, address.ID); err != nil {
			return err
		}
	}

	if err = write(ctx, tx, address); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("address_id", address.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to save address: %w", err)
	}

	return nil
}
