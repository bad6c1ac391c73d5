package service

import (
	"context"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// DefaultProductCount is how many products are listed when no ids are given.
const DefaultProductCount = 20

// catalogService implements CatalogService.
type catalogService struct {
	reader CatalogReader
	logger zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(reader CatalogReader, logger zerolog.Logger) CatalogService {
	return &catalogService{
		reader: reader,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) Products(ctx context.Context, ids []string, n int) ([]model.Product, error) {
	if len(ids) > 0 {
		return s.reader.FetchProductsByID(ctx, ids)
	}
	if n <= 0 {
		n = DefaultProductCount
	}
	return s.reader.FetchProducts(ctx, n)
}

func (s *catalogService) Product(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.reader.FetchProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

func (s *catalogService) Collections(ctx context.Context, ids []string) ([]model.Collection, error) {
	if len(ids) > 0 {
		return s.reader.FetchCollectionsByID(ctx, ids)
	}
	return s.reader.FetchCollections(ctx)
}

func (s *catalogService) CollectionProducts(ctx context.Context, id string) ([]model.CollectionProduct, error) {
	products, err := s.reader.FetchCollectionProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	if products == nil {
		s.logger.Debug().Str("collection_id", id).Msg("collection not found")
		return nil, model.ErrCollectionNotFound
	}
	return products, nil
}
