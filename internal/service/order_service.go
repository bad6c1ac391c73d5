package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/shopify"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	userRepo    repository.UserRepository
	variants    VariantFetcher
	placer      OrderPlacer
	cfg         config.OrderConfig
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	userRepo repository.UserRepository,
	variants VariantFetcher,
	placer OrderPlacer,
	cfg config.OrderConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		variants:    variants,
		placer:      placer,
		cfg:         cfg,
		now:         time.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// pricedLine is a reconciled cart line ready to be ordered.
type pricedLine struct {
	cartItemID uuid.UUID
	variantID  string
	title      string
	price      decimal.Decimal
	quantity   int
	tax        decimal.Decimal
}

// Create places the caller's cart on the store. Lines are priced from live
// variant data and every line must be orderable.
func (s *orderService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.OrderResponse, error) {
	if req.Shipping.IsNegative() {
		return nil, model.ErrInvalidShipping
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	shippingAddr, err := s.address(ctx, userID, req.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	billingAddr := shippingAddr
	if req.BillingAddressID != nil && *req.BillingAddressID != req.ShippingAddressID {
		if billingAddr, err = s.address(ctx, userID, *req.BillingAddressID); err != nil {
			return nil, err
		}
	}

	lines, err := s.priceCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	subtotal, tax := decimal.Zero, decimal.Zero
	orderLines := make([]shopify.OrderLine, len(lines))
	for i, l := range lines {
		subtotal = subtotal.Add(l.price.Mul(decimal.NewFromInt(int64(l.quantity))))
		tax = tax.Add(l.tax)
		orderLines[i] = shopify.OrderLine{
			VariantID: l.variantID,
			Title:     l.title,
			Price:     l.price,
			Quantity:  l.quantity,
			Tax:       l.tax,
		}
	}
	total := subtotal.Add(tax).Add(req.Shipping)

	phone := shopify.NormalizePhone(shippingAddr.Phone, s.cfg.DialCode)
	placed, err := s.placer.CreateOrder(ctx, shopify.OrderInput{
		Currency:        s.cfg.Currency,
		Email:           user.Email,
		Phone:           phone,
		ShippingAddress: orderAddress(shippingAddr, phone),
		BillingAddress:  orderAddress(billingAddr, shopify.NormalizePhone(billingAddr.Phone, s.cfg.DialCode)),
		Lines:           orderLines,
		TaxTitle:        s.cfg.TaxTitle,
		TaxRate:         s.cfg.TaxRate,
		ShippingTitle:   s.cfg.ShippingTitle,
		Shipping:        req.Shipping,
		Total:           total,
		Gateway:         s.cfg.Gateway,
		Tags:            s.cfg.Tags,
		Note:            req.Note,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to place order")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	order := &model.Order{
		ID:             uuid.New(),
		UserID:         userID,
		ShopifyOrderID: placed.ID,
		Name:           placed.Name,
		Currency:       s.cfg.Currency,
		Subtotal:       subtotal,
		Tax:            tax,
		Shipping:       req.Shipping,
		Total:          total,
		Note:           req.Note,
		CreatedAt:      s.now().UTC(),
	}

	items := make([]model.OrderItem, len(lines))
	cartIDs := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		items[i] = model.OrderItem{
			ID:               uuid.New(),
			OrderID:          order.ID,
			ShopifyVariantID: l.variantID,
			Title:            l.title,
			Price:            l.price,
			Quantity:         l.quantity,
			Tax:              l.tax,
		}
		cartIDs[i] = l.cartItemID
	}

	if err := s.record(ctx, order, items, cartIDs); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("shopify_order_id", order.ShopifyOrderID).
		Int("item_count", len(items)).
		Str("total", total.StringFixed(2)).
		Msg("order created successfully")

	return &model.OrderResponse{Order: order, Items: items}, nil
}

func (s *orderService) address(ctx context.Context, userID, id uuid.UUID) (*model.ShippingAddress, error) {
	address, err := s.addressRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}
	return address, nil
}

// priceCart reconciles the cart and prices each line with the live price
// and the configured tax rate.
func (s *orderService) priceCart(ctx context.Context, userID uuid.UUID) ([]pricedLine, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stored := cartLines(items)
	if len(stored) == 0 {
		return nil, model.ErrNoValidItems
	}

	live, err := s.variants.FetchVariants(ctx, variantIDs(stored))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch live variants")
		return nil, fmt.Errorf("failed to fetch live variants: %w", err)
	}

	var blocked []string
	lines := make([]pricedLine, 0, len(stored))
	for _, item := range reconcile(stored, live) {
		if item.IsUnavailable || item.IsOutOfStock || item.Quantity <= 0 {
			blocked = append(blocked, item.Title)
			continue
		}
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, pricedLine{
			cartItemID: item.ID,
			variantID:  item.ShopifyVariantID,
			title:      item.Title,
			price:      item.Price,
			quantity:   item.Quantity,
			tax:        lineTotal.Mul(s.cfg.TaxRate).Round(2),
		})
	}

	if len(blocked) > 0 {
		s.logger.Warn().Strs("titles", blocked).Msg("cart has items that cannot be ordered")
		return nil, &model.StockError{Titles: blocked}
	}

	return lines, nil
}

// record stores the placed order and removes the ordered lines from the
// cart in one transaction.
func (s *orderService) record(ctx context.Context, order *model.Order, items []model.OrderItem, cartIDs []uuid.UUID) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("shopify_order_id", order.ShopifyOrderID).Msg("failed to begin transaction")
		return fmt.Errorf("failed to record order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("shopify_order_id", order.ShopifyOrderID).Msg("failed to record order")
		return fmt.Errorf("failed to record order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return fmt.Errorf("failed to create order items: %w", err)
	}

	removed, err := s.orderRepo.DeleteCartItems(ctx, tx, order.UserID, cartIDs)
	if err != nil {
		return fmt.Errorf("failed to record order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to record order: %w", err)
	}

	s.logger.Debug().Int64("cart_lines_removed", removed).Msg("ordered lines removed from cart")
	return nil
}

// Get returns one of the caller's orders with its lines.
func (s *orderService) Get(ctx context.Context, userID, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return &model.OrderResponse{Order: order, Items: items}, nil
}

// List returns the caller's orders, newest first.
func (s *orderService) List(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func orderAddress(a *model.ShippingAddress, phone string) shopify.OrderAddress {
	return shopify.OrderAddress{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		Province:  a.Province,
		Country:   a.Country,
		Zip:       a.PostalCode,
		Phone:     phone,
	}
}
