package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(userID uuid.UUID, shopifyID string, createdAt time.Time) *model.Order {
	return &model.Order{
		ID:             uuid.New(),
		UserID:         userID,
		ShopifyOrderID: shopifyID,
		Name:           "#1001",
		Currency:       "PKR",
		Subtotal:       decimal.RequireFromString("59.98"),
		Tax:            decimal.RequireFromString("10.20"),
		Shipping:       decimal.RequireFromString("5.00"),
		Total:          decimal.RequireFromString("75.18"),
		CreatedAt:      createdAt,
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	carts := NewCartRepository(pool, zerolog.Nop())
	ctx := context.Background()

	owner := createTestUser(t, pool, "orders@example.com")
	stranger := createTestUser(t, pool, "stranger@example.com")

	ordered, err := carts.Upsert(ctx, newCartItem(owner.ID, "gid://shopify/ProductVariant/31", 2))
	require.NoError(t, err)
	kept, err := carts.Upsert(ctx, newCartItem(owner.ID, "gid://shopify/ProductVariant/32", 1))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	order := newOrder(owner.ID, "gid://shopify/Order/1", now)
	items := []model.OrderItem{{
		ID:               uuid.New(),
		OrderID:          order.ID,
		ShopifyVariantID: ordered.ShopifyVariantID,
		Title:            "Linen Shirt - M",
		Price:            decimal.RequireFromString("29.99"),
		Quantity:         2,
		Tax:              decimal.RequireFromString("10.20"),
	}}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	removed, err := repo.DeleteCartItems(ctx, tx, owner.ID, []uuid.UUID{ordered.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	require.NoError(t, tx.Commit(ctx))

	t.Run("order and items are stored", func(t *testing.T) {
		got, gotItems, err := repo.GetByID(ctx, owner.ID, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "gid://shopify/Order/1", got.ShopifyOrderID)
		assert.True(t, got.Total.Equal(order.Total))
		assert.True(t, got.CreatedAt.Equal(now))

		require.Len(t, gotItems, 1)
		assert.Equal(t, 2, gotItems[0].Quantity)
		assert.True(t, gotItems[0].Tax.Equal(items[0].Tax))
	})

	t.Run("ordered lines leave the cart", func(t *testing.T) {
		cart, err := carts.ListByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, cart, 1)
		assert.Equal(t, kept.ID, cart[0].ID)
	})

	t.Run("reads are scoped to owner", func(t *testing.T) {
		got, gotItems, err := repo.GetByID(ctx, stranger.ID, order.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Nil(t, gotItems)

		orders, err := repo.ListByUser(ctx, stranger.ID)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestOrderRepository_ListByUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()
	user := createTestUser(t, pool, "history@example.com")

	now := time.Now().UTC().Truncate(time.Microsecond)
	older := newOrder(user.ID, "gid://shopify/Order/10", now.Add(-time.Hour))
	newer := newOrder(user.ID, "gid://shopify/Order/11", now)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, older))
	require.NoError(t, repo.CreateOrder(ctx, tx, newer))
	require.NoError(t, tx.Commit(ctx))

	orders, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}

func TestOrderRepository_DuplicateShopifyOrder(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()
	user := createTestUser(t, pool, "dup@example.com")

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, repo.CreateOrder(ctx, tx, newOrder(user.ID, "gid://shopify/Order/7", time.Now().UTC())))
	err = repo.CreateOrder(ctx, tx, newOrder(user.ID, "gid://shopify/Order/7", time.Now().UTC()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create order")
}
