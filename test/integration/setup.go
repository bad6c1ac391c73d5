package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and
// the application schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "shipping_addresses", "wishlist_items", "cart_items", "sessions", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// FakeVariant is the live state served for one variant.
type FakeVariant struct {
	Title     string
	Price     string
	Inventory int
}

// FakeProduct is a catalog product served under its numeric id.
type FakeProduct struct {
	Title  string
	Price  string
	Status string
}

// FakeCollection lists the numeric ids of its products.
type FakeCollection struct {
	Title      string
	ProductIDs []string
}

// FakeShopify serves the GraphQL operations the application sends:
// discount listing, variant and catalog lookups, and order creation.
type FakeShopify struct {
	Server *httptest.Server

	mu          sync.Mutex
	discounts   string
	variants    map[string]FakeVariant
	products    map[string]FakeProduct
	collections map[string]FakeCollection
	orders      []map[string]any
	rejectOrder string
	fail        bool
}

// NewFakeShopify starts a fake Admin API closed at test cleanup.
func NewFakeShopify(t *testing.T) *FakeShopify {
	t.Helper()

	f := &FakeShopify{
		variants:    make(map[string]FakeVariant),
		products:    make(map[string]FakeProduct),
		collections: make(map[string]FakeCollection),
		discounts:   `{"codeDiscountNodes":{"nodes":[]}}`,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// Endpoint is the GraphQL URL to configure the client with.
func (f *FakeShopify) Endpoint() string {
	return f.Server.URL + "/admin/api/2025-07/graphql.json"
}

// SetDiscounts replaces the "data" payload of the discount query.
func (f *FakeShopify) SetDiscounts(data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discounts = data
}

// SetVariant registers a live variant under its numeric id.
func (f *FakeShopify) SetVariant(id string, v FakeVariant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.variants[id] = v
}

// SetProduct registers a catalog product under its numeric id.
func (f *FakeShopify) SetProduct(id string, p FakeProduct) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id] = p
}

// SetCollection registers a collection under its numeric id.
func (f *FakeShopify) SetCollection(id string, c FakeCollection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[id] = c
}

// RejectOrders makes orderCreate answer with a user error carrying msg.
// An empty msg accepts orders again.
func (f *FakeShopify) RejectOrders(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectOrder = msg
}

// Orders returns the order inputs received so far.
func (f *FakeShopify) Orders() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.orders...)
}

// SetFailing makes every request answer 502.
func (f *FakeShopify) SetFailing(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *FakeShopify) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}

	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	var data any
	switch {
	case strings.Contains(req.Query, "codeDiscountNodes"):
		fmt.Fprintf(w, `{"data":%s}`, f.discounts)
		return
	case strings.Contains(req.Query, "mutation orderCreate"):
		data = f.createOrder(req.Variables)
	case strings.Contains(req.Query, "query productsByID"):
		data = map[string]any{"nodes": f.nodes(req.Variables, f.productNode)}
	case strings.Contains(req.Query, "query products("):
		nodes := []any{}
		for id := range f.products {
			nodes = append(nodes, f.productNode(id))
		}
		data = map[string]any{"products": map[string]any{"nodes": nodes}}
	case strings.Contains(req.Query, "query product("):
		data = map[string]any{"product": f.productNode(numericID(req.Variables["id"]))}
	case strings.Contains(req.Query, "query collectionsByID"):
		data = map[string]any{"nodes": f.nodes(req.Variables, f.collectionNode)}
	case strings.Contains(req.Query, "query collections("):
		nodes := []any{}
		for id := range f.collections {
			nodes = append(nodes, f.collectionNode(id))
		}
		data = map[string]any{"collections": map[string]any{"nodes": nodes}}
	case strings.Contains(req.Query, "query collectionProducts"):
		data = map[string]any{"collection": f.collectionNode(numericID(req.Variables["id"]))}
	default:
		data = map[string]any{"nodes": f.nodes(req.Variables, f.variantNode)}
	}
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func numericID(raw any) string {
	gid, _ := raw.(string)
	return gid[strings.LastIndex(gid, "/")+1:]
}

// nodes answers a nodes(ids:) lookup, with null for unknown ids.
func (f *FakeShopify) nodes(vars map[string]any, node func(id string) any) []any {
	ids, _ := vars["ids"].([]any)
	out := make([]any, 0, len(ids))
	for _, raw := range ids {
		out = append(out, node(numericID(raw)))
	}
	return out
}

func (f *FakeShopify) variantNode(id string) any {
	v, ok := f.variants[id]
	if !ok {
		return nil
	}
	return map[string]any{
		"id":                "gid://shopify/ProductVariant/" + id,
		"title":             v.Title,
		"price":             v.Price,
		"inventoryQuantity": v.Inventory,
	}
}

func (f *FakeShopify) productNode(id string) any {
	p, ok := f.products[id]
	if !ok {
		return nil
	}
	status := p.Status
	if status == "" {
		status = "ACTIVE"
	}
	return map[string]any{
		"id":          "gid://shopify/Product/" + id,
		"title":       p.Title,
		"description": "",
		"status":      status,
		"images":      map[string]any{"nodes": []any{}},
		"variants": map[string]any{"nodes": []any{map[string]any{
			"id":    "gid://shopify/ProductVariant/" + id + "1",
			"title": "Default",
			"price": p.Price,
		}}},
	}
}

func (f *FakeShopify) collectionNode(id string) any {
	c, ok := f.collections[id]
	if !ok {
		return nil
	}
	products := make([]any, 0, len(c.ProductIDs))
	for _, pid := range c.ProductIDs {
		if node := f.productNode(pid); node != nil {
			products = append(products, node)
		}
	}
	return map[string]any{
		"id":            "gid://shopify/Collection/" + id,
		"title":         c.Title,
		"handle":        strings.ToLower(c.Title),
		"productsCount": map[string]any{"count": len(c.ProductIDs)},
		"products":      map[string]any{"nodes": products},
	}
}

func (f *FakeShopify) createOrder(vars map[string]any) any {
	if f.rejectOrder != "" {
		return map[string]any{"orderCreate": map[string]any{
			"userErrors": []any{map[string]any{"field": []string{"order"}, "message": f.rejectOrder}},
			"order":      nil,
		}}
	}

	order, _ := vars["order"].(map[string]any)
	f.orders = append(f.orders, order)
	n := 1000 + len(f.orders)
	return map[string]any{"orderCreate": map[string]any{
		"userErrors": []any{},
		"order": map[string]any{
			"id":   fmt.Sprintf("gid://shopify/Order/%d", n),
			"name": fmt.Sprintf("#%d", n),
		},
	}}
}

// CleanupCart removes every cart line of the account behind resp.
func CleanupCart(t *testing.T, db *TestDB, resp model.AuthResponse) {
	t.Helper()

	if _, err := db.Pool.Exec(context.Background(), "DELETE FROM cart_items WHERE user_id = $1", resp.User.ID); err != nil {
		t.Logf("failed to clean cart: %v", err)
	}
}
