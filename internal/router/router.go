package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Auth     *handler.AuthHandler
	Cart     *handler.CartHandler
	Address  *handler.AddressHandler
	Discount *handler.DiscountHandler
	Order    *handler.OrderHandler
	Catalog  *handler.CatalogHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	AllowedOrigins string
	Tokens         middleware.TokenParser
	AuthLimiter    *middleware.RateLimiter
	Observer       middleware.HTTPObserver
	MetricsHandler http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> Logging -> Metrics -> CORS, with proxy headers resolved first.
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	if opts.Observer != nil {
		r.Use(middleware.Metrics(opts.Observer))
	}
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	// Session exchange (no authentication required)
	r.Get("/session/{id}", h.Auth.Session)

	// Credential endpoints, throttled per client IP
	r.Group(func(r chi.Router) {
		if opts.AuthLimiter != nil {
			r.Use(middleware.RateLimit(opts.AuthLimiter, logger))
		}
		r.Post("/signup", h.Auth.Signup)
		r.Post("/login", h.Auth.Login)
	})

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(opts.Tokens, logger))

		r.Post("/logout", h.Auth.Logout)
		r.Get("/verify-token", h.Auth.VerifyToken)
		r.Get("/profile", h.Auth.Profile)
		r.Get("/sessions", h.Auth.Sessions)

		r.Get("/verify-discount-code", h.Discount.Verify)
		r.Get("/discounts", h.Discount.Overview)

		r.Get("/cart", h.Cart.ListCart)
		r.Post("/add-to-cart", h.Cart.AddToCart)
		r.Put("/cart/{itemId}", h.Cart.UpdateCartItem)
		r.Delete("/cart/{itemId}", h.Cart.RemoveCartItem)
		r.Get("/cart-items-count", h.Cart.CartCount)

		r.Get("/wishlist", h.Cart.ListWishlist)
		r.Post("/add-to-wishlist", h.Cart.AddToWishlist)
		r.Delete("/remove-from-wishlist", h.Cart.RemoveFromWishlist)
		r.Get("/total-wishlist-items-count", h.Cart.WishlistCount)

		r.Get("/addresses", h.Address.List)
		r.Post("/add-shipping-address", h.Address.Create)
		r.Get("/address/{id}", h.Address.Get)
		r.Put("/address/{id}", h.Address.Update)
		r.Delete("/address/{id}", h.Address.Delete)

		r.Post("/create-order", h.Order.Create)
		r.Get("/orders", h.Order.List)
		r.Get("/orders/{id}", h.Order.Get)

		r.Get("/products", h.Catalog.Products)
		r.Get("/collections", h.Catalog.Collections)
		r.Get("/collections/{id}", h.Catalog.Collection)
	})

	return r
}
