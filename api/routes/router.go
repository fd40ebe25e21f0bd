package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jewel109/mobiledoor-api/api/controllers"
	cartcontrollers "github.com/jewel109/mobiledoor-api/api/controllers/cart"
	ordercontrollers "github.com/jewel109/mobiledoor-api/api/controllers/orders"
	"github.com/jewel109/mobiledoor-api/api/middleware"
	"github.com/jewel109/mobiledoor-api/internal/authz"
	"github.com/jewel109/mobiledoor-api/internal/cart"
	"github.com/jewel109/mobiledoor-api/internal/orders"
	products "github.com/jewel109/mobiledoor-api/internal/products"
	"github.com/jewel109/mobiledoor-api/pkg/config"
	"github.com/jewel109/mobiledoor-api/pkg/logger"
	"github.com/jewel109/mobiledoor-api/pkg/metrics"
	"github.com/jewel109/mobiledoor-api/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	productService products.Service,
	cartService cart.Service,
	cartValidator cartcontrollers.CheckoutValidator,
	ordersSvc orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	// A nil *redis.Client must stay a nil interface so the middlewares
	// fall through instead of calling into it.
	var idempotencyStore redis.IdempotencyStore
	var limiter middleware.FixedWindowLimiter
	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["db"] = dbP
	}
	if redisClient != nil {
		idempotencyStore = redisClient
		limiter = redisClient
		deps["redis"] = redisClient
	}

	checkoutPolicy := middleware.RateLimitPolicy{
		Name:   "checkout",
		Limit:  cfg.RateLimit.CheckoutLimit,
		Window: cfg.RateLimit.CheckoutWindow,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(productService, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(cfg.Idempotency, idempotencyStore, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(cartService, logg))
				r.Delete("/", cartcontrollers.CartClear(cartService, logg))
				r.Get("/validate", cartcontrollers.CartValidate(cartValidator, logg))
				r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
				r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(cartService, logg))
				r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(cartService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(middleware.UserRateLimit(checkoutPolicy, limiter, logg)).
					Post("/", ordercontrollers.CreateOrder(ordersSvc, logg))
				r.Get("/", ordercontrollers.ListOrders(ordersSvc, logg))
				r.Get("/stats", ordercontrollers.OrderStats(ordersSvc, logg))
				r.Get("/{orderId}", ordercontrollers.OrderDetail(ordersSvc, logg))
				r.Post("/{orderId}/cancel", ordercontrollers.CancelOrder(ordersSvc, logg))
			})

			r.Route("/admin/orders", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(authz.CapManageOrders, logg))
					r.Get("/", ordercontrollers.AdminListOrders(ordersSvc, logg))
					r.Get("/stats", ordercontrollers.AdminOrderStats(ordersSvc, logg))
					r.Patch("/{orderId}/status", ordercontrollers.AdminUpdateStatus(ordersSvc, logg))
				})
				r.With(middleware.RequireCapability(authz.CapManagePayments, logg)).
					Patch("/{orderId}/payment-status", ordercontrollers.AdminUpdatePaymentStatus(ordersSvc, logg))
			})
		})
	})

	return r
}
