package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kookie-shop/storefront/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type MetricsProvider interface {
	RequestObserver
	Handler() http.Handler
}

type RouterDeps struct {
	Cart     CartService
	Checkout CheckoutService
	Orders   OrderService
	Auth     AuthService
	Sessions SessionResolver
	DB       Pinger
	Metrics  MetricsProvider
	Log      *logger.Logger

	Cookie         CookieConfig
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	AdminAPIKey    string
	ServiceName    string
}

// NewRouter wires every route of the storefront API. The returned handler is
// instrumented with OpenTelemetry.
func NewRouter(d RouterDeps) http.Handler {
	cartHandler := NewCartHandler(d.Cart, d.RequestTimeout, d.Log)
	checkoutHandler := NewCheckoutHandler(d.Checkout, d.RequestTimeout, d.Log)
	ordersHandler := NewOrdersHandler(d.Orders, d.RequestTimeout, d.Log)
	authHandler := NewAuthHandler(d.Auth, d.Cookie, d.RequestTimeout, d.Log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(Metrics(d.Metrics))
	}
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(LimitBody(d.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			d.Log.FromContext(r.Context()).Warn("health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(d.Sessions, d.Cookie, d.Log))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Get("/count", cartHandler.Count)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})

			r.Post("/checkout", checkoutHandler.Checkout)

			r.Get("/orders", ordersHandler.ListOrders)
			r.Get("/orders/{order_id}", ordersHandler.GetOrder)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/logout", authHandler.Logout)
				r.Get("/check", authHandler.Check)
				r.Get("/user", authHandler.User)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminKey(d.AdminAPIKey))
			r.Patch("/admin/orders/{order_id}/status", ordersHandler.UpdateStatus)
		})
	})

	return otelhttp.NewHandler(r, d.ServiceName)
}
