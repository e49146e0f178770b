package http

import (
	"context"
	"net/http"
	"time"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
)

type CheckoutService interface {
	Checkout(ctx context.Context, owner domain.Identity, shipping domain.ShippingInfo, idempotencyKey string) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
	log      *logger.Logger
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
		log:      log,
	}
}

type CheckoutRequestDTO struct {
	ShippingName    string `json:"shipping_name"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingZip     string `json:"shipping_zip"`
}

type CheckoutResponseDTO struct {
	Message  string  `json:"message"`
	OrderID  int64   `json:"order_id"`
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Status   string  `json:"status"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.checkout.Checkout(ctx, identityFromContext(r.Context()), domain.ShippingInfo{
		Name:    req.ShippingName,
		Address: req.ShippingAddress,
		City:    req.ShippingCity,
		Zip:     req.ShippingZip,
	}, r.Header.Get("Idempotency-Key"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Message:  "Order placed successfully!",
		OrderID:  order.ID,
		Subtotal: money(order.Totals.Subtotal),
		Shipping: money(order.Totals.Shipping),
		Tax:      money(order.Totals.Tax),
		Total:    money(order.Totals.Total),
		Status:   order.Status.String(),
	})
}
