package http

import (
	"context"
	"net/http"
	"time"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
)

type OrderService interface {
	ListOrders(ctx context.Context, owner domain.Identity) ([]*domain.Order, error)
	GetOrder(ctx context.Context, owner domain.Identity, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, next domain.OrderStatus) error
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
	log     *logger.Logger
}

func NewOrdersHandler(orders OrderService, timeout time.Duration, log *logger.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		log:     log,
	}
}

type OrderItemDTO struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	LineTotal   float64 `json:"line_total"`
}

type OrderDTO struct {
	ID              int64          `json:"id"`
	Status          string         `json:"status"`
	ShippingName    string         `json:"shipping_name"`
	ShippingAddress string         `json:"shipping_address"`
	ShippingCity    string         `json:"shipping_city"`
	ShippingZip     string         `json:"shipping_zip"`
	Subtotal        float64        `json:"subtotal"`
	Shipping        float64        `json:"shipping"`
	Tax             float64        `json:"tax"`
	Total           float64        `json:"total"`
	CreatedAt       time.Time      `json:"created_at"`
	Items           []OrderItemDTO `json:"items,omitempty"`
}

type OrdersResponseDTO struct {
	Orders []OrderDTO `json:"orders"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

type UpdateStatusResponseDTO struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func toOrderDTO(o *domain.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		Status:          o.Status.String(),
		ShippingName:    o.Shipping.Name,
		ShippingAddress: o.Shipping.Address,
		ShippingCity:    o.Shipping.City,
		ShippingZip:     o.Shipping.Zip,
		Subtotal:        money(o.Totals.Subtotal),
		Shipping:        money(o.Totals.Shipping),
		Tax:             money(o.Totals.Tax),
		Total:           money(o.Totals.Total),
		CreatedAt:       o.CreatedAt,
	}
	for _, l := range o.Lines {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       money(l.UnitPrice),
			LineTotal:   money(l.LineTotal()),
		})
	}
	return dto
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp := OrdersResponseDTO{Orders: make([]OrderDTO, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, resp)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, ok := parseIDParam(w, r, "order_id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, identityFromContext(r.Context()), orderID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

// PATCH /api/v1/admin/orders/{order_id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, ok := parseIDParam(w, r, "order_id")
	if !ok {
		return
	}

	var req UpdateStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	next, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_status", "Invalid status")
		return
	}

	if err := h.orders.UpdateStatus(ctx, orderID, next); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, UpdateStatusResponseDTO{Message: "Order status updated", Status: next.String()})
}
