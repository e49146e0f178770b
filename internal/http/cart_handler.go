package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/service"
)

type CartService interface {
	GetCart(ctx context.Context, owner domain.Identity) (*domain.Cart, error)
	AddItem(ctx context.Context, owner domain.Identity, productID int64, quantity int) (*service.AddItemResult, error)
	UpdateQuantity(ctx context.Context, owner domain.Identity, productID int64, quantity int) error
	RemoveItem(ctx context.Context, owner domain.Identity, productID int64) error
	ClearCart(ctx context.Context, owner domain.Identity) error
	Count(ctx context.Context, owner domain.Identity) (int, error)
}

type CartHandler struct {
	cart    CartService
	timeout time.Duration
	log     *logger.Logger
}

func NewCartHandler(cart CartService, timeout time.Duration, log *logger.Logger) *CartHandler {
	return &CartHandler{
		cart:    cart,
		timeout: timeout,
		log:     log,
	}
}

type CartItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity,omitempty"`
}

// quantity defaults to 1 when the field is absent.
func (r CartItemRequestDTO) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type CartItemDTO struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url"`
	LineTotal float64 `json:"line_total"`
}

type CartDTO struct {
	Items []CartItemDTO `json:"items"`
	Total float64       `json:"total"`
	Count int           `json:"count"`
}

type CountDTO struct {
	Count int `json:"count"`
}

type AddItemResponseDTO struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func toCartDTO(c *domain.Cart) CartDTO {
	items := make([]CartItemDTO, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, CartItemDTO{
			ID:        l.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Category:  l.Category,
			Price:     money(l.Price),
			Quantity:  l.Quantity,
			ImageURL:  l.ImageURL,
			LineTotal: money(l.LineTotal()),
		})
	}
	return CartDTO{Items: items, Total: money(c.Total), Count: c.Count}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.cart.GetCart(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

// GET /api/v1/cart/count
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	count, err := h.cart.Count(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, CountDTO{Count: count})
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "Invalid product")
		return
	}

	res, err := h.cart.AddItem(ctx, identityFromContext(r.Context()), req.ProductID, req.quantity())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, AddItemResponseDTO{
		Message: fmt.Sprintf("%s added to cart!", res.ProductName),
		Count:   res.Count,
	})
}

// PUT /api/v1/cart/items
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CartItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "Invalid product")
		return
	}

	if err := h.cart.UpdateQuantity(ctx, identityFromContext(r.Context()), req.ProductID, req.quantity()); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Cart updated"})
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := parseIDParam(w, r, "product_id")
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(ctx, identityFromContext(r.Context()), productID); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Item removed from cart"})
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.cart.ClearCart(ctx, identityFromContext(r.Context())); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Cart cleared"})
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
