package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/repository"
)

const maxIdempotencyKeyLen = 255

// CheckoutObserver receives the outcome of every checkout attempt.
type CheckoutObserver interface {
	ObserveCheckout(outcome string)
}

const (
	CheckoutCreated  = "created"
	CheckoutReplayed = "replayed"
	CheckoutEmpty    = "empty_cart"
	CheckoutRejected = "rejected"
	CheckoutFailed   = "failed"
)

type CheckoutService struct {
	repo     repository.OrderRepository
	log      *logger.Logger
	observer CheckoutObserver
}

func NewCheckoutService(repo repository.OrderRepository, log *logger.Logger, observer CheckoutObserver) *CheckoutService {
	return &CheckoutService{repo: repo, log: log, observer: observer}
}

// Checkout converts the owner's cart into a pending order. The cart is read,
// priced, persisted as an order and cleared in a single transaction; on any
// error nothing is written.
func (s *CheckoutService) Checkout(ctx context.Context, owner domain.Identity, shipping domain.ShippingInfo, idempotencyKey string) (*domain.Order, error) {
	log := s.log.FromContext(ctx).With("owner", owner.String())

	if err := owner.Validate(); err != nil {
		s.observe(CheckoutRejected)
		return nil, err
	}
	normalized, err := shipping.Normalize()
	if err != nil {
		s.observe(CheckoutRejected)
		return nil, err
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if len(idempotencyKey) > maxIdempotencyKeyLen {
		s.observe(CheckoutRejected)
		return nil, fmt.Errorf("%w: idempotency key is longer than %d characters", domain.ErrInvalidInput, maxIdempotencyKeyLen)
	}

	order, created, err := s.repo.PlaceOrder(ctx, owner, normalized, idempotencyKey)
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		s.observe(CheckoutEmpty)
		return nil, err
	case errors.Is(err, repository.ErrDuplicateCheckout):
		s.observe(CheckoutRejected)
		return nil, err
	case err != nil:
		s.observe(CheckoutFailed)
		log.Error("checkout failed, transaction rolled back", "error", err)
		return nil, err
	}

	if !created {
		s.observe(CheckoutReplayed)
		log.Info("checkout replayed", "order_id", order.ID)
		return order, nil
	}

	s.observe(CheckoutCreated)
	log.Info("order placed", "order_id", order.ID, "total", order.Totals.Total.StringFixed(2), "lines", len(order.Lines))
	return order, nil
}

func (s *CheckoutService) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveCheckout(outcome)
	}
}
