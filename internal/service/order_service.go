package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/repository"
)

type OrderService struct {
	repo repository.OrderRepository
	log  *logger.Logger
}

func NewOrderService(repo repository.OrderRepository, log *logger.Logger) *OrderService {
	return &OrderService{repo: repo, log: log}
}

// ListOrders returns the orders of a logged in user, newest first.
func (s *OrderService) ListOrders(ctx context.Context, owner domain.Identity) ([]*domain.Order, error) {
	if !owner.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListOrdersByUser(ctx, owner.UserID)
}

func (s *OrderService) GetOrder(ctx context.Context, owner domain.Identity, orderID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: invalid order id", domain.ErrInvalidInput)
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, owner, orderID)
}

// UpdateStatus moves an order along the status table. Transitions not in the
// table, and transitions racing another update, fail with
// domain.ErrIllegalTransition.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, next domain.OrderStatus) error {
	if orderID <= 0 {
		return fmt.Errorf("%w: invalid order id", domain.ErrInvalidInput)
	}

	current, err := s.repo.GetOrderStatus(ctx, orderID)
	if err != nil {
		return err
	}
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, current, next)
	}

	err = s.repo.UpdateOrderStatus(ctx, orderID, current, next)
	if errors.Is(err, repository.ErrStaleStatus) {
		return fmt.Errorf("%w: %s -> %s: %v", domain.ErrIllegalTransition, current, next, err)
	}
	if err != nil {
		return err
	}

	s.log.FromContext(ctx).Info("order status changed", "order_id", orderID, "from", current.String(), "to", next.String())
	return nil
}
