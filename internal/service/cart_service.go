package service

import (
	"context"
	"fmt"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/repository"
)

type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	log      *logger.Logger
}

func NewCartService(repo repository.CartRepository, products repository.ProductRepository, log *logger.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		log:      log,
	}
}

type AddItemResult struct {
	ProductName string
	Count       int
}

// GetCart reads the owner's lines on every call. Totals and count are derived
// from that read, never from state kept between requests.
func (s *CartService) GetCart(ctx context.Context, owner domain.Identity) (*domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	lines, err := s.repo.ListLines(ctx, owner)
	if err != nil {
		s.log.FromContext(ctx).Error("get cart failed", "owner", owner.String(), "error", err)
		return nil, err
	}
	return domain.NewCart(owner, lines), nil
}

// AddItem adds quantity of a product, treating a non-positive quantity as 1.
func (s *CartService) AddItem(ctx context.Context, owner domain.Identity, productID int64, quantity int) (*AddItemResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if productID <= 0 {
		return nil, fmt.Errorf("%w: invalid product id", domain.ErrInvalidInput)
	}
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if errAdd := s.repo.AddLine(ctx, owner, productID, quantity); errAdd != nil {
		s.log.FromContext(ctx).Error("repo add item error", "owner", owner.String(), "product_id", productID, "error", errAdd)
		return nil, errAdd
	}

	count, err := s.repo.CountItems(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &AddItemResult{ProductName: product.Name, Count: count}, nil
}

// UpdateQuantity sets the line quantity; a non-positive quantity removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, owner domain.Identity, productID int64, quantity int) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if productID <= 0 {
		return fmt.Errorf("%w: invalid product id", domain.ErrInvalidInput)
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, owner, productID)
	}

	if errUpdate := s.repo.SetLineQuantity(ctx, owner, productID, quantity); errUpdate != nil {
		s.log.FromContext(ctx).Error("repo update item quantity error", "owner", owner.String(), "product_id", productID, "error", errUpdate)
		return errUpdate
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, owner domain.Identity, productID int64) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if productID <= 0 {
		return fmt.Errorf("%w: invalid product id", domain.ErrInvalidInput)
	}

	if errRemove := s.repo.RemoveLine(ctx, owner, productID); errRemove != nil {
		s.log.FromContext(ctx).Error("repo remove item error", "owner", owner.String(), "product_id", productID, "error", errRemove)
		return errRemove
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, owner domain.Identity) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	if errClear := s.repo.ClearCart(ctx, owner); errClear != nil {
		s.log.FromContext(ctx).Error("repo clear cart error", "owner", owner.String(), "error", errClear)
		return errClear
	}
	return nil
}

func (s *CartService) Count(ctx context.Context, owner domain.Identity) (int, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}
	return s.repo.CountItems(ctx, owner)
}
