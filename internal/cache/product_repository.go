package cache

import (
	"context"
	"errors"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/repository"
)

// CachedProducts puts a cache-aside layer in front of the catalog. Cache
// failures are logged and fall through to the database. Checkout never reads
// through here: order prices always come from the products table.
type CachedProducts struct {
	repo  repository.ProductRepository
	cache ProductCache
	log   *logger.Logger
}

var _ repository.ProductRepository = (*CachedProducts)(nil)

func NewCachedProducts(repo repository.ProductRepository, cache ProductCache, log *logger.Logger) *CachedProducts {
	return &CachedProducts{repo: repo, cache: cache, log: log}
}

func (c *CachedProducts) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := c.cache.Get(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.log.FromContext(ctx).Warn("product cache read failed", "product_id", id, "error", err)
	}

	p, err = c.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, p); err != nil {
		c.log.FromContext(ctx).Warn("product cache write failed", "product_id", id, "error", err)
	}
	return p, nil
}
