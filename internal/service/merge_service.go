package service

import (
	"context"
	"fmt"

	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/kookie-shop/storefront/internal/repository"
)

type MergeService struct {
	repo repository.CartRepository
	log  *logger.Logger
}

func NewMergeService(repo repository.CartRepository, log *logger.Logger) *MergeService {
	return &MergeService{repo: repo, log: log}
}

// Merge folds the anonymous cart behind sessionToken into the cart of userID.
// Either every guest line is folded and removed, or nothing changes.
func (s *MergeService) Merge(ctx context.Context, sessionToken string, userID int64) (int, error) {
	merged, err := s.repo.MergeGuestCart(ctx, sessionToken, userID)
	if err != nil {
		s.log.FromContext(ctx).Error("cart merge failed", "user_id", userID, "error", err)
		return 0, fmt.Errorf("merge guest cart: %w", err)
	}
	if merged > 0 {
		s.log.FromContext(ctx).Info("guest cart merged", "user_id", userID, "lines", merged)
	}
	return merged, nil
}
