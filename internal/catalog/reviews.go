package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reviews lets signed-in users rate products.
type Reviews struct {
	hooks
	store ReviewStore
}

func NewReviews(store ReviewStore, logger *zap.Logger, opts ...Option) *Reviews {
	return &Reviews{
		hooks: newHooks(logger, opts),
		store: store,
	}
}

func (s *Reviews) List(ctx context.Context, productID string) ([]*domain.Review, error) {
	return s.store.ListReviews(ctx, productID)
}

// Add records author's review of productID. Only Rating and Comment are taken from r.
func (s *Reviews) Add(ctx context.Context, author domain.User, productID string, r domain.Review) (*domain.Review, error) {
	if author.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	review := domain.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    author.ID,
		UserName:  author.Name,
		Rating:    r.Rating,
		Comment:   strings.TrimSpace(r.Comment),
		CreatedAt: s.now().UTC(),
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.AddReview(ctx, &review); err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}

	s.logger.Info("review added",
		zap.String("product_id", productID),
		zap.String("user_id", author.ID),
		zap.Int("rating", review.Rating))
	s.changed(ctx, domain.EventProductUpdated, productID)
	return &review, nil
}
