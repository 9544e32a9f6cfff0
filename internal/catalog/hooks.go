package catalog

import (
	"context"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"go.uber.org/zap"
)

// Option configures the hooks that run after a catalog write.
type Option func(*hooks)

func WithInvalidator(inv Invalidator) Option {
	return func(h *hooks) { h.invalidator = inv }
}

func WithPublisher(pub EventPublisher) Option {
	return func(h *hooks) { h.publisher = pub }
}

func WithClock(now func() time.Time) Option {
	return func(h *hooks) { h.now = now }
}

type hooks struct {
	invalidator Invalidator
	publisher   EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

func newHooks(logger *zap.Logger, opts []Option) hooks {
	h := hooks{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// changed runs the post-mutation hooks. Their failures are logged only.
func (h *hooks) changed(ctx context.Context, eventType, entityID string) {
	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(ctx); err != nil {
			h.logger.Warn("catalog cache invalidation failed", zap.Error(err))
		}
	}

	if h.publisher != nil {
		event := domain.CatalogEvent{
			Type:       eventType,
			EntityID:   entityID,
			OccurredAt: h.now().UTC(),
		}
		if err := h.publisher.Publish(ctx, event); err != nil {
			h.logger.Warn("catalog event publish failed",
				zap.String("event_type", eventType),
				zap.String("entity_id", entityID),
				zap.Error(err))
		}
	}
}
