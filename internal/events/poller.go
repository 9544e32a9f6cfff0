package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const consumerGroup = "storefront-consumer"

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type CartClearer interface {
	ClearCart(ctx context.Context, clientID string)
}

type checkoutCompleted struct {
	ClientID string `json:"client_id"`
}

// Poller consumes catalog events, dropping the catalog cache, and completed
// checkouts, clearing the cart of the client that checked out.
type Poller struct {
	reader  *kafka.Reader
	catalog CacheInvalidator
	carts   CartClearer
	logger  *zap.Logger
}

func NewPoller(catalog CacheInvalidator, carts CartClearer, logger *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     consumerGroup,
		GroupTopics: []string{CatalogTopic, CheckoutTopic},
		MaxBytes:    10e6, // 10MB
	})
	return &Poller{
		reader:  reader,
		catalog: catalog,
		carts:   carts,
		logger:  logger,
	}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if errors.Is(err, io.EOF) {
			return // reader closed
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				p.logger.Warn("error reading message", zap.Error(err))
			}
			continue
		}
		p.handle(ctx, m)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("error closing reader", zap.Error(err))
	}
}

// handle applies one message. Malformed messages are logged and skipped.
func (p *Poller) handle(ctx context.Context, m kafka.Message) {
	log := p.logger.With(zap.String("topic", m.Topic), zap.Int64("offset", m.Offset))

	switch m.Topic {
	case CatalogTopic:
		var event domain.CatalogEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Warn("error parsing catalog event", zap.Error(err))
			return
		}
		if err := p.catalog.Invalidate(ctx); err != nil {
			log.Warn("failed to invalidate catalog cache", zap.Error(err))
			return
		}
		log.Debug("catalog cache invalidated",
			zap.String("event_type", event.Type),
			zap.String("entity_id", event.EntityID))

	case CheckoutTopic:
		var payload checkoutCompleted
		if err := json.Unmarshal(m.Value, &payload); err != nil {
			log.Warn("error parsing checkout event", zap.Error(err))
			return
		}
		if payload.ClientID == "" {
			log.Warn("checkout event without client_id")
			return
		}
		p.carts.ClearCart(ctx, payload.ClientID)
		log.Info("cart cleared after checkout", zap.String("client_id", payload.ClientID))

	default:
		log.Warn("message from unexpected topic")
	}
}
