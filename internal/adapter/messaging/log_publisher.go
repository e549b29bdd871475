package messaging

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
)

// LogPublisher records orders in the application log only. It is the
// default sink for a demo install with no database or broker.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) RecordOrder(ctx context.Context, order domain.Order) error {
	p.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"lines":    len(order.Lines),
		"items":    order.Lines.ItemCount(),
		"total":    order.Totals.Total.StringFixed(2),
		"email":    order.Customer.Email,
	}).Info("order recorded")
	return nil
}
