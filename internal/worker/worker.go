package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type FulfillmentService interface {
	RetryNotifications(ctx context.Context, orderCh <-chan string)
	GetOrdersForNotification(ctx context.Context, orderCh chan<- string) error
}

// NotificationProcessor is worker re-sending license keys for completed
// orders whose delivery has not succeeded yet
type NotificationProcessor struct {
	svc    FulfillmentService
	logger *zap.Logger
}

// NewNotificationProcessor creates new notification processor
func NewNotificationProcessor(svc FulfillmentService, logger *zap.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		svc:    svc,
		logger: logger,
	}
}

// ProcessNotifications periodically feeds undelivered orders to the retry loop
func (np *NotificationProcessor) ProcessNotifications(ctx context.Context) {
	orders := make(chan string, 10)

	go np.svc.RetryNotifications(ctx, orders)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			np.logger.Debug("notification processor is done")
			return
		case <-ticker.C:
			if err := np.svc.GetOrdersForNotification(ctx, orders); err != nil {
				np.logger.Error("error get orders for notification", zap.Error(err))
			}
		}
	}
}
