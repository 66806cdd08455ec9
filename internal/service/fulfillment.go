package service

import (
	"context"
	"errors"
	"time"

	"github.com/rookgm/licensed/internal/models"
	"github.com/rookgm/licensed/internal/payment"
	"go.uber.org/zap"
)

// LicenseGenerator builds signed license keys
type LicenseGenerator interface {
	Generate(machineID, typ string, now time.Time) (string, error)
}

// Notifier delivers license key to the purchaser
type Notifier interface {
	Notify(ctx context.Context, order models.Order) error
}

// FulfillResult is outcome of a fulfillment attempt
type FulfillResult struct {
	Fulfilled  bool
	Notified   bool
	LicenseKey string
}

// PaymentResult is outcome of a reported payment
type PaymentResult struct {
	Matched    bool
	OrderID    string
	Fulfilled  bool
	Notified   bool
	LicenseKey string
}

// FulfillmentService transitions pending orders to completed. It is the
// only place where license keys are generated and the only writer of the
// COMPLETED status, both the payment webhook and the manual admin
// approval go through it.
type FulfillmentService struct {
	repo     OrderRepository
	gen      LicenseGenerator
	notifier Notifier
	logger   *zap.Logger
}

// NewFulfillmentService creates new FulfillmentService instance
func NewFulfillmentService(repo OrderRepository, gen LicenseGenerator, notifier Notifier, logger *zap.Logger) *FulfillmentService {
	return &FulfillmentService{
		repo:     repo,
		gen:      gen,
		notifier: notifier,
		logger:   logger,
	}
}

// Fulfill completes the order. Repeated calls, concurrent or not, generate
// the license key exactly once: every caller after the first observes the
// committed key. The notifier is invoked outside the store lock and only
// for the call that performed the transition, its failure does not revert
// the commit.
func (fs *FulfillmentService) Fulfill(ctx context.Context, orderID string) (FulfillResult, error) {
	transitioned := false

	order, err := fs.repo.MutateOrder(ctx, orderID, func(order *models.Order) (bool, error) {
		if order.IsCompleted() {
			return false, nil
		}

		key, err := fs.gen.Generate(order.MachineID, order.Type, time.Now().UTC())
		if err != nil {
			return false, err
		}

		order.Status = models.OrderStatusCompleted
		order.LicenseKey = &key
		transitioned = true
		return true, nil
	})
	if err != nil {
		if errors.Is(err, models.ErrSigningKeyMissing) {
			fs.logger.Error("fulfillment rejected, signing key is not configured",
				zap.String("order", orderID))
		}
		return FulfillResult{}, err
	}

	if order.LicenseKey == nil {
		// COMPLETED without a key means the store invariant is broken
		fs.logger.Error("completed order has no license key", zap.String("order", orderID))
		return FulfillResult{}, models.ErrInternalError
	}

	res := FulfillResult{
		Fulfilled:  true,
		LicenseKey: *order.LicenseKey,
		Notified:   order.NotifiedAt != nil,
	}

	if !transitioned {
		// idempotent replay, nothing to generate or deliver
		return res, nil
	}

	fs.logger.Info("order fulfilled", zap.String("order", order.ID))

	res.Notified = fs.deliver(ctx, *order)
	return res, nil
}

// deliver sends the license key and records delivery time. It reports
// whether the purchaser has been notified.
func (fs *FulfillmentService) deliver(ctx context.Context, order models.Order) bool {
	if err := fs.notifier.Notify(ctx, order); err != nil {
		fs.logger.Error("license notification failed",
			zap.String("order", order.ID),
			zap.Error(err))
		return false
	}

	now := time.Now().UTC()
	_, err := fs.repo.MutateOrder(ctx, order.ID, func(order *models.Order) (bool, error) {
		if order.NotifiedAt != nil {
			return false, nil
		}
		order.NotifiedAt = &now
		return true, nil
	})
	if err != nil {
		// the purchaser has the key, only the bookkeeping is behind
		fs.logger.Error("recording notification time failed",
			zap.String("order", order.ID),
			zap.Error(err))
	}

	return true
}

// ReportPayment drives the webhook path. The order id is extracted from
// free-text notification content and the paid amount must cover the
// order's expected amount before fulfillment runs.
func (fs *FulfillmentService) ReportPayment(ctx context.Context, content string, amount float64) (PaymentResult, error) {
	orderID, ok := payment.ExtractOrderID(content)
	if !ok {
		return PaymentResult{}, nil
	}

	res := PaymentResult{Matched: true, OrderID: orderID}

	order, err := fs.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return res, err
	}

	if !payment.PaidCovers(amount, order.Amount) {
		fs.logger.Info("payment amount is insufficient",
			zap.String("order", orderID),
			zap.Float64("paid", amount),
			zap.Float64("required", order.Amount))
		return res, models.ErrAmountInsufficient
	}

	fr, err := fs.Fulfill(ctx, orderID)
	if err != nil {
		return res, err
	}

	res.Fulfilled = fr.Fulfilled
	res.Notified = fr.Notified
	res.LicenseKey = fr.LicenseKey
	return res, nil
}

// Approve drives the manual admin path. It is a human override, the
// amount check is skipped.
func (fs *FulfillmentService) Approve(ctx context.Context, orderID string) (FulfillResult, error) {
	return fs.Fulfill(ctx, orderID)
}

// RetryNotifications re-sends license keys for orders from the channel
func (fs *FulfillmentService) RetryNotifications(ctx context.Context, orderCh <-chan string) {
	for {
		var errTooManyReq models.TooManyRequestsError
		select {
		case <-ctx.Done():
			fs.logger.Debug("notification retry is done")
			return
		case orderID, ok := <-orderCh:
			if !ok {
				return
			}

			order, err := fs.repo.GetOrderByID(ctx, orderID)
			if err != nil {
				fs.logger.Error("get order for notification", zap.String("order", orderID))
				continue
			}
			if !order.IsCompleted() || order.NotifiedAt != nil {
				continue
			}

			if err := fs.notifier.Notify(ctx, *order); err != nil {
				if errors.As(err, &errTooManyReq) {
					fs.logger.Debug("notification gateway throttled",
						zap.Duration("retry-after", errTooManyReq.RetryAfter))
					time.Sleep(errTooManyReq.RetryAfter)
					continue
				}
				fs.logger.Error("license notification retry failed",
					zap.String("order", orderID),
					zap.Error(err))
				continue
			}

			now := time.Now().UTC()
			_, err = fs.repo.MutateOrder(ctx, orderID, func(order *models.Order) (bool, error) {
				if order.NotifiedAt != nil {
					return false, nil
				}
				order.NotifiedAt = &now
				return true, nil
			})
			if err != nil {
				fs.logger.Error("recording notification time failed",
					zap.String("order", orderID),
					zap.Error(err))
			}
		}
	}
}

// GetOrdersForNotification writes undelivered order ids to channel
func (fs *FulfillmentService) GetOrdersForNotification(ctx context.Context, orderCh chan<- string) error {
	orders, err := fs.repo.GetUnnotifiedOrders(ctx)
	if err != nil {
		return err
	}

	for _, order := range orders {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case orderCh <- order.ID:
		}
	}

	return nil
}
