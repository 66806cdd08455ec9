package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rookgm/licensed/internal/models"
	"go.uber.org/zap"
)

// attempts to generate an unoccupied order id before giving up
const maxOrderIDAttempts = 10

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order, fails with models.ErrOrderExists on id collision
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// MutateOrder applies fn to the order under per-id exclusive lock.
	// If fn reports no change the record is left untouched.
	MutateOrder(ctx context.Context, id string, fn func(order *models.Order) (bool, error)) (*models.Order, error)
	// DeleteOrder removes order by id and reports whether it existed
	DeleteOrder(ctx context.Context, id string) (bool, error)
	// ListOrders returns all orders, newest first
	ListOrders(ctx context.Context) ([]models.Order, error)
	// GetUnnotifiedOrders returns completed orders without a delivered notification
	GetUnnotifiedOrders(ctx context.Context) ([]models.Order, error)
}

// OrderService manages license orders
type OrderService struct {
	repo   OrderRepository
	logger *zap.Logger
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		logger: logger,
	}
}

func validateOrder(order *models.Order) error {
	if len(order.MachineID) < 8 {
		return models.ErrInvalidMachineID
	}
	if !strings.Contains(order.Email, "@") {
		return models.ErrInvalidEmail
	}
	if !models.ValidLicenseType(order.Type) {
		return models.ErrInvalidLicenseType
	}
	if order.Amount <= 0 {
		return models.ErrInvalidAmount
	}
	return nil
}

// newOrderID generates random order id in TT#### format
func newOrderID() string {
	return fmt.Sprintf("TT%04d", rand.Intn(10000))
}

// Create validates and stores new pending order. The order id is
// generated here, a collision with an existing id is retried a bounded
// number of times.
func (os *OrderService) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusPending
	order.LicenseKey = nil
	order.NotifiedAt = nil

	var err error
	for i := 0; i < maxOrderIDAttempts; i++ {
		order.ID = newOrderID()
		now := time.Now().UTC()
		order.CreatedAt = now
		order.UpdatedAt = now

		var created *models.Order
		created, err = os.repo.CreateOrder(ctx, order)
		if err == nil {
			os.logger.Info("order created",
				zap.String("order", created.ID),
				zap.String("type", created.Type))
			return created, nil
		}
		if !errors.Is(err, models.ErrOrderExists) {
			return nil, err
		}
	}

	os.logger.Error("order id space exhausted", zap.Error(err))
	return nil, err
}

// List returns all orders, newest first
func (os *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return os.repo.ListOrders(ctx)
}

// Delete removes order by id and reports whether it existed
func (os *OrderService) Delete(ctx context.Context, id string) (bool, error) {
	existed, err := os.repo.DeleteOrder(ctx, id)
	if err != nil {
		return false, err
	}
	if existed {
		os.logger.Info("order deleted", zap.String("order", id))
	}
	return existed, nil
}
