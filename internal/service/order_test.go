package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/rookgm/licensed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var orderIDFormat = regexp.MustCompile(`^TT\d{4}$`)

func newOrderRequest() *models.Order {
	return &models.Order{
		MachineID: "MACHINE-0001",
		Email:     "buyer@example.com",
		Type:      models.LicenseTypeMonthly,
		Amount:    200000,
	}
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(ctx, newOrderRequest())
	require.NoError(t, err)

	assert.Regexp(t, orderIDFormat, created.ID)
	assert.Equal(t, models.OrderStatusPending, created.Status)
	assert.Nil(t, created.LicenseKey)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	stored, err := repo.GetOrderByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
}

func TestOrderService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(order *models.Order)
		wantErr error
	}{
		{
			name:    "short_machine_id",
			mutate:  func(order *models.Order) { order.MachineID = "ABC" },
			wantErr: models.ErrInvalidMachineID,
		},
		{
			name:    "empty_machine_id",
			mutate:  func(order *models.Order) { order.MachineID = "" },
			wantErr: models.ErrInvalidMachineID,
		},
		{
			name:    "empty_email",
			mutate:  func(order *models.Order) { order.Email = "" },
			wantErr: models.ErrInvalidEmail,
		},
		{
			name:    "unknown_type",
			mutate:  func(order *models.Order) { order.Type = "W" },
			wantErr: models.ErrInvalidLicenseType,
		},
		{
			name:    "zero_amount",
			mutate:  func(order *models.Order) { order.Amount = 0 },
			wantErr: models.ErrInvalidAmount,
		},
		{
			name:    "negative_amount",
			mutate:  func(order *models.Order) { order.Amount = -1 },
			wantErr: models.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewOrderService(newFakeOrderRepo(), zap.NewNop())

			order := newOrderRequest()
			tt.mutate(order)

			_, err := svc.Create(context.Background(), order)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// collidingRepo rejects the first n creations with ErrOrderExists
type collidingRepo struct {
	*fakeOrderRepo
	rejections int
}

func (c *collidingRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if c.rejections > 0 {
		c.rejections--
		return nil, models.ErrOrderExists
	}
	return c.fakeOrderRepo.CreateOrder(ctx, order)
}

func TestOrderService_CreateRetriesCollisions(t *testing.T) {
	repo := &collidingRepo{fakeOrderRepo: newFakeOrderRepo(), rejections: 3}
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), newOrderRequest())
	require.NoError(t, err)
	assert.Regexp(t, orderIDFormat, created.ID)
}

func TestOrderService_CreateIDSpaceExhausted(t *testing.T) {
	repo := &collidingRepo{fakeOrderRepo: newFakeOrderRepo(), rejections: maxOrderIDAttempts}
	svc := NewOrderService(repo, zap.NewNop())

	_, err := svc.Create(context.Background(), newOrderRequest())
	assert.ErrorIs(t, err, models.ErrOrderExists)
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(ctx, newOrderRequest())
	require.NoError(t, err)

	existed, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = repo.GetOrderByID(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	existed, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}
