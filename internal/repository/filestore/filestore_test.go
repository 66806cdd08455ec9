package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rookgm/licensed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*OrderStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.json")
	st, err := New(path)
	require.NoError(t, err)
	return st, path
}

func testOrder(id string, createdAt time.Time) *models.Order {
	return &models.Order{
		ID:        id,
		MachineID: "MACHINE-0001",
		Email:     "buyer@example.com",
		Type:      models.LicenseTypeMonthly,
		Amount:    200000,
		Status:    models.OrderStatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrderStore_CreateOrder(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateOrder(ctx, testOrder("TT1234", time.Now()))
	require.NoError(t, err)

	got, err := st.GetOrderByID(ctx, "TT1234")
	require.NoError(t, err)
	assert.Equal(t, "TT1234", got.ID)
	assert.Equal(t, models.OrderStatusPending, got.Status)

	// id collision must be rejected, not overwritten
	_, err = st.CreateOrder(ctx, testOrder("TT1234", time.Now()))
	assert.ErrorIs(t, err, models.ErrOrderExists)
}

func TestOrderStore_GetOrderByIDNotFound(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.GetOrderByID(context.Background(), "TT0000")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestOrderStore_MutateOrder(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	created := testOrder("TT1234", time.Now().Add(-time.Hour))
	_, err := st.CreateOrder(ctx, created)
	require.NoError(t, err)

	key := "M-MACHINE--20260101-c2ln"
	got, err := st.MutateOrder(ctx, "TT1234", func(order *models.Order) (bool, error) {
		order.Status = models.OrderStatusCompleted
		order.LicenseKey = &key
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
	require.NotNil(t, got.LicenseKey)
	assert.Equal(t, key, *got.LicenseKey)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))

	// unchanged transform leaves the record and updated_at alone
	unchangedAt := got.UpdatedAt
	got, err = st.MutateOrder(ctx, "TT1234", func(order *models.Order) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, unchangedAt, got.UpdatedAt)

	// transform error leaves the record alone
	wantErr := errors.New("boom")
	_, err = st.MutateOrder(ctx, "TT1234", func(order *models.Order) (bool, error) {
		order.Status = "GARBAGE"
		return true, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	got, err = st.GetOrderByID(ctx, "TT1234")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)

	_, err = st.MutateOrder(ctx, "TT0000", func(order *models.Order) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestOrderStore_DeleteOrder(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateOrder(ctx, testOrder("TT1234", time.Now()))
	require.NoError(t, err)

	existed, err := st.DeleteOrder(ctx, "TT1234")
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = st.GetOrderByID(ctx, "TT1234")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	existed, err = st.DeleteOrder(ctx, "TT1234")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestOrderStore_ListOrders(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"TT0001", "TT0002", "TT0003"} {
		_, err := st.CreateOrder(ctx, testOrder(id, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	orders, err := st.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	// newest first
	assert.Equal(t, "TT0003", orders[0].ID)
	assert.Equal(t, "TT0002", orders[1].ID)
	assert.Equal(t, "TT0001", orders[2].ID)
}

func TestOrderStore_Reload(t *testing.T) {
	st, path := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateOrder(ctx, testOrder("TT1234", time.Now()))
	require.NoError(t, err)

	key := "Y-MACHINE--20270101-c2ln"
	_, err = st.MutateOrder(ctx, "TT1234", func(order *models.Order) (bool, error) {
		order.Status = models.OrderStatusCompleted
		order.LicenseKey = &key
		return true, nil
	})
	require.NoError(t, err)

	// reopen from disk
	st2, err := New(path)
	require.NoError(t, err)

	got, err := st2.GetOrderByID(ctx, "TT1234")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
	require.NotNil(t, got.LicenseKey)
	assert.Equal(t, key, *got.LicenseKey)
}

func TestOrderStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New(path)
	assert.ErrorIs(t, err, models.ErrStoreCorrupted)
}

func TestOrderStore_GetUnnotifiedOrders(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateOrder(ctx, testOrder("TT0001", time.Now()))
	require.NoError(t, err)
	_, err = st.CreateOrder(ctx, testOrder("TT0002", time.Now()))
	require.NoError(t, err)

	key := "M-MACHINE--20260101-c2ln"
	now := time.Now().UTC()

	// TT0001 completed and notified, TT0002 completed without notification
	_, err = st.MutateOrder(ctx, "TT0001", func(order *models.Order) (bool, error) {
		order.Status = models.OrderStatusCompleted
		order.LicenseKey = &key
		order.NotifiedAt = &now
		return true, nil
	})
	require.NoError(t, err)
	_, err = st.MutateOrder(ctx, "TT0002", func(order *models.Order) (bool, error) {
		order.Status = models.OrderStatusCompleted
		order.LicenseKey = &key
		return true, nil
	})
	require.NoError(t, err)

	orders, err := st.GetUnnotifiedOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "TT0002", orders[0].ID)
}
