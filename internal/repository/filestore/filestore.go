package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rookgm/licensed/internal/models"
)

// OrderStore keeps orders in a single JSON file. All records live in
// memory, every change is committed by writing a temporary file and
// renaming it over the old one so a crash never leaves a half-written
// store behind.
type OrderStore struct {
	mu     sync.Mutex
	path   string
	orders map[string]*models.Order
}

// New opens order store at path. A missing file starts an empty store,
// an unreadable one fails with models.ErrStoreCorrupted rather than
// silently dropping orders.
func New(path string) (*OrderStore, error) {
	st := &OrderStore{
		path:   path,
		orders: make(map[string]*models.Order),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &st.orders); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrStoreCorrupted, err)
		}
	}

	return st, nil
}

// persist commits current state to disk. Caller must hold mu.
func (st *OrderStore) persist() error {
	data, err := json.MarshalIndent(st.orders, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(st.path), ".orders-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), st.path)
}

func cloneOrder(order *models.Order) *models.Order {
	cp := *order
	if order.LicenseKey != nil {
		key := *order.LicenseKey
		cp.LicenseKey = &key
	}
	if order.NotifiedAt != nil {
		at := *order.NotifiedAt
		cp.NotifiedAt = &at
	}
	return &cp
}

// CreateOrder inserts new order. It fails with models.ErrOrderExists
// if order id is already taken.
func (st *OrderStore) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.orders[order.ID]; ok {
		return nil, models.ErrOrderExists
	}

	st.orders[order.ID] = cloneOrder(order)
	if err := st.persist(); err != nil {
		delete(st.orders, order.ID)
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by id
func (st *OrderStore) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	order, ok := st.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}

	return cloneOrder(order), nil
}

// MutateOrder applies fn to the order under the store lock. If fn reports
// no change the record is left untouched.
func (st *OrderStore) MutateOrder(_ context.Context, id string, fn func(order *models.Order) (bool, error)) (*models.Order, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	order, ok := st.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}

	next := cloneOrder(order)

	changed, err := fn(next)
	if err != nil {
		return nil, err
	}

	if !changed {
		return next, nil
	}

	next.UpdatedAt = time.Now().UTC()
	st.orders[id] = next
	if err := st.persist(); err != nil {
		st.orders[id] = order
		return nil, err
	}

	return cloneOrder(next), nil
}

// DeleteOrder removes order by id and reports whether it existed
func (st *OrderStore) DeleteOrder(_ context.Context, id string) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	order, ok := st.orders[id]
	if !ok {
		return false, nil
	}

	delete(st.orders, id)
	if err := st.persist(); err != nil {
		st.orders[id] = order
		return false, err
	}

	return true, nil
}

// ListOrders returns all orders, newest first
func (st *OrderStore) ListOrders(_ context.Context) ([]models.Order, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	orders := make([]models.Order, 0, len(st.orders))
	for _, order := range st.orders {
		orders = append(orders, *cloneOrder(order))
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

// GetUnnotifiedOrders returns completed orders without a delivered notification
func (st *OrderStore) GetUnnotifiedOrders(_ context.Context) ([]models.Order, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	orders := []models.Order{}
	for _, order := range st.orders {
		if order.Status == models.OrderStatusCompleted && order.NotifiedAt == nil {
			orders = append(orders, *cloneOrder(order))
		}
	}

	return orders, nil
}
