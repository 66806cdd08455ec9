package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rookgm/licensed/internal/models"
	"github.com/rookgm/licensed/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertOrderQuery = `
						INSERT INTO orders (id, machine_id, email, type, amount, status, created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
						RETURNING id, machine_id, email, type, amount, status, license_key, notified_at, created_at, updated_at
`
	selectOrderByIDQuery = `
						SELECT id, machine_id, email, type, amount, status, license_key, notified_at, created_at, updated_at FROM orders
						WHERE id = $1
`
	selectOrderForUpdateQuery = `
						SELECT id, machine_id, email, type, amount, status, license_key, notified_at, created_at, updated_at FROM orders
						WHERE id = $1
						FOR UPDATE
`
	updateOrderQuery = `
						UPDATE orders
						SET status = $1, license_key = $2, notified_at = $3, updated_at = $4
						WHERE id = $5
`
	deleteOrderQuery = `
						DELETE FROM orders
						WHERE id = $1
`
	selectOrdersQuery = `
						SELECT id, machine_id, email, type, amount, status, license_key, notified_at, created_at, updated_at FROM orders
						ORDER BY created_at DESC
`
	selectUnnotifiedOrdersQuery = `
						SELECT id, machine_id, email, type, amount, status, license_key, notified_at, created_at, updated_at FROM orders
						WHERE status = 'COMPLETED' AND notified_at IS NULL
`
)

// OrderRepository implements order repository over postgres
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row pgx.Row, order *models.Order) error {
	return row.Scan(&order.ID, &order.MachineID, &order.Email, &order.Type, &order.Amount,
		&order.Status, &order.LicenseKey, &order.NotifiedAt, &order.CreatedAt, &order.UpdatedAt)
}

// CreateOrder inserts new order. It fails with models.ErrOrderExists
// if order id is already taken.
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	row := or.db.QueryRow(ctx, insertOrderQuery,
		order.ID, order.MachineID, order.Email, order.Type, order.Amount, order.Status,
		order.CreatedAt, order.UpdatedAt)
	if err := scanOrder(row, order); err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrOrderExists
		}
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order := models.Order{}
	if err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

// MutateOrder applies fn to the order under a row-level lock. If fn reports
// no change the row is left untouched. Two concurrent MutateOrder calls on
// the same id serialize on the row lock.
func (or *OrderRepository) MutateOrder(ctx context.Context, id string, fn func(order *models.Order) (bool, error)) (*models.Order, error) {
	tx, err := or.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order := models.Order{}
	if err := scanOrder(tx.QueryRow(ctx, selectOrderForUpdateQuery, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}

	changed, err := fn(&order)
	if err != nil {
		return nil, err
	}

	if changed {
		order.UpdatedAt = time.Now().UTC()
		if _, err := tx.Exec(ctx, updateOrderQuery,
			order.Status, order.LicenseKey, order.NotifiedAt, order.UpdatedAt, order.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &order, nil
}

// DeleteOrder removes order by id and reports whether it existed
func (or *OrderRepository) DeleteOrder(ctx context.Context, id string) (bool, error) {
	cmd, err := or.db.Exec(ctx, deleteOrderQuery, id)
	if err != nil {
		return false, err
	}

	return cmd.RowsAffected() > 0, nil
}

// ListOrders returns all orders, newest first
func (or *OrderRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersQuery)
}

// GetUnnotifiedOrders returns completed orders without a delivered notification
func (or *OrderRepository) GetUnnotifiedOrders(ctx context.Context) ([]models.Order, error) {
	return or.queryOrders(ctx, selectUnnotifiedOrdersQuery)
}

func (or *OrderRepository) queryOrders(ctx context.Context, query string) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order := models.Order{}
		if err := scanOrder(rows, &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
