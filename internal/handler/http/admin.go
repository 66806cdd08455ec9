package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/licensed/internal/models"
	"github.com/rookgm/licensed/internal/payment"
	"github.com/rookgm/licensed/internal/service"
)

//go:generate mockgen -source=admin.go -destination=mocks/mock_admin.go -package=mocks

type OrderAdminService interface {
	// List returns all orders, newest first
	List(ctx context.Context) ([]models.Order, error)
	// Delete removes order by id and reports whether it existed
	Delete(ctx context.Context, id string) (bool, error)
}

type ApprovalService interface {
	// Approve fulfills the order bypassing the amount check
	Approve(ctx context.Context, orderID string) (service.FulfillResult, error)
}

// AdminHandler represents HTTP handler for administrative requests
type AdminHandler struct {
	orders    OrderAdminService
	approvals ApprovalService
}

// NewAdminHandler creates new AdminHandler instance
func NewAdminHandler(orders OrderAdminService, approvals ApprovalService) *AdminHandler {
	return &AdminHandler{
		orders:    orders,
		approvals: approvals,
	}
}

// ListOrders returns all orders
// 200 — успешная обработка запроса;
// 401 — администратор не авторизован;
// 500 — внутренняя ошибка сервера.
func (ah *AdminHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := ah.orders.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(orders); err != nil {
			return
		}
	}
}

type approveOrderResponse struct {
	Fulfilled  bool   `json:"fulfilled"`
	Notified   bool   `json:"notified"`
	LicenseKey string `json:"license_key,omitempty"`
}

// ApproveOrder manually fulfills the order
// 200 — заказ выполнен;
// 401 — администратор не авторизован;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (ah *AdminHandler) ApproveOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "id")
		if !payment.ValidOrderID(orderID) {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		res, err := ah.approvals.Approve(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, models.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := approveOrderResponse{
			Fulfilled:  res.Fulfilled,
			Notified:   res.Notified,
			LicenseKey: res.LicenseKey,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

// DeleteOrder removes the order
// 204 — заказ удалён;
// 401 — администратор не авторизован;
// 404 — заказ не найден.
func (ah *AdminHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "id")
		if !payment.ValidOrderID(orderID) {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		existed, err := ah.orders.Delete(r.Context(), orderID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !existed {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
