package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rookgm/licensed/internal/models"
)

//go:generate mockgen -source=order.go -destination=mocks/mock_order.go -package=mocks

type OrderService interface {
	// Create validates and stores new pending order
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	MachineID string  `json:"machine_id"`
	Email     string  `json:"email"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
}

type createOrderResponse struct {
	OrderID      string `json:"order_id"`
	Instructions string `json:"instructions"`
}

// CreateOrder creates new pending license order
// 201 — заказ создан;
// 400 — неверный формат запроса;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order := models.Order{
			MachineID: req.MachineID,
			Email:     req.Email,
			Type:      req.Type,
			Amount:    req.Amount,
		}

		created, err := oh.svc.Create(r.Context(), &order)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidMachineID),
				errors.Is(err, models.ErrInvalidEmail),
				errors.Is(err, models.ErrInvalidLicenseType),
				errors.Is(err, models.ErrInvalidAmount):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		resp := createOrderResponse{
			OrderID: created.ID,
			Instructions: fmt.Sprintf("Transfer %s with payment note %s",
				strconv.FormatFloat(created.Amount, 'f', -1, 64), created.ID),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}
