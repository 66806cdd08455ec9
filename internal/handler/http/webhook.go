package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rookgm/licensed/internal/models"
	"github.com/rookgm/licensed/internal/service"
)

//go:generate mockgen -source=webhook.go -destination=mocks/mock_webhook.go -package=mocks

type PaymentService interface {
	// ReportPayment matches notification content to an order and fulfills it
	ReportPayment(ctx context.Context, content string, amount float64) (service.PaymentResult, error)
}

// WebhookHandler represents HTTP handler for inbound payment notifications
type WebhookHandler struct {
	svc PaymentService
}

// NewWebhookHandler creates new WebhookHandler instance
func NewWebhookHandler(svc PaymentService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

type reportPaymentRequest struct {
	Content string  `json:"content"`
	Amount  float64 `json:"amount"`
}

type reportPaymentResponse struct {
	Matched   bool   `json:"matched"`
	OrderID   string `json:"order_id,omitempty"`
	Fulfilled bool   `json:"fulfilled"`
	Notified  bool   `json:"notified"`
	Reason    string `json:"reason,omitempty"`
}

func writePaymentResponse(w http.ResponseWriter, status int, resp reportPaymentResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return
	}
}

// ReportPayment handles payment webhook
// 200 — уведомление обработано (в том числе без кода заказа);
// 400 — неверный формат запроса;
// 402 — сумма оплаты недостаточна;
// 404 — заказ не найден;
// 500 — внутренняя ошибка сервера.
func (wh *WebhookHandler) ReportPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reportPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		res, err := wh.svc.ReportPayment(r.Context(), req.Content, req.Amount)

		resp := reportPaymentResponse{
			Matched:   res.Matched,
			OrderID:   res.OrderID,
			Fulfilled: res.Fulfilled,
			Notified:  res.Notified,
		}

		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				resp.Reason = "order not found"
				writePaymentResponse(w, http.StatusNotFound, resp)
			case errors.Is(err, models.ErrAmountInsufficient):
				resp.Reason = "paid amount is insufficient"
				writePaymentResponse(w, http.StatusPaymentRequired, resp)
			default:
				resp.Reason = "internal error"
				writePaymentResponse(w, http.StatusInternalServerError, resp)
			}
			return
		}

		if !res.Matched {
			resp.Reason = "no order code found"
		}

		writePaymentResponse(w, http.StatusOK, resp)
	}
}
