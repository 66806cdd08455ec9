package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rookgm/licensed/internal/models"
)

// default time of retry after
const delaySeconds = 60

// Client delivers license keys through an external notification gateway
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates new notification Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

type notifyRequest struct {
	Order      string `json:"order"`
	Email      string `json:"email"`
	Type       string `json:"type"`
	LicenseKey string `json:"license_key"`
}

// Notify sends license key for a completed order to the purchaser
// POST /api/notify
// 200, 204 — уведомление принято к доставке.
// 429 — превышено количество запросов к шлюзу.
func (c *Client) Notify(ctx context.Context, order models.Order) error {
	if c.baseURL == "" {
		return models.NewNotificationError(order.ID, errors.New("notification gateway is not configured"))
	}
	if order.LicenseKey == nil {
		return models.NewNotificationError(order.ID, errors.New("order has no license key"))
	}

	url, err := url.JoinPath(c.baseURL, "api", "notify")
	if err != nil {
		return models.NewNotificationError(order.ID, err)
	}

	body, err := json.Marshal(notifyRequest{
		Order:      order.ID,
		Email:      order.Email,
		Type:       order.Type,
		LicenseKey: *order.LicenseKey,
	})
	if err != nil {
		return models.NewNotificationError(order.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.NewNotificationError(order.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return models.NewNotificationError(order.ID, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusTooManyRequests:
		t := delaySeconds
		if val := resp.Header.Get("Retry-After"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil {
				t = parsed
			}
		}
		return models.NewTooManyRequestsError(time.Duration(t) * time.Second)
	default:
		return models.NewNotificationError(order.ID, errors.New("gateway returned "+resp.Status))
	}
}
