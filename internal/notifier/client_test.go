package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rookgm/licensed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedOrder() models.Order {
	key := "Y-ABCDEFGH-20270315-c2lnbmF0dXJl"
	return models.Order{
		ID:         "TT1234",
		MachineID:  "ABCDEFGH1234",
		Email:      "buyer@example.com",
		Type:       models.LicenseTypeYearly,
		Amount:     200000,
		Status:     models.OrderStatusCompleted,
		LicenseKey: &key,
	}
}

func TestClient_Notify(t *testing.T) {
	var got notifyRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/notify", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	err := client.Notify(context.Background(), completedOrder())
	require.NoError(t, err)
	assert.Equal(t, "TT1234", got.Order)
	assert.Equal(t, "buyer@example.com", got.Email)
	assert.Equal(t, "Y-ABCDEFGH-20270315-c2lnbmF0dXJl", got.LicenseKey)
}

func TestClient_NotifyTooManyRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	err := client.Notify(context.Background(), completedOrder())

	var tooMany models.TooManyRequestsError
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, 7*time.Second, tooMany.RetryAfter)
}

func TestClient_NotifyGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	err := client.Notify(context.Background(), completedOrder())

	var notifErr models.NotificationError
	require.True(t, errors.As(err, &notifErr))
	assert.Equal(t, "TT1234", notifErr.OrderID)
}

func TestClient_NotifyNotConfigured(t *testing.T) {
	client := NewClient("")

	err := client.Notify(context.Background(), completedOrder())
	assert.Error(t, err)
}

func TestClient_NotifyNoLicenseKey(t *testing.T) {
	client := NewClient("http://localhost:0")

	order := completedOrder()
	order.LicenseKey = nil

	err := client.Notify(context.Background(), order)
	assert.Error(t, err)
}
