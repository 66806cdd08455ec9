package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderExists        = errors.New("order id already exists")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidMachineID   = errors.New("invalid machine id")
	ErrInvalidLicenseType = errors.New("invalid license type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrAmountInsufficient = errors.New("paid amount is insufficient")
	ErrSigningKeyMissing  = errors.New("signing key is not configured")
	ErrStoreCorrupted     = errors.New("order store is corrupted")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternalError      = errors.New("internal error")
)

// NotificationError is returned when the notification gateway
// rejects or fails to accept a delivery
type NotificationError struct {
	OrderID string
	Cause   error
}

func (e NotificationError) Error() string {
	return fmt.Sprintf("notification for order %s failed: %v", e.OrderID, e.Cause)
}

func (e NotificationError) Unwrap() error {
	return e.Cause
}

// NewNotificationError creates new NotificationError
func NewNotificationError(orderID string, cause error) NotificationError {
	return NotificationError{OrderID: orderID, Cause: cause}
}

// TooManyRequestsError is returned when the notification gateway
// throttles requests
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %v", e.RetryAfter)
}

// NewTooManyRequestsError creates new TooManyRequestsError
func NewTooManyRequestsError(retryAfter time.Duration) TooManyRequestsError {
	return TooManyRequestsError{RetryAfter: retryAfter}
}
