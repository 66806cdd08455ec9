package models

import "time"

//PENDING — заказ создан, ожидает подтверждения оплаты;
//COMPLETED — оплата подтверждена, лицензионный ключ выпущен.

// order status
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
)

// license type
const (
	LicenseTypeMonthly   = "M"
	LicenseTypeYearly    = "Y"
	LicenseTypePerpetual = "P"
)

// Order is license order entity
type Order struct {
	ID         string     `json:"id"`
	MachineID  string     `json:"machine_id"`
	Email      string     `json:"email"`
	Type       string     `json:"type"`
	Amount     float64    `json:"amount"`
	Status     string     `json:"status"`
	LicenseKey *string    `json:"license_key,omitempty"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsCompleted reports whether the order has been fulfilled
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// ValidLicenseType reports whether t is a known license type
func ValidLicenseType(t string) bool {
	switch t {
	case LicenseTypeMonthly, LicenseTypeYearly, LicenseTypePerpetual:
		return true
	}
	return false
}
