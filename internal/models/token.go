package models

import "time"

// TokenPayload is payload of authorization token
type TokenPayload struct {
	Subject   string
	ExpiresAt time.Time
}
