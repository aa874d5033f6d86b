package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTopUpRequest struct {
	Credits int `json:"credits" validate:"required,min=1,max=100000"`
}

type TopUpResponse struct {
	OrderId     uuid.UUID  `json:"order_id"`
	Credits     int        `json:"credits"`
	GrossAmount int64      `json:"gross_amount"`
	Status      string     `json:"status"`
	SnapToken   string     `json:"snap_token,omitempty"`
	RedirectUrl string     `json:"redirect_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}

// MidtransNotificationRequest is the subset of the HTTP notification body the
// settlement path reads.
type MidtransNotificationRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}
