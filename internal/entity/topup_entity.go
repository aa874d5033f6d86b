package entity

import (
	"time"

	"github.com/google/uuid"
)

type TopUpStatus string

const (
	TopUpStatusPending TopUpStatus = "pending"
	TopUpStatusPaid    TopUpStatus = "paid"
	TopUpStatusFailed  TopUpStatus = "failed"
)

// TopUpOrder is a payment order for a credit pack. It is settled at most once.
type TopUpOrder struct {
	Id            uuid.UUID
	AccountId     uuid.UUID
	Credits       int
	GrossAmount   int64
	Status        TopUpStatus
	SnapToken     string
	TransactionId *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SettledAt     *time.Time
}
