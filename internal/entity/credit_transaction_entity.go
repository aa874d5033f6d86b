package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeUsage      TransactionType = "usage"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeBonus      TransactionType = "bonus"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// IsCreditType reports whether the type may carry a positive amount.
func (t TransactionType) IsCreditType() bool {
	switch t {
	case TransactionTypePurchase, TransactionTypeRefund, TransactionTypeBonus, TransactionTypeAdjustment:
		return true
	}
	return false
}

// IsDebitType reports whether the type may carry a negative amount.
func (t TransactionType) IsDebitType() bool {
	return t == TransactionTypeUsage || t == TransactionTypeAdjustment
}

// CreditTransaction is an immutable ledger row. Amount is signed.
type CreditTransaction struct {
	Id           uuid.UUID
	AccountId    uuid.UUID
	Amount       int
	Type         TransactionType
	GenerationId *uuid.UUID
	ActorId      *uuid.UUID
	Description  string
	CreatedAt    time.Time
}

// CreditStats summarizes ledger volume across all accounts.
type CreditStats struct {
	TotalPurchased   int64
	TotalUsed        int64
	TotalRefunded    int64
	TotalBonus       int64
	TotalAdjustments int64
	TransactionCount int64
}

// BalanceDrift is an account whose cached balance disagrees with its ledger.
type BalanceDrift struct {
	AccountId    uuid.UUID
	Cached       int
	LedgerSum    int64
	Transactions int64
}
