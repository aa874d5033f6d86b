package unitofwork

import (
	"context"

	"ai-contentgen-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	// InTransaction reports whether Begin has been called without a matching
	// Commit or Rollback.
	InTransaction() bool

	AccountRepository() contract.AccountRepository
	CreditTransactionRepository() contract.CreditTransactionRepository
	GenerationRepository() contract.GenerationRepository
	AuditLogRepository() contract.AuditLogRepository
	ToolConfigRepository() contract.ToolConfigRepository
	BillingRepository() contract.BillingRepository
}
