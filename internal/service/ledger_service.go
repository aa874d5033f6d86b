package service

import (
	"context"
	"fmt"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"
	adminEvents "ai-contentgen-be/pkg/admin/events"

	"github.com/google/uuid"
)

// LedgerRequest describes one balance change. Amount is always the positive
// magnitude; the ledger applies the sign from the operation.
type LedgerRequest struct {
	AccountId    uuid.UUID
	Amount       int
	Type         entity.TransactionType
	GenerationId *uuid.UUID
	ActorId      *uuid.UUID
	Description  string
}

type LedgerResult struct {
	Transaction  *entity.CreditTransaction
	BalanceAfter int
}

// InTxFunc runs inside the ledger's store transaction, after tx was written.
// Returning an error rolls back the balance change.
type InTxFunc func(uow unitofwork.UnitOfWork, tx *entity.CreditTransaction) error

type ILedgerService interface {
	Credit(ctx context.Context, req LedgerRequest) (*LedgerResult, error)
	CreditWith(ctx context.Context, req LedgerRequest, inTx InTxFunc) (*LedgerResult, error)
	// CreditIn credits inside a unit of work the caller has already begun. The
	// caller commits. Only system credits are accepted, so nothing is audited.
	CreditIn(ctx context.Context, uow unitofwork.UnitOfWork, req LedgerRequest) (*LedgerResult, error)
	Debit(ctx context.Context, req LedgerRequest) (*LedgerResult, error)
	DebitWith(ctx context.Context, req LedgerRequest, inTx InTxFunc) (*LedgerResult, error)
	GetBalance(ctx context.Context, accountId uuid.UUID) (int, error)
	ListTransactions(ctx context.Context, accountId uuid.UUID, page, limit int) ([]*entity.CreditTransaction, int64, error)
	GetStats(ctx context.Context) (*entity.CreditStats, error)
	FindDrift(ctx context.Context) ([]*entity.BalanceDrift, error)
}

type ledgerService struct {
	uowFactory unitofwork.RepositoryFactory
	audit      IAuditService
	publisher  adminEvents.Publisher
	logger     logger.ILogger
}

func NewLedgerService(
	uowFactory unitofwork.RepositoryFactory,
	audit IAuditService,
	publisher adminEvents.Publisher,
	logger logger.ILogger,
) ILedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		audit:      audit,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *ledgerService) Credit(ctx context.Context, req LedgerRequest) (*LedgerResult, error) {
	return s.CreditWith(ctx, req, nil)
}

func (s *ledgerService) Debit(ctx context.Context, req LedgerRequest) (*LedgerResult, error) {
	return s.DebitWith(ctx, req, nil)
}

func (s *ledgerService) CreditWith(ctx context.Context, req LedgerRequest, inTx InTxFunc) (*LedgerResult, error) {
	if err := validateCredit(req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	result, err := s.credit(ctx, uow, req, inTx)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, req, result)
	return result, nil
}

func (s *ledgerService) CreditIn(ctx context.Context, uow unitofwork.UnitOfWork, req LedgerRequest) (*LedgerResult, error) {
	if err := validateCredit(req); err != nil {
		return nil, err
	}
	if req.ActorId != nil {
		return nil, fmt.Errorf("credit in caller transaction: %w", ErrForbidden)
	}
	if !uow.InTransaction() {
		return nil, fmt.Errorf("credit in caller transaction: no transaction open")
	}
	return s.credit(ctx, uow, req, nil)
}

func validateCredit(req LedgerRequest) error {
	if req.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !req.Type.IsCreditType() {
		return ErrInvalidTransactionType
	}
	return nil
}

func (s *ledgerService) credit(ctx context.Context, uow unitofwork.UnitOfWork, req LedgerRequest, inTx InTxFunc) (*LedgerResult, error) {
	ok, err := uow.AccountRepository().IncrementCredits(ctx, req.AccountId, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("increment credits: %w", err)
	}
	if !ok {
		return nil, ErrAccountNotFound
	}
	return s.append(ctx, uow, req, req.Amount, inTx)
}

// DebitWith checks and decrements the balance in one conditional UPDATE, so
// two concurrent debits can never both pass against a stale read.
func (s *ledgerService) DebitWith(ctx context.Context, req LedgerRequest, inTx InTxFunc) (*LedgerResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !req.Type.IsDebitType() {
		return nil, ErrInvalidTransactionType
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	ok, err := uow.AccountRepository().DecrementCredits(ctx, req.AccountId, req.Amount)
	if err != nil {
		if isBalanceCheckViolation(err) {
			return nil, &InsufficientCreditsError{Required: req.Amount}
		}
		return nil, fmt.Errorf("decrement credits: %w", err)
	}
	if !ok {
		account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: req.AccountId})
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		return nil, &InsufficientCreditsError{Required: req.Amount, Available: account.Credits}
	}

	result, err := s.append(ctx, uow, req, -req.Amount, inTx)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, req, result)
	return result, nil
}

// append writes the transaction row, runs the caller hook and reads the new
// balance, all inside the open transaction.
func (s *ledgerService) append(ctx context.Context, uow unitofwork.UnitOfWork, req LedgerRequest, signed int, inTx InTxFunc) (*LedgerResult, error) {
	tx := &entity.CreditTransaction{
		Id:           uuid.New(),
		AccountId:    req.AccountId,
		Amount:       signed,
		Type:         req.Type,
		GenerationId: req.GenerationId,
		ActorId:      req.ActorId,
		Description:  req.Description,
	}
	if err := uow.CreditTransactionRepository().Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record credit transaction: %w", err)
	}

	if inTx != nil {
		if err := inTx(uow, tx); err != nil {
			return nil, err
		}
	}

	account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: req.AccountId})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return &LedgerResult{Transaction: tx, BalanceAfter: account.Credits}, nil
}

func (s *ledgerService) afterCommit(ctx context.Context, req LedgerRequest, result *LedgerResult) {
	s.logger.Info(logger.ModuleLedger, "Credit transaction recorded", map[string]interface{}{
		"account_id":    req.AccountId.String(),
		"type":          string(req.Type),
		"amount":        result.Transaction.Amount,
		"balance_after": result.BalanceAfter,
	})

	if req.ActorId == nil {
		return
	}

	before := result.BalanceAfter - result.Transaction.Amount
	_, err := s.audit.Record(ctx, AuditEntry{
		ActorId:    req.ActorId,
		Action:     entity.AuditActionCreditTransaction,
		EntityType: entity.AuditEntityAccount,
		EntityId:   req.AccountId.String(),
		Before:     entity.Snapshot{"credits": before},
		After:      entity.Snapshot{"credits": result.BalanceAfter},
		Reason:     req.Description,
	})
	if err != nil {
		s.logger.Error(logger.ModuleLedger, "Credit change committed without audit entry", map[string]interface{}{
			"transaction_id": result.Transaction.Id.String(),
			"error":          err.Error(),
		})
	}

	s.publisher.PublishCreditsAdjusted(ctx, req.AccountId, *req.ActorId, result.Transaction.Amount, result.BalanceAfter, string(req.Type))
}

func (s *ledgerService) GetBalance(ctx context.Context, accountId uuid.UUID) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, ErrAccountNotFound
	}
	return account.Credits, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, accountId uuid.UUID, page, limit int) ([]*entity.CreditTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	owned := specification.OwnedByAccount{AccountID: accountId}

	total, err := uow.CreditTransactionRepository().Count(ctx, owned)
	if err != nil {
		return nil, 0, err
	}
	txs, err := uow.CreditTransactionRepository().FindAll(ctx,
		owned,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (s *ledgerService) GetStats(ctx context.Context) (*entity.CreditStats, error) {
	return s.uowFactory.NewUnitOfWork(ctx).CreditTransactionRepository().Stats(ctx)
}

func (s *ledgerService) FindDrift(ctx context.Context) ([]*entity.BalanceDrift, error) {
	return s.uowFactory.NewUnitOfWork(ctx).CreditTransactionRepository().FindBalanceDrift(ctx)
}
