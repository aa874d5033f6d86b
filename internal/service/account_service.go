package service

import (
	"context"
	"strings"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAccountService interface {
	// EnsureAccount creates the account on first sight and grants the signup
	// bonus through the ledger. Calling it again is a no-op.
	EnsureAccount(ctx context.Context, accountId uuid.UUID, req *dto.BootstrapAccountRequest) (*dto.AccountResponse, error)
	ResolveIdentity(ctx context.Context, accountId uuid.UUID, tokenBanned bool) (Identity, error)
	Profile(ctx context.Context, accountId uuid.UUID) (*dto.AccountResponse, error)
	Transactions(ctx context.Context, accountId uuid.UUID, page, limit int) (*dto.PagedResponse[dto.TransactionResponse], error)
}

type accountService struct {
	uowFactory  unitofwork.RepositoryFactory
	ledger      ILedgerService
	logger      logger.ILogger
	signupBonus int
}

func NewAccountService(uowFactory unitofwork.RepositoryFactory, ledger ILedgerService, logger logger.ILogger, signupBonus int) IAccountService {
	return &accountService{
		uowFactory:  uowFactory,
		ledger:      ledger,
		logger:      logger,
		signupBonus: signupBonus,
	}
}

func (s *accountService) EnsureAccount(ctx context.Context, accountId uuid.UUID, req *dto.BootstrapAccountRequest) (*dto.AccountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.AccountRepository().FindOneUnscoped(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsDeleted() {
			return nil, ErrAccountNotFound
		}
		return accountToResponse(existing), nil
	}

	account := &entity.Account{
		Id:       accountId,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		FullName: req.FullName,
		Role:     entity.AccountRoleUser,
	}

	// The row and its bonus commit together, so an account never exists
	// without the bonus it was created with.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		_ = uow.Rollback()
		// A concurrent bootstrap committed the row and its bonus first.
		again, findErr := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().FindOne(ctx, specification.ByID{ID: accountId})
		if findErr == nil && again != nil {
			return accountToResponse(again), nil
		}
		return nil, err
	}

	if s.signupBonus > 0 {
		result, err := s.ledger.CreditIn(ctx, uow, LedgerRequest{
			AccountId:   accountId,
			Amount:      s.signupBonus,
			Type:        entity.TransactionTypeBonus,
			Description: "Signup bonus",
		})
		if err != nil {
			s.logger.Error(logger.ModuleLedger, "Failed to grant signup bonus", map[string]interface{}{
				"account_id": accountId.String(),
				"error":      err.Error(),
			})
			return nil, err
		}
		account.Credits = result.BalanceAfter
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(logger.ModuleLedger, "Account bootstrapped", map[string]interface{}{
		"account_id": accountId.String(),
		"credits":    account.Credits,
	})
	return accountToResponse(account), nil
}

// ResolveIdentity combines the token with the stored account. The stored ban
// flag and role win over anything in the token.
func (s *accountService) ResolveIdentity(ctx context.Context, accountId uuid.UUID, tokenBanned bool) (Identity, error) {
	account, err := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().FindOne(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return Identity{}, err
	}
	if account == nil {
		return Identity{}, ErrAccountNotFound
	}
	return Identity{
		AccountId: account.Id,
		Role:      account.Role,
		IsBanned:  account.IsBanned || tokenBanned,
	}, nil
}

func (s *accountService) Profile(ctx context.Context, accountId uuid.UUID) (*dto.AccountResponse, error) {
	account, err := s.uowFactory.NewUnitOfWork(ctx).AccountRepository().FindOne(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return accountToResponse(account), nil
}

func (s *accountService) Transactions(ctx context.Context, accountId uuid.UUID, page, limit int) (*dto.PagedResponse[dto.TransactionResponse], error) {
	txs, total, err := s.ledger.ListTransactions(ctx, accountId, page, limit)
	if err != nil {
		return nil, err
	}
	return transactionsToPage(txs, total, page, limit), nil
}

func accountToResponse(a *entity.Account) *dto.AccountResponse {
	return &dto.AccountResponse{
		Id:        a.Id,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      string(a.Role),
		Credits:   a.Credits,
		CreatedAt: a.CreatedAt,
	}
}

func transactionToResponse(t *entity.CreditTransaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		Id:           t.Id,
		Amount:       t.Amount,
		Type:         string(t.Type),
		GenerationId: t.GenerationId,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}
