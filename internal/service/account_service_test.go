package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/repository/unitofwork"
	"ai-contentgen-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAccountGrantsBonusOnce(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.uow, f.ledger, f.log, 15)
	ctx := context.Background()
	accountId := uuid.New()
	req := &dto.BootstrapAccountRequest{Email: "  Creator@Example.com ", FullName: "Creator"}

	first, err := svc.EnsureAccount(ctx, accountId, req)
	require.NoError(t, err)
	assert.Equal(t, "creator@example.com", first.Email)
	assert.Equal(t, 15, first.Credits)
	assert.Equal(t, string(entity.AccountRoleUser), first.Role)

	second, err := svc.EnsureAccount(ctx, accountId, req)
	require.NoError(t, err)
	assert.Equal(t, 15, second.Credits)

	assert.EqualValues(t, 1, f.count(t, &model.CreditTransaction{}, "account_id = ? AND type = ?", accountId, entity.TransactionTypeBonus))
	f.requireBalanced(t, accountId, 15)
}

// flakyLedger fails the first in-transaction credit it sees.
type flakyLedger struct {
	ILedgerService
	mu     sync.Mutex
	failed bool
}

func (l *flakyLedger) CreditIn(ctx context.Context, uow unitofwork.UnitOfWork, req LedgerRequest) (*LedgerResult, error) {
	l.mu.Lock()
	first := !l.failed
	l.failed = true
	l.mu.Unlock()
	if first {
		return nil, errors.New("store unavailable")
	}
	return l.ILedgerService.CreditIn(ctx, uow, req)
}

func TestEnsureAccountBonusFailureLeavesNoAccount(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.uow, &flakyLedger{ILedgerService: f.ledger}, f.log, 5)
	ctx := context.Background()
	accountId := uuid.New()
	req := &dto.BootstrapAccountRequest{Email: "creator@example.com"}

	_, err := svc.EnsureAccount(ctx, accountId, req)
	require.Error(t, err)
	assert.EqualValues(t, 0, f.count(t, &model.Account{}, "id = ?", accountId))

	resp, err := svc.EnsureAccount(ctx, accountId, req)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Credits)

	balance, err := f.ledger.GetBalance(ctx, accountId)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
	f.requireBalanced(t, accountId, 5)
}

func TestCreditInRequiresOpenTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 0)
	req := LedgerRequest{AccountId: accountId, Amount: 3, Type: entity.TransactionTypeBonus}

	_, err := f.ledger.CreditIn(ctx, f.uow.NewUnitOfWork(ctx), req)
	assert.Error(t, err)

	actor := uuid.New()
	staff := req
	staff.ActorId = &actor
	uow := f.uow.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	_, err = f.ledger.CreditIn(ctx, uow, staff)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, uow.Rollback())

	f.requireBalanced(t, accountId, 0)
}

func TestEnsureAccountWithoutBonus(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.uow, f.ledger, f.log, 0)
	accountId := uuid.New()

	resp, err := svc.EnsureAccount(context.Background(), accountId, &dto.BootstrapAccountRequest{Email: "a@example.com"})
	require.NoError(t, err)
	assert.Zero(t, resp.Credits)
	assert.EqualValues(t, 0, f.count(t, &model.CreditTransaction{}, ""))
}

func TestResolveIdentityPrefersStoredState(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.uow, f.ledger, f.log, 0)
	ctx := context.Background()
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleSupport, 0)

	identity, err := svc.ResolveIdentity(ctx, accountId, false)
	require.NoError(t, err)
	assert.Equal(t, entity.AccountRoleSupport, identity.Role)
	assert.False(t, identity.IsBanned)

	require.NoError(t, f.db.Model(&model.Account{}).Where("id = ?", accountId).Update("is_banned", true).Error)
	identity, err = svc.ResolveIdentity(ctx, accountId, false)
	require.NoError(t, err)
	assert.True(t, identity.IsBanned)

	_, err = svc.ResolveIdentity(ctx, uuid.New(), false)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountTransactionsArePaged(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.uow, f.ledger, f.log, 0)
	ctx := context.Background()
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)

	for i := 0; i < 3; i++ {
		_, err := f.ledger.Debit(ctx, LedgerRequest{AccountId: accountId, Amount: 1, Type: entity.TransactionTypeUsage})
		require.NoError(t, err)
	}

	page, err := svc.Transactions(ctx, accountId, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Limit)
}
