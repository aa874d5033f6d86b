package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/repository/unitofwork"
	"ai-contentgen-be/internal/testutil"
	pkgEvents "ai-contentgen-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCreditAndDebitKeepCachedBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)

	res, err := f.ledger.Credit(ctx, LedgerRequest{AccountId: accountId, Amount: 5, Type: entity.TransactionTypePurchase})
	require.NoError(t, err)
	assert.Equal(t, 15, res.BalanceAfter)
	assert.Equal(t, 5, res.Transaction.Amount)

	res, err = f.ledger.Debit(ctx, LedgerRequest{AccountId: accountId, Amount: 3, Type: entity.TransactionTypeUsage})
	require.NoError(t, err)
	assert.Equal(t, 12, res.BalanceAfter)
	assert.Equal(t, -3, res.Transaction.Amount)

	balance, err := f.ledger.GetBalance(ctx, accountId)
	require.NoError(t, err)
	assert.Equal(t, 12, balance)
	f.requireBalanced(t, accountId, 12)

	txs, total, err := f.ledger.ListTransactions(ctx, accountId, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, txs, 3)

	drift, err := f.ledger.FindDrift(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestLedgerDebitRefusesOverdraft(t *testing.T) {
	f := newFixture(t)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 2)

	_, err := f.ledger.Debit(context.Background(), LedgerRequest{AccountId: accountId, Amount: 3, Type: entity.TransactionTypeUsage})

	var insufficient *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, 3, insufficient.Required)
	assert.Equal(t, 2, insufficient.Available)

	f.requireBalanced(t, accountId, 2)
	assert.EqualValues(t, 1, f.count(t, &model.CreditTransaction{}, "account_id = ?", accountId))
}

func TestLedgerRejectsInvalidRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 5)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "zero amount",
			run: func() error {
				_, err := f.ledger.Credit(ctx, LedgerRequest{AccountId: accountId, Amount: 0, Type: entity.TransactionTypeBonus})
				return err
			},
			want: ErrInvalidAmount,
		},
		{
			name: "negative debit",
			run: func() error {
				_, err := f.ledger.Debit(ctx, LedgerRequest{AccountId: accountId, Amount: -2, Type: entity.TransactionTypeUsage})
				return err
			},
			want: ErrInvalidAmount,
		},
		{
			name: "usage as credit",
			run: func() error {
				_, err := f.ledger.Credit(ctx, LedgerRequest{AccountId: accountId, Amount: 1, Type: entity.TransactionTypeUsage})
				return err
			},
			want: ErrInvalidTransactionType,
		},
		{
			name: "purchase as debit",
			run: func() error {
				_, err := f.ledger.Debit(ctx, LedgerRequest{AccountId: accountId, Amount: 1, Type: entity.TransactionTypePurchase})
				return err
			},
			want: ErrInvalidTransactionType,
		},
		{
			name: "unknown account credit",
			run: func() error {
				_, err := f.ledger.Credit(ctx, LedgerRequest{AccountId: uuid.New(), Amount: 1, Type: entity.TransactionTypeBonus})
				return err
			},
			want: ErrAccountNotFound,
		},
		{
			name: "unknown account debit",
			run: func() error {
				_, err := f.ledger.Debit(ctx, LedgerRequest{AccountId: uuid.New(), Amount: 1, Type: entity.TransactionTypeUsage})
				return err
			},
			want: ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
	f.requireBalanced(t, accountId, 5)
}

func TestLedgerConcurrentDebitsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 5)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Debit(context.Background(), LedgerRequest{AccountId: accountId, Amount: 5, Type: entity.TransactionTypeUsage})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientCredits):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, refused)
	f.requireBalanced(t, accountId, 0)
}

func TestLedgerHookFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	boom := errors.New("boom")

	_, err := f.ledger.DebitWith(context.Background(),
		LedgerRequest{AccountId: accountId, Amount: 4, Type: entity.TransactionTypeUsage},
		func(unitofwork.UnitOfWork, *entity.CreditTransaction) error { return boom },
	)
	require.ErrorIs(t, err, boom)

	f.requireBalanced(t, accountId, 10)
	assert.EqualValues(t, 1, f.count(t, &model.CreditTransaction{}, "account_id = ?", accountId))
}

func TestLedgerStaffAdjustmentIsAudited(t *testing.T) {
	f := newFixture(t)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	actorId := testutil.SeedAccount(t, f.db, entity.AccountRoleAdmin, 0)

	_, err := f.ledger.Credit(context.Background(), LedgerRequest{
		AccountId:   accountId,
		Amount:      5,
		Type:        entity.TransactionTypeAdjustment,
		ActorId:     &actorId,
		Description: "goodwill",
	})
	require.NoError(t, err)

	var entry model.AuditLog
	require.NoError(t, f.db.Where("entity_type = ? AND entity_id = ?", entity.AuditEntityAccount, accountId.String()).First(&entry).Error)
	assert.Equal(t, string(entity.AuditActionCreditTransaction), entry.Action)
	assert.Equal(t, "goodwill", entry.Reason)
	require.NotNil(t, entry.ActorId)
	assert.Equal(t, actorId, *entry.ActorId)
	assert.EqualValues(t, 15, entry.AfterState["credits"])

	assert.Equal(t, 1, f.events.Count(pkgEvents.TypeCreditsAdjusted))
	f.requireBalanced(t, accountId, 15)
}

func TestLedgerSystemChangesAreNotAudited(t *testing.T) {
	f := newFixture(t)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)

	_, err := f.ledger.Debit(context.Background(), LedgerRequest{AccountId: accountId, Amount: 1, Type: entity.TransactionTypeUsage})
	require.NoError(t, err)

	assert.EqualValues(t, 0, f.count(t, &model.AuditLog{}, ""))
	assert.Zero(t, f.events.Count(pkgEvents.TypeCreditsAdjusted))
	assert.Equal(t, 1, f.logs.FilterMessage("Credit transaction recorded").Len())
}
