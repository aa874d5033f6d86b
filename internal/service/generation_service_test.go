package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/testutil"
	pkgEvents "ai-contentgen-be/pkg/events"
	"ai-contentgen-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captionRequest(content string) *dto.GenerateRequest {
	return &dto.GenerateRequest{
		ToolName:      "caption",
		SourceContent: content,
		Settings: dto.GenerationSettingsDto{
			Tone:     "playful",
			Language: "en",
		},
	}
}

func userIdentity(id uuid.UUID) Identity {
	return Identity{AccountId: id, Role: entity.AccountRoleUser}
}

func TestGenerateChargesOnSuccess(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	provider := &testutil.FakeProvider{Text: "Fresh caption"}
	svc := f.generation(provider, nil)

	resp, err := svc.Generate(context.Background(), userIdentity(accountId), captionRequest("A day at the beach"))
	require.NoError(t, err)

	assert.Equal(t, "Fresh caption", resp.Content)
	assert.False(t, resp.WasCached)
	assert.Equal(t, 3, resp.CreditsCharged)
	assert.Equal(t, 7, resp.Balance)
	assert.Equal(t, 42, resp.TokensUsed)
	require.NotNil(t, resp.GenerationId)
	f.requireBalanced(t, accountId, 7)

	row := f.generationRow(t, *resp.GenerationId)
	assert.Equal(t, string(entity.GenerationStatusCompleted), row.Status)
	assert.Equal(t, "Fresh caption", row.Result)
	assert.Equal(t, 3, row.CreditsCharged)
	assert.Equal(t, "test-model", row.Model)
	assert.NotNil(t, row.CompletedAt)

	var usage model.CreditTransaction
	require.NoError(t, f.db.Where("account_id = ? AND type = ?", accountId, entity.TransactionTypeUsage).First(&usage).Error)
	assert.Equal(t, -3, usage.Amount)
	require.NotNil(t, usage.GenerationId)
	assert.Equal(t, *resp.GenerationId, *usage.GenerationId)

	assert.EqualValues(t, 1, f.count(t, &model.AuditLog{}, "action = ?", entity.AuditActionGeneration))

	msgs := f.usage.Messages()
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].CacheHit)
	assert.Equal(t, 42, msgs[0].TokensUsed)

	require.Len(t, provider.Prompts, 1)
	assert.Contains(t, provider.Prompts[0], "A day at the beach")
}

func TestGenerateDistinctRequestsChargeEach(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	svc := f.generation(&testutil.FakeProvider{Text: "caption"}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp, err := svc.Generate(ctx, userIdentity(accountId), captionRequest(fmt.Sprintf("Episode %d", i)))
		require.NoError(t, err)
		assert.False(t, resp.WasCached)
		assert.Equal(t, 10-3*(i+1), resp.Balance)
	}

	f.requireBalanced(t, accountId, 1)
	assert.EqualValues(t, 3, f.count(t, &model.CreditTransaction{}, "account_id = ? AND type = ? AND amount = ?", accountId, entity.TransactionTypeUsage, -3))
	assert.EqualValues(t, 3, f.count(t, &model.Generation{}, "status = ?", entity.GenerationStatusCompleted))

	_, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("Episode 4"))
	var insufficient *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Required)
	assert.Equal(t, 1, insufficient.Available)
}

func TestGenerateConcurrentRequestsRaceForLastCredits(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 3)
	svc := f.generation(&testutil.FakeProvider{Text: "caption"}, nil)

	const callers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Generate(context.Background(), userIdentity(accountId), captionRequest(fmt.Sprintf("Clip %d", i)))
			mu.Lock()
			defer mu.Unlock()
			var insufficient *InsufficientCreditsError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &insufficient), errors.Is(err, ErrLedgerInconsistency):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, refused)
	f.requireBalanced(t, accountId, 0)
	assert.EqualValues(t, 1, f.count(t, &model.CreditTransaction{}, "account_id = ? AND type = ?", accountId, entity.TransactionTypeUsage))
	assert.EqualValues(t, 1, f.count(t, &model.Generation{}, "status = ?", entity.GenerationStatusCompleted))
}

func TestGenerateWithoutCreditsLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 0)
	provider := &testutil.FakeProvider{Text: "never"}
	svc := f.generation(provider, nil)

	_, err := svc.Generate(context.Background(), userIdentity(accountId), captionRequest("Anything"))

	var insufficient *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Required)
	assert.Equal(t, 0, insufficient.Available)
	assert.Zero(t, provider.Calls())
	assert.EqualValues(t, 0, f.count(t, &model.Generation{}, ""))
	f.requireBalanced(t, accountId, 0)
}

func TestGenerateServesIdenticalRequestFromCache(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	provider := &testutil.FakeProvider{Text: "Cached caption"}
	svc := f.generation(provider, nil)
	ctx := context.Background()

	first, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("Same input"))
	require.NoError(t, err)

	second, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("Same input"))
	require.NoError(t, err)

	assert.True(t, second.WasCached)
	assert.Equal(t, first.Content, second.Content)
	assert.Zero(t, second.CreditsCharged)
	assert.Nil(t, second.GenerationId)
	assert.Equal(t, 7, second.Balance)
	assert.Equal(t, 1, provider.Calls())
	assert.EqualValues(t, 1, f.count(t, &model.Generation{}, ""))
	f.requireBalanced(t, accountId, 7)

	msgs := f.usage.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].CacheHit)
}

func TestGenerateCacheIsSharedAcrossAccounts(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	alice := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	bob := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	provider := &testutil.FakeProvider{Text: "Shared"}
	svc := f.generation(provider, nil)

	_, err := svc.Generate(context.Background(), userIdentity(alice), captionRequest("Popular input"))
	require.NoError(t, err)
	resp, err := svc.Generate(context.Background(), userIdentity(bob), captionRequest("Popular input"))
	require.NoError(t, err)

	assert.True(t, resp.WasCached)
	f.requireBalanced(t, bob, 10)
}

func TestGenerateSettingChangeMissesCache(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	provider := &testutil.FakeProvider{Text: "Caption"}
	svc := f.generation(provider, nil)
	ctx := context.Background()

	_, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("Same input"))
	require.NoError(t, err)

	req := captionRequest("Same input")
	req.Settings.Tone = "formal"
	resp, err := svc.Generate(ctx, userIdentity(accountId), req)
	require.NoError(t, err)

	assert.False(t, resp.WasCached)
	assert.Equal(t, 2, provider.Calls())
	assert.Equal(t, 4, resp.Balance)
	f.requireBalanced(t, accountId, 4)
}

func TestGenerateUpstreamFailureIsNotCharged(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	provider := &testutil.FakeProvider{Fn: func(context.Context, string) (*llm.Completion, error) {
		return nil, errors.New("model overloaded")
	}}
	svc := f.generation(provider, nil)

	_, err := svc.Generate(context.Background(), userIdentity(accountId), captionRequest("Input"))
	require.ErrorIs(t, err, ErrGenerationUpstream)

	var row model.Generation
	require.NoError(t, f.db.First(&row).Error)
	assert.Equal(t, string(entity.GenerationStatusFailed), row.Status)
	require.NotNil(t, row.ErrorMessage)
	assert.Contains(t, *row.ErrorMessage, "model overloaded")
	assert.Empty(t, row.Result)

	f.requireBalanced(t, accountId, 10)
	assert.EqualValues(t, 0, f.count(t, &model.CreditTransaction{}, "type = ?", entity.TransactionTypeUsage))
	assert.Empty(t, f.usage.Messages())
}

func TestGenerateCancelledCallerIsNotCharged(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	provider := &testutil.FakeProvider{Fn: func(context.Context, string) (*llm.Completion, error) {
		cancel()
		return &llm.Completion{Text: "arrived too late"}, nil
	}}
	svc := f.generation(provider, nil)

	_, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("Input"))
	require.ErrorIs(t, err, ErrGenerationCancelled)

	var row model.Generation
	require.NoError(t, f.db.First(&row).Error)
	assert.Equal(t, string(entity.GenerationStatusFailed), row.Status)
	assert.Empty(t, row.Result)
	f.requireBalanced(t, accountId, 10)
}

// cancellingLedger cancels the caller just before the debit starts.
type cancellingLedger struct {
	ILedgerService
	cancel context.CancelFunc
}

func (l *cancellingLedger) DebitWith(ctx context.Context, req LedgerRequest, inTx InTxFunc) (*LedgerResult, error) {
	l.cancel()
	return l.ILedgerService.DebitWith(ctx, req, inTx)
}

func TestGenerateCancelledBeforeDebitIsNotAnIncident(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.ledger = &cancellingLedger{ILedgerService: f.ledger, cancel: cancel}
	svc := f.generation(&testutil.FakeProvider{Text: "caption"}, nil)

	_, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("Input"))
	require.ErrorIs(t, err, ErrGenerationCancelled)
	assert.False(t, errors.Is(err, ErrLedgerInconsistency))

	var row model.Generation
	require.NoError(t, f.db.First(&row).Error)
	assert.Equal(t, string(entity.GenerationStatusFailed), row.Status)

	assert.Zero(t, f.incidents.Len())
	assert.Zero(t, f.events.Count(pkgEvents.TypeLedgerInconsistency))
	f.requireBalanced(t, accountId, 10)
}

func TestGenerateRefusesBannedAccount(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	provider := &testutil.FakeProvider{Text: "never"}
	svc := f.generation(provider, nil)

	identity := userIdentity(accountId)
	identity.IsBanned = true
	_, err := svc.Generate(context.Background(), identity, captionRequest("Input"))

	require.ErrorIs(t, err, ErrAccountBanned)
	assert.Zero(t, provider.Calls())
	f.requireBalanced(t, accountId, 10)
}

func TestGenerateToolChecks(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "hashtags", 1, 0, 0, false)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	svc := f.generation(&testutil.FakeProvider{Text: "never"}, nil)
	ctx := context.Background()

	req := captionRequest("Input")
	req.ToolName = "hashtags"
	_, err := svc.Generate(ctx, userIdentity(accountId), req)
	assert.ErrorIs(t, err, ErrToolDisabled)

	req.ToolName = "no_such_tool"
	_, err = svc.Generate(ctx, userIdentity(accountId), req)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestGenerateRateLimitedByHistory(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 2, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 20)
	provider := &testutil.FakeProvider{Text: "Caption"}
	svc := f.generation(provider, nil)
	ctx := context.Background()

	for _, content := range []string{"first", "second"} {
		_, err := svc.Generate(ctx, userIdentity(accountId), captionRequest(content))
		require.NoError(t, err)
	}

	for _, content := range []string{"third", "fourth"} {
		_, err := svc.Generate(ctx, userIdentity(accountId), captionRequest(content))
		var limited *RateLimitedError
		require.ErrorAs(t, err, &limited)
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, "hour", limited.Window)
		assert.Equal(t, "caption", limited.Tool)
		assert.Positive(t, limited.RetryAfter)
	}

	assert.Equal(t, 2, provider.Calls())
	assert.Equal(t, 1, f.events.Count(pkgEvents.TypeAccountFlagged))
	f.requireBalanced(t, accountId, 14)
}

func TestGenerateCreditRefusalsDoNotUseHistoryWindow(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 1, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 0)
	svc := f.generation(&testutil.FakeProvider{Text: "caption"}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("Broke"))
		require.ErrorIs(t, err, ErrInsufficientCredits)
	}

	_, err := f.ledger.Credit(ctx, LedgerRequest{AccountId: accountId, Amount: 3, Type: entity.TransactionTypeBonus})
	require.NoError(t, err)

	_, err = svc.Generate(ctx, userIdentity(accountId), captionRequest("Funded"))
	require.NoError(t, err)

	_, err = svc.Generate(ctx, userIdentity(accountId), captionRequest("Again"))
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestGenerateFailsClosedWhenCounterIsDown(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 10, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	provider := &testutil.FakeProvider{Text: "never"}
	svc := f.generation(provider, failingCounter{err: errors.New("connection refused")})

	_, err := svc.Generate(context.Background(), userIdentity(accountId), captionRequest("Input"))

	require.ErrorIs(t, err, ErrRiskCheckUnavailable)
	assert.Zero(t, provider.Calls())
	assert.Equal(t, 1, f.logs.FilterMessage("Window counter unavailable, denying request").Len())
}

func TestGenerateDebitRaceIsReportedAsInconsistency(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 3)

	// A concurrent spend drains the balance while the model is working.
	provider := &testutil.FakeProvider{Fn: func(ctx context.Context, _ string) (*llm.Completion, error) {
		_, err := f.ledger.Debit(ctx, LedgerRequest{AccountId: accountId, Amount: 3, Type: entity.TransactionTypeAdjustment})
		require.NoError(t, err)
		return &llm.Completion{Text: "Unpaid caption", PromptTokens: 5, CompletionTokens: 5}, nil
	}}
	svc := f.generation(provider, nil)

	resp, err := svc.Generate(context.Background(), userIdentity(accountId), captionRequest("Input"))

	assert.Nil(t, resp)
	require.ErrorIs(t, err, ErrLedgerInconsistency)
	assert.False(t, errors.Is(err, ErrInsufficientCredits))

	var row model.Generation
	require.NoError(t, f.db.First(&row).Error)
	assert.Equal(t, string(entity.GenerationStatusFailed), row.Status)
	assert.Empty(t, row.Result)

	assert.Equal(t, 1, f.incidents.FilterMessage("Generated content could not be billed").Len())
	assert.Equal(t, 1, f.events.Count(pkgEvents.TypeLedgerInconsistency))
	f.requireBalanced(t, accountId, 0)
}

func TestRetryStartsFreshAttempt(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 3, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	provider := &testutil.FakeProvider{Fn: func(context.Context, string) (*llm.Completion, error) {
		return nil, errors.New("timeout")
	}}
	svc := f.generation(provider, nil)
	ctx := context.Background()

	_, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("Retry me"))
	require.ErrorIs(t, err, ErrGenerationUpstream)

	var failed model.Generation
	require.NoError(t, f.db.First(&failed).Error)

	provider.Fn = nil
	provider.Text = "Second time lucky"
	resp, err := svc.Retry(ctx, userIdentity(accountId), failed.Id)
	require.NoError(t, err)
	require.NotNil(t, resp.GenerationId)
	assert.NotEqual(t, failed.Id, *resp.GenerationId)
	assert.Equal(t, "Second time lucky", resp.Content)

	assert.Equal(t, string(entity.GenerationStatusFailed), f.generationRow(t, failed.Id).Status)
	f.requireBalanced(t, accountId, 7)

	_, err = svc.Retry(ctx, userIdentity(accountId), *resp.GenerationId)
	assert.ErrorIs(t, err, ErrGenerationNotRetryable)

	stranger := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	_, err = svc.Retry(ctx, userIdentity(stranger), failed.Id)
	assert.ErrorIs(t, err, ErrGenerationNotFound)
}

func TestHistoryIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 1, 0, 0, true)
	alice := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	bob := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	staff := testutil.SeedAccount(t, f.db, entity.AccountRoleSupport, 0)
	svc := f.generation(&testutil.FakeProvider{Text: "Caption"}, nil)
	ctx := context.Background()

	_, err := svc.Generate(ctx, userIdentity(alice), captionRequest("alice input"))
	require.NoError(t, err)
	_, err = svc.Generate(ctx, userIdentity(bob), captionRequest("bob input"))
	require.NoError(t, err)

	page, err := svc.History(ctx, userIdentity(alice), &dto.GenerationListRequest{AccountId: bob.String()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, alice, page.Items[0].AccountId)

	staffIdentity := Identity{AccountId: staff, Role: entity.AccountRoleSupport}
	page, err = svc.History(ctx, staffIdentity, &dto.GenerationListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.History(ctx, staffIdentity, &dto.GenerationListRequest{AccountId: bob.String()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, bob, page.Items[0].AccountId)

	stats, err := svc.Stats(ctx, &alice)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Completed)
}

func TestRateCompletedGeneration(t *testing.T) {
	f := newFixture(t)
	testutil.SeedTool(t, f.db, "caption", 1, 0, 0, true)
	accountId := testutil.SeedAccount(t, f.db, entity.AccountRoleUser, 10)
	svc := f.generation(&testutil.FakeProvider{Text: "Caption"}, nil)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, userIdentity(accountId), captionRequest("rate me"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Rate(ctx, userIdentity(accountId), *resp.GenerationId, &dto.RateGenerationRequest{Rating: 9}), ErrInvalidRating)
	assert.ErrorIs(t, svc.Rate(ctx, userIdentity(accountId), *resp.GenerationId, &dto.RateGenerationRequest{Rating: 0}), ErrInvalidRating)
	require.NoError(t, svc.Rate(ctx, userIdentity(accountId), *resp.GenerationId, &dto.RateGenerationRequest{Rating: 4}))

	shown, err := svc.Show(ctx, userIdentity(accountId), *resp.GenerationId)
	require.NoError(t, err)
	require.NotNil(t, shown.UserRating)
	assert.Equal(t, 4, *shown.UserRating)
}
