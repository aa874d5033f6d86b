// Package testutil builds throwaway stores and fakes for service tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/pkg/database"
	"ai-contentgen-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema. The
// pool holds a single connection, so concurrent callers are serialized.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := database.NewGormDB(database.GormConfig{
		Driver:   "sqlite",
		DSN:      dsn,
		LogLevel: gormLogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedAccount inserts an account whose cached balance is backed by one
// bonus transaction, so the balance invariant holds from the start.
func SeedAccount(t *testing.T, db *gorm.DB, role entity.AccountRole, credits int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&model.Account{
		Id:       id,
		Email:    id.String()[:8] + "@example.com",
		FullName: "Test " + string(role),
		Role:     string(role),
		Credits:  credits,
	}).Error)
	if credits > 0 {
		require.NoError(t, db.Create(&model.CreditTransaction{
			Id:          uuid.New(),
			AccountId:   id,
			Amount:      credits,
			Type:        string(entity.TransactionTypeBonus),
			Description: "seed",
		}).Error)
	}
	return id
}

// SeedTool inserts one tool config row.
func SeedTool(t *testing.T, db *gorm.DB, name string, cost, hourly, daily int, enabled bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.ToolConfig{
		Id:          uuid.New(),
		ToolName:    name,
		Label:       strings.ToUpper(name),
		CreditCost:  cost,
		HourlyLimit: hourly,
		DailyLimit:  daily,
		IsEnabled:   enabled,
		Instruction: "Write " + name + " content.",
	}).Error)
}

// Balance reads the cached balance and the ledger sum of one account.
func Balance(t *testing.T, db *gorm.DB, accountId uuid.UUID) (cached int, ledger int64) {
	t.Helper()
	var account model.Account
	require.NoError(t, db.Unscoped().First(&account, "id = ?", accountId).Error)
	require.NoError(t, db.Model(&model.CreditTransaction{}).
		Where("account_id = ?", accountId).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&ledger).Error)
	return account.Credits, ledger
}

// FakeProvider is a scripted LLM. Fn decides each answer; when nil every
// call returns Text.
type FakeProvider struct {
	mu      sync.Mutex
	Text    string
	Fn      func(ctx context.Context, prompt string) (*llm.Completion, error)
	Prompts []string
}

func (p *FakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Prompts)
}

func (p *FakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	p.mu.Lock()
	p.Prompts = append(p.Prompts, prompt)
	fn := p.Fn
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	opts := llm.Apply(options...)
	return &llm.Completion{Text: p.Text, Model: opts.Model, PromptTokens: 12, CompletionTokens: 30}, nil
}

func (p *FakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	var prompt string
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	return p.Generate(ctx, prompt, options...)
}
