package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/memory"
	"ai-contentgen-be/internal/repository/unitofwork"
	"ai-contentgen-be/internal/testutil"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/llm"
	"ai-contentgen-be/pkg/ratelimit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	uow       unitofwork.RepositoryFactory
	events    *adminEvents.Recorder
	logs      *observer.ObservedLogs
	incidents *observer.ObservedLogs
	log       logger.ILogger
	incident  logger.ILogger
	audit     IAuditService
	ledger    ILedgerService
	tools     IToolConfigService
	usage     *usageRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	core, logs := observer.New(zap.DebugLevel)
	incidentCore, incidents := observer.New(zap.DebugLevel)

	f := &fixture{
		db:        db,
		uow:       unitofwork.NewRepositoryFactory(db),
		events:    adminEvents.NewRecorder(),
		logs:      logs,
		incidents: incidents,
		log:       logger.NewFromZap(zap.New(core)),
		incident:  logger.NewFromZap(zap.New(incidentCore)),
		usage:     &usageRecorder{},
	}
	f.audit = NewAuditService(f.uow, f.log)
	f.ledger = NewLedgerService(f.uow, f.audit, f.events, f.log)
	f.tools = NewToolConfigService(f.uow, memory.NewToolConfigCache(time.Minute), f.audit, f.events, f.log)
	return f
}

// generation builds an orchestrator over the fixture. A nil counter counts
// generation rows.
func (f *fixture) generation(provider llm.LLMProvider, counter ratelimit.WindowCounter) IGenerationService {
	if counter == nil {
		counter = NewGenerationWindowCounter(f.uow)
	}
	guard := NewRiskGuard(counter, memory.NewFlagRegistry(time.Hour), f.events, f.log)
	return NewGenerationService(
		f.uow,
		f.ledger,
		f.tools,
		guard,
		f.audit,
		provider,
		f.usage,
		f.events,
		f.log,
		f.incident,
		GenerationOptions{Timeout: 5 * time.Second, DefaultModel: "test-model"},
	)
}

func (f *fixture) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (f *fixture) generationRow(t *testing.T, id uuid.UUID) model.Generation {
	t.Helper()
	var g model.Generation
	require.NoError(t, f.db.First(&g, "id = ?", id).Error)
	return g
}

func (f *fixture) requireBalanced(t *testing.T, accountId uuid.UUID, want int) {
	t.Helper()
	cached, sum := testutil.Balance(t, f.db, accountId)
	require.Equal(t, want, cached)
	require.Equal(t, int64(want), sum, "cached balance drifted from ledger")
}

// usageRecorder captures usage messages instead of publishing them.
type usageRecorder struct {
	mu       sync.Mutex
	messages []dto.GenerationUsageMessage
}

func (u *usageRecorder) Publish(_ context.Context, payload []byte) error {
	var msg dto.GenerationUsageMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.messages = append(u.messages, msg)
	return nil
}

func (u *usageRecorder) Messages() []dto.GenerationUsageMessage {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]dto.GenerationUsageMessage(nil), u.messages...)
}

type failingCounter struct {
	err error
}

func (c failingCounter) Allow(context.Context, ratelimit.Subject, []ratelimit.Window, time.Time) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, c.err
}
