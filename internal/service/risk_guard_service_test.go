package service

import (
	"context"
	"testing"
	"time"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/memory"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	pkgEvents "ai-contentgen-be/pkg/events"
	"ai-contentgen-be/pkg/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisGuard(t *testing.T, events adminEvents.Publisher, clock *time.Time) *riskGuard {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	guard := NewRiskGuard(ratelimit.NewRedisWindowCounter(rdb, "test"), memory.NewFlagRegistry(time.Hour), events, logger.NewNop()).(*riskGuard)
	guard.now = func() time.Time { return *clock }
	return guard
}

func TestRiskGuardSlidingHourWindow(t *testing.T) {
	events := adminEvents.NewRecorder()
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	guard := newRedisGuard(t, events, &clock)
	ctx := context.Background()
	identity := Identity{AccountId: uuid.New(), Role: entity.AccountRoleUser}
	tool := &entity.ToolConfig{ToolName: "caption", HourlyLimit: 2, DailyLimit: 10}

	require.NoError(t, guard.Check(ctx, identity, tool))
	clock = clock.Add(10 * time.Minute)
	require.NoError(t, guard.Check(ctx, identity, tool))

	clock = clock.Add(10 * time.Minute)
	err := guard.Check(ctx, identity, tool)
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, "hour", limited.Window)
	assert.Equal(t, 40*time.Minute, limited.RetryAfter)

	// A denied attempt does not consume a slot; the first one ages out.
	clock = clock.Add(41 * time.Minute)
	require.NoError(t, guard.Check(ctx, identity, tool))

	assert.Equal(t, 1, events.Count(pkgEvents.TypeAccountFlagged))
}

func TestRiskGuardCountsPerTool(t *testing.T) {
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	guard := newRedisGuard(t, adminEvents.NewRecorder(), &clock)
	ctx := context.Background()
	identity := Identity{AccountId: uuid.New(), Role: entity.AccountRoleUser}
	caption := &entity.ToolConfig{ToolName: "caption", HourlyLimit: 1}
	blog := &entity.ToolConfig{ToolName: "blog", HourlyLimit: 1}

	require.NoError(t, guard.Check(ctx, identity, caption))
	assert.ErrorIs(t, guard.Check(ctx, identity, caption), ErrRateLimited)
	assert.NoError(t, guard.Check(ctx, identity, blog))

	other := Identity{AccountId: uuid.New(), Role: entity.AccountRoleUser}
	assert.NoError(t, guard.Check(ctx, other, caption))
}

func TestRiskGuardDailyWindowWins(t *testing.T) {
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	guard := newRedisGuard(t, adminEvents.NewRecorder(), &clock)
	ctx := context.Background()
	identity := Identity{AccountId: uuid.New(), Role: entity.AccountRoleUser}
	tool := &entity.ToolConfig{ToolName: "caption", HourlyLimit: 5, DailyLimit: 2}

	require.NoError(t, guard.Check(ctx, identity, tool))
	clock = clock.Add(2 * time.Hour)
	require.NoError(t, guard.Check(ctx, identity, tool))

	var limited *RateLimitedError
	require.ErrorAs(t, guard.Check(ctx, identity, tool), &limited)
	assert.Equal(t, "day", limited.Window)
	assert.Equal(t, 22*time.Hour, limited.RetryAfter)
}

func TestRiskGuardShortCircuits(t *testing.T) {
	guard := NewRiskGuard(failingCounter{err: assert.AnError}, memory.NewFlagRegistry(time.Hour), adminEvents.NewRecorder(), logger.NewNop())
	ctx := context.Background()
	identity := Identity{AccountId: uuid.New(), Role: entity.AccountRoleUser}

	unlimited := &entity.ToolConfig{ToolName: "caption"}
	assert.NoError(t, guard.Check(ctx, identity, unlimited))

	banned := identity
	banned.IsBanned = true
	assert.ErrorIs(t, guard.Check(ctx, banned, unlimited), ErrAccountBanned)

	limited := &entity.ToolConfig{ToolName: "caption", HourlyLimit: 3}
	assert.ErrorIs(t, guard.Check(ctx, identity, limited), ErrRiskCheckUnavailable)
}
