package service

import (
	"context"
	"fmt"
	"time"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/memory"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/ratelimit"

	"github.com/google/uuid"
)

const (
	windowHour = "hour"
	windowDay  = "day"
)

// IRiskGuard is the pre-check evaluated before any paid work. It fails
// closed: if the window counter errors the request is denied.
type IRiskGuard interface {
	Check(ctx context.Context, identity Identity, tool *entity.ToolConfig) error
}

type riskGuard struct {
	counter   ratelimit.WindowCounter
	flags     *memory.FlagRegistry
	publisher adminEvents.Publisher
	logger    logger.ILogger
	now       func() time.Time
}

func NewRiskGuard(counter ratelimit.WindowCounter, flags *memory.FlagRegistry, publisher adminEvents.Publisher, logger logger.ILogger) IRiskGuard {
	return &riskGuard{
		counter:   counter,
		flags:     flags,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func toolWindows(tool *entity.ToolConfig) []ratelimit.Window {
	return []ratelimit.Window{
		{Name: windowHour, Limit: tool.HourlyLimit, Span: time.Hour},
		{Name: windowDay, Limit: tool.DailyLimit, Span: 24 * time.Hour},
	}
}

func (g *riskGuard) Check(ctx context.Context, identity Identity, tool *entity.ToolConfig) error {
	if identity.IsBanned {
		return ErrAccountBanned
	}

	windows := ratelimit.Active(toolWindows(tool))
	if len(windows) == 0 {
		return nil
	}

	subject := ratelimit.Subject{Account: identity.AccountId.String(), Tool: tool.ToolName}
	decision, err := g.counter.Allow(ctx, subject, windows, g.now())
	if err != nil {
		g.logger.Error(logger.ModuleRisk, "Window counter unavailable, denying request", map[string]interface{}{
			"account_id": identity.AccountId.String(),
			"tool_name":  tool.ToolName,
			"error":      err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrRiskCheckUnavailable, err)
	}
	if decision.Allowed {
		return nil
	}

	g.logger.Warn(logger.ModuleRisk, "Generation rate limited", map[string]interface{}{
		"account_id":  identity.AccountId.String(),
		"tool_name":   tool.ToolName,
		"window":      decision.Violated,
		"retry_after": decision.RetryAfter.String(),
	})
	if g.flags.MarkOnce(subject.Key() + ":" + decision.Violated) {
		g.publisher.PublishAccountFlagged(ctx, identity.AccountId, tool.ToolName, decision.Violated, decision.RetryAfter)
	}

	return &RateLimitedError{Tool: tool.ToolName, Window: decision.Violated, RetryAfter: decision.RetryAfter}
}

// generationWindowCounter counts an account's generation rows instead of a
// Redis window. Rows are the record, so Allow never writes anything. Cache hits
// create no row and are not counted by this backend.
type generationWindowCounter struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewGenerationWindowCounter(uowFactory unitofwork.RepositoryFactory) ratelimit.WindowCounter {
	return &generationWindowCounter{uowFactory: uowFactory}
}

func (c *generationWindowCounter) Allow(ctx context.Context, subject ratelimit.Subject, windows []ratelimit.Window, now time.Time) (ratelimit.Decision, error) {
	accountId, err := uuid.Parse(subject.Account)
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("invalid account id %q: %w", subject.Account, err)
	}

	repo := c.uowFactory.NewUnitOfWork(ctx).GenerationRepository()
	decision := ratelimit.Decision{Allowed: true}

	for _, w := range ratelimit.Active(windows) {
		specs := []specification.Specification{
			specification.OwnedByAccount{AccountID: accountId},
			specification.ByToolName{ToolName: subject.Tool},
			specification.CreatedSince{Since: now.Add(-w.Span).UTC()},
			specification.ChargeableAttempts{},
		}
		count, err := repo.Count(ctx, specs...)
		if err != nil {
			return ratelimit.Decision{}, err
		}
		if count < int64(w.Limit) {
			continue
		}

		retry := w.Span
		oldest, err := repo.FindOne(ctx, append(specs, specification.OrderBy{Field: "created_at", Desc: false})...)
		if err != nil {
			return ratelimit.Decision{}, err
		}
		if oldest != nil {
			retry = oldest.CreatedAt.Add(w.Span).Sub(now)
		}
		if retry < time.Second {
			retry = time.Second
		}
		if !decision.Allowed && retry <= decision.RetryAfter {
			continue
		}
		decision = ratelimit.Decision{Allowed: false, RetryAfter: retry, Violated: w.Name}
	}
	return decision, nil
}
