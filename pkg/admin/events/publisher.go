package events

import (
	"context"
	"time"

	"ai-contentgen-be/internal/pkg/logger"
	pkgEvents "ai-contentgen-be/pkg/events"
	pktNats "ai-contentgen-be/pkg/nats"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for ledger, risk and admin operations.
// Publishing is best effort: failures are logged, never returned.
type Publisher interface {
	PublishLedgerInconsistency(ctx context.Context, accountId, generationId uuid.UUID, toolName string, cost int, cause string)
	PublishAccountFlagged(ctx context.Context, accountId uuid.UUID, toolName, window string, retryAfter time.Duration)
	PublishAccountBanned(ctx context.Context, accountId, actorId uuid.UUID, banned bool)
	PublishRoleChanged(ctx context.Context, accountId, actorId uuid.UUID, oldRole, newRole string)
	PublishCreditsAdjusted(ctx context.Context, accountId, actorId uuid.UUID, amount, balanceAfter int, txType string)
	PublishTopUpSettled(ctx context.Context, orderId, accountId uuid.UUID, credits int, grossAmount int64)
	PublishToolConfigUpdated(ctx context.Context, toolName string, actorId uuid.UUID, changed []string)
}

type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

// NewNatsPublisher accepts a nil publisher, in which case every call is a no-op.
func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) emit(ctx context.Context, module, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}
	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error(module, "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishLedgerInconsistency(ctx context.Context, accountId, generationId uuid.UUID, toolName string, cost int, cause string) {
	p.emit(ctx, logger.ModuleLedger, pkgEvents.TypeLedgerInconsistency, map[string]interface{}{
		"account_id":    accountId.String(),
		"generation_id": generationId.String(),
		"tool_name":     toolName,
		"cost":          cost,
		"cause":         cause,
		"entity_type":   "generation",
		"entity_id":     generationId.String(),
	})
}

func (p *NatsPublisher) PublishAccountFlagged(ctx context.Context, accountId uuid.UUID, toolName, window string, retryAfter time.Duration) {
	p.emit(ctx, logger.ModuleRisk, pkgEvents.TypeAccountFlagged, map[string]interface{}{
		"account_id":       accountId.String(),
		"tool_name":        toolName,
		"window":           window,
		"retry_after_secs": int(retryAfter.Seconds()),
		"entity_type":      "account",
		"entity_id":        accountId.String(),
	})
}

func (p *NatsPublisher) PublishAccountBanned(ctx context.Context, accountId, actorId uuid.UUID, banned bool) {
	eventType := pkgEvents.TypeAccountBanned
	if !banned {
		eventType = pkgEvents.TypeAccountUnbanned
	}
	p.emit(ctx, logger.ModuleAdmin, eventType, map[string]interface{}{
		"account_id":  accountId.String(),
		"actor_id":    actorId.String(),
		"entity_type": "account",
		"entity_id":   accountId.String(),
	})
}

func (p *NatsPublisher) PublishRoleChanged(ctx context.Context, accountId, actorId uuid.UUID, oldRole, newRole string) {
	p.emit(ctx, logger.ModuleAdmin, pkgEvents.TypeRoleChanged, map[string]interface{}{
		"account_id":  accountId.String(),
		"actor_id":    actorId.String(),
		"old_role":    oldRole,
		"new_role":    newRole,
		"entity_type": "account",
		"entity_id":   accountId.String(),
	})
}

func (p *NatsPublisher) PublishCreditsAdjusted(ctx context.Context, accountId, actorId uuid.UUID, amount, balanceAfter int, txType string) {
	p.emit(ctx, logger.ModuleLedger, pkgEvents.TypeCreditsAdjusted, map[string]interface{}{
		"account_id":    accountId.String(),
		"actor_id":      actorId.String(),
		"amount":        amount,
		"balance_after": balanceAfter,
		"type":          txType,
		"entity_type":   "account",
		"entity_id":     accountId.String(),
	})
}

func (p *NatsPublisher) PublishTopUpSettled(ctx context.Context, orderId, accountId uuid.UUID, credits int, grossAmount int64) {
	p.emit(ctx, logger.ModuleTopUp, pkgEvents.TypeTopUpSettled, map[string]interface{}{
		"order_id":     orderId.String(),
		"account_id":   accountId.String(),
		"credits":      credits,
		"gross_amount": grossAmount,
		"entity_type":  "topup_order",
		"entity_id":    orderId.String(),
	})
}

func (p *NatsPublisher) PublishToolConfigUpdated(ctx context.Context, toolName string, actorId uuid.UUID, changed []string) {
	p.emit(ctx, logger.ModuleAdmin, pkgEvents.TypeToolConfigUpdated, map[string]interface{}{
		"tool_name":   toolName,
		"actor_id":    actorId.String(),
		"changed":     changed,
		"entity_type": "tool_config",
		"entity_id":   toolName,
	})
}
