package service

import (
	"context"
	"encoding/json"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService folds generation usage messages into the daily usage_stats
// counters.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.GenerationUsageMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(logger.ModuleConsumer, "Failed to unmarshal usage message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // never retry a malformed payload
		return
	}

	delta := entity.UsageStat{
		GenerationsCount: 1,
		TokensUsed:       payload.TokensUsed,
	}
	if payload.CacheHit {
		delta.CacheHits = 1
	} else {
		delta.CacheMisses = 1
	}

	statDate := payload.OccurredAt.UTC().Format("2006-01-02")
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BillingRepository().IncrementUsage(ctx, payload.AccountId, statDate, delta); err != nil {
		cs.logger.Error(logger.ModuleConsumer, "Failed to increment usage stats", map[string]interface{}{
			"account_id": payload.AccountId.String(),
			"stat_date":  statDate,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
