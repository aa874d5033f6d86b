package usage

import (
	"context"
	"fmt"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Tracker reads the daily usage counters the consumer maintains
type Tracker struct {
	logger logger.ILogger
}

// NewTracker creates a new usage tracker
func NewTracker(logger logger.ILogger) *Tracker {
	return &Tracker{
		logger: logger,
	}
}

// List returns usage rows filtered by account and date range, newest day first
func (t *Tracker) List(ctx context.Context, uow unitofwork.UnitOfWork, req dto.UsageListRequest) ([]*dto.UsageStatResponse, error) {
	specs := []specification.Specification{
		specification.StatDateBetween{From: req.From, To: req.To},
	}
	if req.AccountId != "" {
		accountId, err := uuid.Parse(req.AccountId)
		if err != nil {
			return nil, fmt.Errorf("invalid account id: %w", err)
		}
		specs = append(specs, specification.OwnedByAccount{AccountID: accountId})
	}

	stats, err := uow.BillingRepository().FindUsage(ctx, append(specs,
		specification.OrderBy{Field: "stat_date", Desc: true},
		specification.Pagination{Limit: 500, Offset: 0},
	)...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.UsageStatResponse, 0, len(stats))
	for _, s := range stats {
		res = append(res, &dto.UsageStatResponse{
			AccountId:        s.AccountId,
			StatDate:         s.StatDate,
			GenerationsCount: int64(s.GenerationsCount),
			TokensUsed:       int64(s.TokensUsed),
			CacheHits:        int64(s.CacheHits),
			CacheMisses:      int64(s.CacheMisses),
		})
	}
	return res, nil
}

// Summary folds rows into one total per account
func (t *Tracker) Summary(rows []*dto.UsageStatResponse) map[uuid.UUID]*dto.UsageStatResponse {
	out := make(map[uuid.UUID]*dto.UsageStatResponse)
	for _, r := range rows {
		agg, ok := out[r.AccountId]
		if !ok {
			agg = &dto.UsageStatResponse{AccountId: r.AccountId}
			out[r.AccountId] = agg
		}
		agg.GenerationsCount += r.GenerationsCount
		agg.TokensUsed += r.TokensUsed
		agg.CacheHits += r.CacheHits
		agg.CacheMisses += r.CacheMisses
	}
	return out
}
