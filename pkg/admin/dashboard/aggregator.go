package dashboard

import (
	"context"
	"time"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"
)

// Aggregator handles dashboard statistics
type Aggregator struct {
	logger logger.ILogger
}

// NewAggregator creates a new dashboard aggregator
func NewAggregator(logger logger.ILogger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// GetStats collects account, generation, credit and today's usage figures
func (a *Aggregator) GetStats(ctx context.Context, uow unitofwork.UnitOfWork, today time.Time) (*dto.DashboardStatsResponse, error) {
	totalAccounts, err := uow.AccountRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	banned, err := uow.AccountRepository().Count(ctx, specification.BannedAccounts{Banned: true})
	if err != nil {
		return nil, err
	}

	genStats, err := uow.GenerationRepository().Stats(ctx)
	if err != nil {
		return nil, err
	}

	creditStats, err := uow.CreditTransactionRepository().Stats(ctx)
	if err != nil {
		return nil, err
	}

	usage, err := uow.BillingRepository().FindUsage(ctx, specification.Filter("stat_date", today.UTC().Format("2006-01-02")))
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardStatsResponse{
		TotalAccounts:  totalAccounts,
		BannedAccounts: banned,
		Generations: dto.GenerationStatsResponse{
			Total:            genStats.Total,
			Completed:        genStats.Completed,
			Failed:           genStats.Failed,
			Pending:          genStats.Pending,
			TotalCreditsUsed: genStats.TotalCreditsUsed,
		},
		Credits: CreditStatsToResponse(creditStats),
	}
	for _, u := range usage {
		resp.GenerationsToday += int64(u.GenerationsCount)
		resp.CacheHitsToday += int64(u.CacheHits)
		resp.CacheMissesToday += int64(u.CacheMisses)
		resp.TokensUsedToday += int64(u.TokensUsed)
	}

	// Recent generations are a nice-to-have; a failure here should not hide the totals
	recent, err := uow.GenerationRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 5, Offset: 0},
	)
	if err != nil {
		a.logger.Warn(logger.ModuleAdmin, "Failed to load recent generations", map[string]interface{}{"error": err.Error()})
	} else {
		for _, g := range recent {
			resp.RecentGenerations = append(resp.RecentGenerations, dto.GenerationResponse{
				Id:             g.Id,
				AccountId:      g.AccountId,
				ToolName:       g.ToolName,
				Model:          g.Model,
				Status:         string(g.Status),
				CreditsCharged: g.CreditsCharged,
				DurationMs:     g.DurationMs,
				CreatedAt:      g.CreatedAt,
				CompletedAt:    g.CompletedAt,
			})
		}
	}

	return resp, nil
}

// CreditStatsToResponse maps ledger totals. Issued is purchases plus bonuses.
func CreditStatsToResponse(s *entity.CreditStats) dto.CreditStatsResponse {
	return dto.CreditStatsResponse{
		TotalIssued:      s.TotalPurchased + s.TotalBonus,
		TotalPurchased:   s.TotalPurchased,
		TotalBonus:       s.TotalBonus,
		TotalUsed:        s.TotalUsed,
		TotalRefunded:    s.TotalRefunded,
		TotalAdjustments: s.TotalAdjustments,
		TransactionCount: s.TransactionCount,
	}
}

// GetSystemLogs reads entries from a log file, newest first
func (a *Aggregator) GetSystemLogs(ctx context.Context, loggerSvc logger.ILogger, page, limit int, level string) ([]*dto.LogEntryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	logs, err := loggerSvc.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogEntryResponse, 0, len(logs))
	for _, l := range logs {
		ts, _ := time.Parse("2006-01-02T15:04:05.000Z0700", l.Timestamp)
		res = append(res, &dto.LogEntryResponse{
			Id:        l.Id,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			Details:   l.Details,
			CreatedAt: ts,
		})
	}
	return res, nil
}
