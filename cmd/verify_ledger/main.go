package main

import (
	"context"
	"flag"
	"os"

	"ai-contentgen-be/internal/config"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/unitofwork"
	"ai-contentgen-be/internal/service"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/database"

	"github.com/fatih/color"
)

// Compares each account's cached balance with the sum of its ledger and
// exits non-zero when any account drifts.
func main() {
	showStats := flag.Bool("stats", false, "also print ledger totals")
	flag.Parse()

	cfg := config.Load()
	db, err := database.NewGormDB(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
	})
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(2)
	}

	nop := logger.NewNop()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	ledger := service.NewLedgerService(
		uowFactory,
		service.NewAuditService(uowFactory, nop),
		adminEvents.NewNatsPublisher(nil, nop),
		nop,
	)
	ctx := context.Background()

	if *showStats {
		stats, err := ledger.GetStats(ctx)
		if err != nil {
			color.Red("Failed to load ledger stats: %v", err)
			os.Exit(2)
		}
		color.Cyan("Purchased: %d  Bonus: %d  Used: %d  Refunded: %d  Adjustments: %d  (%d transactions)",
			stats.TotalPurchased, stats.TotalBonus, stats.TotalUsed, stats.TotalRefunded, stats.TotalAdjustments, stats.TransactionCount)
	}

	drifts, err := ledger.FindDrift(ctx)
	if err != nil {
		color.Red("Reconciliation query failed: %v", err)
		os.Exit(2)
	}
	if len(drifts) == 0 {
		color.Green("All balances match their ledgers")
		return
	}

	color.Red("%d account(s) out of balance:", len(drifts))
	for _, d := range drifts {
		color.Yellow("  %s  cached=%d  ledger=%d  (%d transactions, diff %+d)",
			d.AccountId, d.Cached, d.LedgerSum, d.Transactions, int64(d.Cached)-d.LedgerSum)
	}
	os.Exit(1)
}
