package main

import (
	"context"
	"os"

	"ai-contentgen-be/internal/config"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/memory"
	"ai-contentgen-be/internal/repository/unitofwork"
	"ai-contentgen-be/internal/service"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/admin/toolconfig"
	"ai-contentgen-be/pkg/database"

	"github.com/fatih/color"
)

// Seeds the default tool catalogue. Existing rows are left untouched so
// admin edits survive a re-run.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDB(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
	})
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	uowFactory := unitofwork.NewRepositoryFactory(db)
	tools := service.NewToolConfigService(
		uowFactory,
		memory.NewToolConfigCache(cfg.Generation.ToolCacheTTL),
		service.NewAuditService(uowFactory, sysLogger),
		adminEvents.NewNatsPublisher(nil, sysLogger),
		sysLogger,
	)

	catalogue := toolconfig.DefaultCatalogue()
	color.Cyan("Seeding %d tools...", len(catalogue))

	created, err := tools.Seed(context.Background(), catalogue)
	if err != nil {
		color.Red("Seeding failed: %v", err)
		os.Exit(1)
	}

	seen := make(map[string]bool, len(created))
	for _, name := range created {
		seen[name] = true
	}
	for _, t := range catalogue {
		if seen[t.ToolName] {
			color.Green("  + %-16s %d credit(s)", t.ToolName, t.CreditCost)
		} else {
			color.Yellow("  = %-16s already present, skipped", t.ToolName)
		}
	}
	color.Cyan("Done: %d created, %d skipped", len(created), len(catalogue)-len(created))
}
