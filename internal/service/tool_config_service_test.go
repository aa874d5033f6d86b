package service

import (
	"context"
	"testing"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/testutil"
	"ai-contentgen-be/pkg/admin/toolconfig"
	pkgEvents "ai-contentgen-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolConfigUpdateIsVisibleImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedTool(t, f.db, "caption", 3, 10, 50, true)
	adminId := testutil.SeedAccount(t, f.db, entity.AccountRoleAdmin, 0)

	// Warm the cache with the old cost.
	tool, err := f.tools.Get(ctx, "caption")
	require.NoError(t, err)
	assert.Equal(t, 3, tool.CreditCost)

	cost := 5
	label := "CAPTION"
	updated, err := f.tools.Update(ctx, adminId, "caption", dto.UpdateToolConfigRequest{
		CreditCost: &cost,
		Label:      &label,
		Reason:     "pricing review",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.CreditCost)

	tool, err = f.tools.Get(ctx, "caption")
	require.NoError(t, err)
	assert.Equal(t, 5, tool.CreditCost)
	require.NotNil(t, tool.UpdatedBy)
	assert.Equal(t, adminId, *tool.UpdatedBy)

	var entry model.AuditLog
	require.NoError(t, f.db.Where("entity_type = ? AND entity_id = ?", entity.AuditEntityToolConfig, "caption").First(&entry).Error)
	assert.Equal(t, "pricing review", entry.Reason)
	assert.EqualValues(t, 3, entry.BeforeState["credit_cost"])
	assert.EqualValues(t, 5, entry.AfterState["credit_cost"])
	assert.NotContains(t, entry.AfterState, "label")

	assert.Equal(t, 1, f.events.Count(pkgEvents.TypeToolConfigUpdated))
}

func TestToolConfigNoopUpdateIsNotAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedTool(t, f.db, "caption", 3, 10, 50, true)
	adminId := testutil.SeedAccount(t, f.db, entity.AccountRoleAdmin, 0)

	cost := 3
	_, err := f.tools.Update(ctx, adminId, "caption", dto.UpdateToolConfigRequest{CreditCost: &cost})
	require.NoError(t, err)

	assert.EqualValues(t, 0, f.count(t, &model.AuditLog{}, ""))
	assert.Zero(t, f.events.Count(pkgEvents.TypeToolConfigUpdated))

	_, err = f.tools.Update(ctx, adminId, "missing", dto.UpdateToolConfigRequest{CreditCost: &cost})
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestToolConfigListHidesDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedTool(t, f.db, "caption", 1, 0, 0, true)
	testutil.SeedTool(t, f.db, "hashtags", 1, 0, 0, false)
	adminId := testutil.SeedAccount(t, f.db, entity.AccountRoleAdmin, 0)

	enabled, err := f.tools.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "caption", enabled[0].ToolName)

	all, err := f.tools.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	on := true
	_, err = f.tools.Update(ctx, adminId, "hashtags", dto.UpdateToolConfigRequest{IsEnabled: &on})
	require.NoError(t, err)

	enabled, err = f.tools.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, enabled, 2)
}

func TestSeedKeepsAdminEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	adminId := testutil.SeedAccount(t, f.db, entity.AccountRoleAdmin, 0)
	catalogue := toolconfig.DefaultCatalogue()

	created, err := f.tools.Seed(ctx, catalogue)
	require.NoError(t, err)
	assert.Len(t, created, len(catalogue))

	cost := 9
	_, err = f.tools.Update(ctx, adminId, catalogue[0].ToolName, dto.UpdateToolConfigRequest{CreditCost: &cost})
	require.NoError(t, err)

	created, err = f.tools.Seed(ctx, toolconfig.DefaultCatalogue())
	require.NoError(t, err)
	assert.Empty(t, created)

	tool, err := f.tools.Get(ctx, catalogue[0].ToolName)
	require.NoError(t, err)
	assert.Equal(t, 9, tool.CreditCost)
}
