package user

import (
	"context"
	"fmt"
	"strings"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ErrNotFound is returned for missing or tombstoned accounts
var ErrNotFound = fmt.Errorf("account not found")

// Manager handles account moderation
type Manager struct {
	logger logger.ILogger
}

// NewManager creates a new account manager
func NewManager(logger logger.ILogger) *Manager {
	return &Manager{
		logger: logger,
	}
}

// Change carries the pre- and post-images of the fields a mutation touched
type Change struct {
	Account *entity.Account
	Before  entity.Snapshot
	After   entity.Snapshot
}

// Empty reports whether the mutation changed nothing
func (c *Change) Empty() bool {
	return len(c.After) == 0
}

// FindAll retrieves accounts with pagination and optional filters
func (m *Manager) FindAll(ctx context.Context, uow unitofwork.UnitOfWork, req dto.AdminAccountListRequest) ([]*entity.Account, int64, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var specs []specification.Specification
	if search := strings.TrimSpace(req.Search); search != "" {
		specs = append(specs, specification.AccountSearch{Query: search})
	}
	if req.Role != "" {
		specs = append(specs, specification.ByRole{Role: req.Role})
	}
	if req.Banned != "" {
		specs = append(specs, specification.BannedAccounts{Banned: req.Banned == "true"})
	}

	total, err := uow.AccountRepository().Count(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}
	accounts, err := uow.AccountRepository().FindAll(ctx, append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)...)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// FindOne retrieves a single live account
func (m *Manager) FindOne(ctx context.Context, uow unitofwork.UnitOfWork, accountId uuid.UUID) (*entity.Account, error) {
	account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: accountId})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

// SetBan bans or unbans an account. Unbanning clears the reason.
func (m *Manager) SetBan(ctx context.Context, uow unitofwork.UnitOfWork, accountId uuid.UUID, banned bool, reason string) (*Change, error) {
	account, err := m.FindOne(ctx, uow, accountId)
	if err != nil {
		return nil, err
	}

	change := &Change{Account: account, Before: entity.Snapshot{}, After: entity.Snapshot{}}
	if account.IsBanned == banned {
		return change, nil
	}

	var reasonPtr *string
	if banned {
		reasonPtr = &reason
	}
	if err := uow.AccountRepository().UpdateBanStatus(ctx, accountId, banned, reasonPtr); err != nil {
		return nil, err
	}

	change.Before["is_banned"] = account.IsBanned
	change.After["is_banned"] = banned
	account.IsBanned = banned
	account.BanReason = reasonPtr

	m.logger.Info(logger.ModuleAdmin, "Updated account ban status", map[string]interface{}{
		"account_id": accountId.String(),
		"banned":     banned,
	})
	return change, nil
}

// SetRole changes the account role
func (m *Manager) SetRole(ctx context.Context, uow unitofwork.UnitOfWork, accountId uuid.UUID, role entity.AccountRole) (*Change, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role '%s'", role)
	}
	account, err := m.FindOne(ctx, uow, accountId)
	if err != nil {
		return nil, err
	}

	change := &Change{Account: account, Before: entity.Snapshot{}, After: entity.Snapshot{}}
	if account.Role == role {
		return change, nil
	}
	if err := uow.AccountRepository().UpdateRole(ctx, accountId, role); err != nil {
		return nil, err
	}

	change.Before["role"] = string(account.Role)
	change.After["role"] = string(role)
	account.Role = role
	return change, nil
}

// SoftDelete tombstones the account. Ledger rows stay untouched.
func (m *Manager) SoftDelete(ctx context.Context, uow unitofwork.UnitOfWork, accountId uuid.UUID) (*Change, error) {
	account, err := m.FindOne(ctx, uow, accountId)
	if err != nil {
		return nil, err
	}
	if err := uow.AccountRepository().Delete(ctx, accountId); err != nil {
		return nil, err
	}

	m.logger.Info(logger.ModuleAdmin, "Deleted account", map[string]interface{}{
		"account_id": accountId.String(),
	})
	return &Change{
		Account: account,
		Before:  entity.Snapshot{"deleted": false},
		After:   entity.Snapshot{"deleted": true},
	}, nil
}
