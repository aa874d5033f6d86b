package service

import (
	"context"
	"errors"
	"time"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/pkg/mailer"
	"ai-contentgen-be/internal/repository/unitofwork"
	"ai-contentgen-be/pkg/admin/dashboard"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/admin/usage"
	"ai-contentgen-be/pkg/admin/user"

	"github.com/google/uuid"
)

type IAdminService interface {
	GetDashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)

	// Account Management
	GetAllAccounts(ctx context.Context, req dto.AdminAccountListRequest) (*dto.PagedResponse[dto.AdminAccountResponse], error)
	GetAccount(ctx context.Context, accountId uuid.UUID) (*dto.AdminAccountResponse, error)
	SetBan(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.BanAccountRequest) (*dto.AdminAccountResponse, error)
	ChangeRole(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.ChangeRoleRequest) (*dto.AdminAccountResponse, error)
	DeleteAccount(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.DeleteAccountRequest) error

	// Credits
	GrantCredits(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.AdminCreditRequest) (*dto.AdminCreditResponse, error)
	DeductCredits(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.AdminCreditRequest) (*dto.AdminCreditResponse, error)
	GetAccountTransactions(ctx context.Context, accountId uuid.UUID, page, limit int) (*dto.PagedResponse[dto.TransactionResponse], error)
	GetCreditStats(ctx context.Context) (*dto.CreditStatsResponse, error)
	GetBalanceDrift(ctx context.Context) ([]*dto.BalanceDriftResponse, error)

	// Usage, Audit & Logs
	GetUsage(ctx context.Context, req dto.UsageListRequest) ([]*dto.UsageStatResponse, error)
	GetAuditLogs(ctx context.Context, req dto.AuditListRequest) (*dto.PagedResponse[dto.AuditLogResponse], error)
	GetEntityTrail(ctx context.Context, entityType, entityId string) ([]*dto.AuditLogResponse, error)
	GetSystemLogs(ctx context.Context, req dto.IncidentLogRequest) ([]*dto.LogEntryResponse, error)
	GetIncidentLogs(ctx context.Context, req dto.IncidentLogRequest) ([]*dto.LogEntryResponse, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     ILedgerService
	audit      IAuditService
	publisher  adminEvents.Publisher
	email      mailer.IEmailService
	logger     logger.ILogger
	incidents  logger.ILogger

	userManager *user.Manager
	aggregator  *dashboard.Aggregator
	tracker     *usage.Tracker
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	ledger ILedgerService,
	audit IAuditService,
	publisher adminEvents.Publisher,
	email mailer.IEmailService,
	logger logger.ILogger,
	incidents logger.ILogger,
) IAdminService {
	return &adminService{
		uowFactory:  uowFactory,
		ledger:      ledger,
		audit:       audit,
		publisher:   publisher,
		email:       email,
		logger:      logger,
		incidents:   incidents,
		userManager: user.NewManager(logger),
		aggregator:  dashboard.NewAggregator(logger),
		tracker:     usage.NewTracker(logger),
	}
}

func (s *adminService) GetDashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	return s.aggregator.GetStats(ctx, s.uowFactory.NewUnitOfWork(ctx), time.Now())
}

// ============================================================================
// Account Management
// ============================================================================

func (s *adminService) GetAllAccounts(ctx context.Context, req dto.AdminAccountListRequest) (*dto.PagedResponse[dto.AdminAccountResponse], error) {
	accounts, total, err := s.userManager.FindAll(ctx, s.uowFactory.NewUnitOfWork(ctx), req)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AdminAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, *adminAccountToResponse(a))
	}
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return &dto.PagedResponse[dto.AdminAccountResponse]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *adminService) GetAccount(ctx context.Context, accountId uuid.UUID) (*dto.AdminAccountResponse, error) {
	account, err := s.userManager.FindOne(ctx, s.uowFactory.NewUnitOfWork(ctx), accountId)
	if err != nil {
		return nil, mapManagerError(err)
	}
	return adminAccountToResponse(account), nil
}

// canModerate reports whether actor may act on target. Nobody moderates
// themselves, and only a super admin acts on peers or superiors.
func canModerate(actor Identity, target *entity.Account) bool {
	if actor.AccountId == target.Id {
		return false
	}
	if actor.Role == entity.AccountRoleSuperAdmin {
		return true
	}
	return actor.Role.AtLeast(target.Role) && actor.Role != target.Role
}

func (s *adminService) SetBan(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.BanAccountRequest) (*dto.AdminAccountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	target, err := s.userManager.FindOne(ctx, uow, accountId)
	if err != nil {
		return nil, mapManagerError(err)
	}
	if !canModerate(actor, target) {
		return nil, ErrForbidden
	}

	change, err := s.userManager.SetBan(ctx, uow, accountId, req.Banned, req.Reason)
	if err != nil {
		return nil, mapManagerError(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	if change.Empty() {
		return adminAccountToResponse(change.Account), nil
	}

	action := entity.AuditActionBan
	if !req.Banned {
		action = entity.AuditActionUnban
	}
	s.recordAudit(ctx, actor, action, accountId, change, req.Reason)
	s.publisher.PublishAccountBanned(ctx, accountId, actor.AccountId, req.Banned)

	if req.Banned {
		if err := s.email.SendBanNotice(change.Account.Email); err != nil {
			s.logger.Warn(logger.ModuleAdmin, "Failed to send ban notice", map[string]interface{}{
				"account_id": accountId.String(),
				"error":      err.Error(),
			})
		}
	}
	return adminAccountToResponse(change.Account), nil
}

// ChangeRole lets admins move accounts between user and support. Granting
// admin or super_admin, or touching an admin, needs a super admin.
func (s *adminService) ChangeRole(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.ChangeRoleRequest) (*dto.AdminAccountResponse, error) {
	role := entity.AccountRole(req.Role)
	if !role.Valid() {
		return nil, ErrForbidden
	}
	if role.AtLeast(entity.AccountRoleAdmin) && actor.Role != entity.AccountRoleSuperAdmin {
		return nil, ErrForbidden
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	target, err := s.userManager.FindOne(ctx, uow, accountId)
	if err != nil {
		return nil, mapManagerError(err)
	}
	if !canModerate(actor, target) {
		return nil, ErrForbidden
	}

	previous := target.Role
	change, err := s.userManager.SetRole(ctx, uow, accountId, role)
	if err != nil {
		return nil, mapManagerError(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	if change.Empty() {
		return adminAccountToResponse(change.Account), nil
	}

	s.recordAudit(ctx, actor, entity.AuditActionRoleChange, accountId, change, req.Reason)
	s.publisher.PublishRoleChanged(ctx, accountId, actor.AccountId, string(previous), string(role))
	return adminAccountToResponse(change.Account), nil
}

func (s *adminService) DeleteAccount(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.DeleteAccountRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	target, err := s.userManager.FindOne(ctx, uow, accountId)
	if err != nil {
		return mapManagerError(err)
	}
	if !canModerate(actor, target) {
		return ErrForbidden
	}

	change, err := s.userManager.SoftDelete(ctx, uow, accountId)
	if err != nil {
		return mapManagerError(err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, entity.AuditActionDelete, accountId, change, req.Reason)
	return nil
}

func (s *adminService) recordAudit(ctx context.Context, actor Identity, action entity.AuditAction, accountId uuid.UUID, change *user.Change, reason string) {
	actorId := actor.AccountId
	if _, err := s.audit.Record(ctx, AuditEntry{
		ActorId:    &actorId,
		Action:     action,
		EntityType: entity.AuditEntityAccount,
		EntityId:   accountId.String(),
		Before:     change.Before,
		After:      change.After,
		Reason:     reason,
	}); err != nil {
		s.logger.Error(logger.ModuleAdmin, "Admin change committed without audit entry", map[string]interface{}{
			"action":     string(action),
			"account_id": accountId.String(),
			"error":      err.Error(),
		})
	}
}

// ============================================================================
// Credits
// ============================================================================

// GrantCredits adds credits on behalf of an admin. The ledger writes the audit
// entry, so this method does not.
func (s *adminService) GrantCredits(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.AdminCreditRequest) (*dto.AdminCreditResponse, error) {
	txType := entity.TransactionType(req.Type)
	if req.Type == "" {
		txType = entity.TransactionTypeBonus
	}
	switch txType {
	case entity.TransactionTypeBonus, entity.TransactionTypeAdjustment, entity.TransactionTypeRefund:
	default:
		return nil, ErrInvalidTransactionType
	}

	actorId := actor.AccountId
	result, err := s.ledger.Credit(ctx, LedgerRequest{
		AccountId:    accountId,
		Amount:       req.Amount,
		Type:         txType,
		GenerationId: req.GenerationId,
		ActorId:      &actorId,
		Description:  req.Reason,
	})
	if err != nil {
		return nil, err
	}
	return ledgerToAdminResponse(result), nil
}

// DeductCredits removes credits as an adjustment. It fails with
// InsufficientCredits rather than driving the balance negative.
func (s *adminService) DeductCredits(ctx context.Context, actor Identity, accountId uuid.UUID, req dto.AdminCreditRequest) (*dto.AdminCreditResponse, error) {
	actorId := actor.AccountId
	result, err := s.ledger.Debit(ctx, LedgerRequest{
		AccountId:   accountId,
		Amount:      req.Amount,
		Type:        entity.TransactionTypeAdjustment,
		ActorId:     &actorId,
		Description: req.Reason,
	})
	if err != nil {
		return nil, err
	}
	return ledgerToAdminResponse(result), nil
}

func (s *adminService) GetAccountTransactions(ctx context.Context, accountId uuid.UUID, page, limit int) (*dto.PagedResponse[dto.TransactionResponse], error) {
	txs, total, err := s.ledger.ListTransactions(ctx, accountId, page, limit)
	if err != nil {
		return nil, err
	}
	return transactionsToPage(txs, total, page, limit), nil
}

func (s *adminService) GetCreditStats(ctx context.Context) (*dto.CreditStatsResponse, error) {
	stats, err := s.ledger.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	resp := dashboard.CreditStatsToResponse(stats)
	return &resp, nil
}

func (s *adminService) GetBalanceDrift(ctx context.Context) ([]*dto.BalanceDriftResponse, error) {
	drifts, err := s.ledger.FindDrift(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.BalanceDriftResponse, 0, len(drifts))
	for _, d := range drifts {
		res = append(res, &dto.BalanceDriftResponse{
			AccountId:    d.AccountId,
			Cached:       d.Cached,
			LedgerSum:    d.LedgerSum,
			Transactions: d.Transactions,
		})
	}
	return res, nil
}

// ============================================================================
// Usage, Audit & Logs
// ============================================================================

func (s *adminService) GetUsage(ctx context.Context, req dto.UsageListRequest) ([]*dto.UsageStatResponse, error) {
	return s.tracker.List(ctx, s.uowFactory.NewUnitOfWork(ctx), req)
}

func (s *adminService) GetAuditLogs(ctx context.Context, req dto.AuditListRequest) (*dto.PagedResponse[dto.AuditLogResponse], error) {
	filter := AuditFilter{
		Action:     req.Action,
		EntityType: req.EntityType,
		EntityId:   req.EntityId,
		Page:       req.Page,
		Limit:      req.Limit,
	}
	if req.ActorId != "" {
		actorId, err := uuid.Parse(req.ActorId)
		if err != nil {
			return nil, err
		}
		filter.ActorId = &actorId
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}

	logs, total, err := s.audit.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, *auditToResponse(l))
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return &dto.PagedResponse[dto.AuditLogResponse]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *adminService) GetEntityTrail(ctx context.Context, entityType, entityId string) ([]*dto.AuditLogResponse, error) {
	logs, err := s.audit.EntityTrail(ctx, entityType, entityId)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, auditToResponse(l))
	}
	return res, nil
}

func (s *adminService) GetSystemLogs(ctx context.Context, req dto.IncidentLogRequest) ([]*dto.LogEntryResponse, error) {
	return s.aggregator.GetSystemLogs(ctx, s.logger, req.Page, req.Limit, req.Level)
}

// GetIncidentLogs reads the isolated ledger incident stream.
func (s *adminService) GetIncidentLogs(ctx context.Context, req dto.IncidentLogRequest) ([]*dto.LogEntryResponse, error) {
	return s.aggregator.GetSystemLogs(ctx, s.incidents, req.Page, req.Limit, req.Level)
}

// ============================================================================
// Mappers
// ============================================================================

func mapManagerError(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

func adminAccountToResponse(a *entity.Account) *dto.AdminAccountResponse {
	return &dto.AdminAccountResponse{
		Id:        a.Id,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      string(a.Role),
		Credits:   a.Credits,
		IsBanned:  a.IsBanned,
		BanReason: a.BanReason,
		CreatedAt: a.CreatedAt,
		DeletedAt: a.DeletedAt,
	}
}

func ledgerToAdminResponse(r *LedgerResult) *dto.AdminCreditResponse {
	return &dto.AdminCreditResponse{
		TransactionId: r.Transaction.Id,
		AccountId:     r.Transaction.AccountId,
		Amount:        r.Transaction.Amount,
		Type:          string(r.Transaction.Type),
		BalanceAfter:  r.BalanceAfter,
	}
}

func auditToResponse(l *entity.AuditLog) *dto.AuditLogResponse {
	return &dto.AuditLogResponse{
		Id:          l.Id,
		ActorId:     l.ActorId,
		Action:      string(l.Action),
		EntityType:  l.EntityType,
		EntityId:    l.EntityId,
		BeforeState: l.BeforeState,
		AfterState:  l.AfterState,
		Reason:      l.Reason,
		CreatedAt:   l.CreatedAt,
	}
}

func transactionsToPage(txs []*entity.CreditTransaction, total int64, page, limit int) *dto.PagedResponse[dto.TransactionResponse] {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items := make([]dto.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		items = append(items, transactionToResponse(t))
	}
	return &dto.PagedResponse[dto.TransactionResponse]{Items: items, Total: total, Page: page, Limit: limit}
}
