package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/fingerprint"
	"ai-contentgen-be/pkg/llm"
	"ai-contentgen-be/pkg/prompt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ai-contentgen-be/service")

type IGenerationService interface {
	Generate(ctx context.Context, identity Identity, req *dto.GenerateRequest) (*dto.GenerateResponse, error)
	Retry(ctx context.Context, identity Identity, generationId uuid.UUID) (*dto.GenerateResponse, error)
	Show(ctx context.Context, identity Identity, generationId uuid.UUID) (*dto.GenerationResponse, error)
	History(ctx context.Context, identity Identity, req *dto.GenerationListRequest) (*dto.PagedResponse[dto.GenerationResponse], error)
	Stats(ctx context.Context, accountId *uuid.UUID) (*dto.GenerationStatsResponse, error)
	Rate(ctx context.Context, identity Identity, generationId uuid.UUID, req *dto.RateGenerationRequest) error
}

type GenerationOptions struct {
	Timeout      time.Duration
	DefaultModel string
}

type generationService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     ILedgerService
	tools      IToolConfigService
	guard      IRiskGuard
	audit      IAuditService
	provider   llm.LLMProvider
	usage      IPublisherService
	publisher  adminEvents.Publisher
	logger     logger.ILogger
	incidents  logger.ILogger
	opts       GenerationOptions
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	ledger ILedgerService,
	tools IToolConfigService,
	guard IRiskGuard,
	audit IAuditService,
	provider llm.LLMProvider,
	usage IPublisherService,
	publisher adminEvents.Publisher,
	logger logger.ILogger,
	incidents logger.ILogger,
	opts GenerationOptions,
) IGenerationService {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &generationService{
		uowFactory: uowFactory,
		ledger:     ledger,
		tools:      tools,
		guard:      guard,
		audit:      audit,
		provider:   provider,
		usage:      usage,
		publisher:  publisher,
		logger:     logger,
		incidents:  incidents,
		opts:       opts,
	}
}

// Generate runs one request through risk check, credit check, cache lookup,
// upstream call and debit, in that order. Content is only returned after the
// matching debit has committed, or for a cache hit at zero cost.
func (s *generationService) Generate(ctx context.Context, identity Identity, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	ctx, span := tracer.Start(ctx, "generation.Generate", trace.WithAttributes(
		attribute.String("account.id", identity.AccountId.String()),
		attribute.String("tool.name", req.ToolName),
	))
	defer span.End()

	resp, err := s.generate(ctx, identity, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("generation.cached", resp.WasCached),
		attribute.Int("generation.credits_charged", resp.CreditsCharged),
	)
	return resp, nil
}

func (s *generationService) generate(ctx context.Context, identity Identity, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	tool, err := s.tools.Get(ctx, req.ToolName)
	if err != nil {
		return nil, err
	}
	if !tool.IsEnabled {
		return nil, ErrToolDisabled
	}

	settings := settingsFromDto(req.Settings)
	hash := fingerprint.Compute(fingerprint.Input{
		SourceContent: req.SourceContent,
		ToolName:      tool.ToolName,
		Tone:          settings.Tone,
		Emotion:       settings.Emotion,
		Language:      settings.Language,
		TargetRegion:  settings.TargetRegion,
		CreatorNotes:  settings.CreatorNotes,
	})

	if err := s.phase(ctx, "generation.risk_check", func(ctx context.Context) error {
		return s.guard.Check(ctx, identity, tool)
	}); err != nil {
		return nil, err
	}

	var balance int
	if err := s.phase(ctx, "generation.credit_check", func(ctx context.Context) error {
		var err error
		balance, err = s.ledger.GetBalance(ctx, identity.AccountId)
		if err != nil {
			return err
		}
		if balance < tool.CreditCost {
			return &InsufficientCreditsError{Required: tool.CreditCost, Available: balance}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	var cached *entity.Generation
	if err := s.phase(ctx, "generation.cache_lookup", func(ctx context.Context) error {
		var err error
		cached, err = s.uowFactory.NewUnitOfWork(ctx).GenerationRepository().FindOne(ctx,
			specification.CacheCandidate{InputHash: hash, ToolName: tool.ToolName},
		)
		return err
	}); err != nil {
		return nil, err
	}
	if cached != nil {
		s.publishUsage(ctx, identity.AccountId, nil, tool.ToolName, 0, true)
		s.logger.Info(logger.ModuleGeneration, "Cache hit", map[string]interface{}{
			"account_id":    identity.AccountId.String(),
			"tool_name":     tool.ToolName,
			"source_gen_id": cached.Id.String(),
		})
		return &dto.GenerateResponse{
			ToolName:  tool.ToolName,
			Content:   cached.Result,
			WasCached: true,
			Balance:   balance,
		}, nil
	}

	return s.runUpstream(ctx, identity, tool, req, settings, hash)
}

func (s *generationService) runUpstream(
	ctx context.Context,
	identity Identity,
	tool *entity.ToolConfig,
	req *dto.GenerateRequest,
	settings entity.GenerationSettings,
	hash string,
) (*dto.GenerateResponse, error) {
	model := s.opts.DefaultModel
	if tool.ModelOverride != nil && *tool.ModelOverride != "" {
		model = *tool.ModelOverride
	}

	gen := &entity.Generation{
		Id:            uuid.New(),
		AccountId:     identity.AccountId,
		ProjectRef:    req.ProjectRef,
		ToolName:      tool.ToolName,
		InputHash:     hash,
		Model:         model,
		SourceContent: req.SourceContent,
		Settings:      settings,
		Status:        entity.GenerationStatusPending,
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).GenerationRepository()
	if err := repo.Create(ctx, gen); err != nil {
		return nil, fmt.Errorf("create generation: %w", err)
	}
	if _, err := repo.Transition(ctx, gen.Id,
		[]entity.GenerationStatus{entity.GenerationStatusPending},
		entity.GenerationStatusProcessing, nil,
	); err != nil {
		s.markFailed(ctx, gen.Id, "could not start: "+err.Error(), 0)
		return nil, fmt.Errorf("start generation: %w", err)
	}

	text := prompt.NewGenerationBuilder(req.SourceContent, tool.Instruction, prompt.Settings{
		Tone:         settings.Tone,
		Emotion:      settings.Emotion,
		Language:     settings.Language,
		TargetRegion: settings.TargetRegion,
		CreatorNotes: settings.CreatorNotes,
	}).Build()

	started := time.Now()
	var completion *llm.Completion
	upstreamErr := s.phase(ctx, "generation.upstream", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
		var err error
		completion, err = s.provider.Generate(callCtx, text, llm.WithModel(model))
		return err
	})
	duration := time.Since(started).Milliseconds()

	if ctx.Err() != nil {
		return nil, s.cancelled(ctx, identity, gen.Id, duration)
	}
	if upstreamErr != nil {
		s.markFailed(ctx, gen.Id, upstreamErr.Error(), duration)
		s.logger.Error(logger.ModuleGeneration, "Upstream generation failed", map[string]interface{}{
			"generation_id": gen.Id.String(),
			"tool_name":     tool.ToolName,
			"model":         model,
			"error":         upstreamErr.Error(),
		})
		return nil, ErrGenerationUpstream
	}

	if completion.Model != "" {
		model = completion.Model
	}
	generationId := gen.Id
	var ledger *LedgerResult
	debitErr := s.phase(ctx, "generation.debit", func(ctx context.Context) error {
		var err error
		ledger, err = s.ledger.DebitWith(ctx, LedgerRequest{
			AccountId:    identity.AccountId,
			Amount:       tool.CreditCost,
			Type:         entity.TransactionTypeUsage,
			GenerationId: &generationId,
			Description:  fmt.Sprintf("%s generation", tool.Label),
		}, func(uow unitofwork.UnitOfWork, _ *entity.CreditTransaction) error {
			ok, err := uow.GenerationRepository().Transition(ctx, generationId,
				[]entity.GenerationStatus{entity.GenerationStatusProcessing},
				entity.GenerationStatusCompleted,
				map[string]interface{}{
					"result":            completion.Text,
					"model":             model,
					"prompt_tokens":     completion.PromptTokens,
					"completion_tokens": completion.CompletionTokens,
					"credits_charged":   tool.CreditCost,
					"duration_ms":       duration,
					"completed_at":      time.Now().UTC(),
				},
			)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("generation %s is no longer processing", generationId)
			}
			return nil
		})
		return err
	})
	if debitErr != nil {
		if ctx.Err() != nil && errors.Is(debitErr, ctx.Err()) && !s.wasBilled(ctx, generationId) {
			return nil, s.cancelled(ctx, identity, generationId, duration)
		}
		return nil, s.reportUnbilled(ctx, identity, tool, generationId, duration, debitErr)
	}

	s.recordCompleted(ctx, identity, tool, generationId, model)
	s.publishUsage(ctx, identity.AccountId, &generationId, tool.ToolName, completion.TotalTokens(), false)

	return &dto.GenerateResponse{
		GenerationId:   &generationId,
		ToolName:       tool.ToolName,
		Content:        completion.Text,
		CreditsCharged: tool.CreditCost,
		TokensUsed:     completion.TotalTokens(),
		DurationMs:     duration,
		Balance:        ledger.BalanceAfter,
	}, nil
}

// cancelled marks a generation the caller gave up on before it was billed.
func (s *generationService) cancelled(ctx context.Context, identity Identity, generationId uuid.UUID, duration int64) error {
	reason := "cancelled by caller"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = "caller deadline exceeded"
	}
	s.markFailed(ctx, generationId, reason, duration)
	s.logger.Warn(logger.ModuleGeneration, "Generation cancelled before billing", map[string]interface{}{
		"generation_id": generationId.String(),
		"account_id":    identity.AccountId.String(),
	})
	return ErrGenerationCancelled
}

// wasBilled reports whether a usage transaction exists for the generation.
// A failed lookup counts as billed so the caller takes the incident path.
func (s *generationService) wasBilled(ctx context.Context, generationId uuid.UUID) bool {
	ctx = context.WithoutCancel(ctx)
	n, err := s.uowFactory.NewUnitOfWork(ctx).CreditTransactionRepository().Count(ctx,
		specification.Filter("generation_id", generationId),
		specification.Filter("type", entity.TransactionTypeUsage),
	)
	return err != nil || n > 0
}

// reportUnbilled handles content that was generated but could not be paid
// for. The content is dropped and the incident goes to the isolated log.
func (s *generationService) reportUnbilled(ctx context.Context, identity Identity, tool *entity.ToolConfig, generationId uuid.UUID, duration int64, cause error) error {
	s.markFailed(ctx, generationId, "billing failed: "+cause.Error(), duration)

	details := map[string]interface{}{
		"generation_id": generationId.String(),
		"account_id":    identity.AccountId.String(),
		"tool_name":     tool.ToolName,
		"cost":          tool.CreditCost,
		"cause":         cause.Error(),
	}
	s.incidents.Error(logger.ModuleLedger, "Generated content could not be billed", details)
	s.logger.Error(logger.ModuleLedger, "Ledger inconsistency, content discarded", details)
	s.publisher.PublishLedgerInconsistency(context.WithoutCancel(ctx), identity.AccountId, generationId, tool.ToolName, tool.CreditCost, cause.Error())

	return &LedgerInconsistencyError{Cause: cause}
}

// markFailed survives caller cancellation; the row must not stay processing.
func (s *generationService) markFailed(ctx context.Context, generationId uuid.UUID, reason string, duration int64) {
	ctx = context.WithoutCancel(ctx)
	_, err := s.uowFactory.NewUnitOfWork(ctx).GenerationRepository().Transition(ctx, generationId,
		[]entity.GenerationStatus{entity.GenerationStatusPending, entity.GenerationStatusProcessing},
		entity.GenerationStatusFailed,
		map[string]interface{}{
			"error_message": reason,
			"duration_ms":   duration,
		},
	)
	if err != nil {
		s.logger.Error(logger.ModuleGeneration, "Failed to mark generation failed", map[string]interface{}{
			"generation_id": generationId.String(),
			"error":         err.Error(),
		})
	}
}

func (s *generationService) recordCompleted(ctx context.Context, identity Identity, tool *entity.ToolConfig, generationId uuid.UUID, model string) {
	actor := identity.AccountId
	if _, err := s.audit.Record(ctx, AuditEntry{
		ActorId:    &actor,
		Action:     entity.AuditActionGeneration,
		EntityType: entity.AuditEntityGeneration,
		EntityId:   generationId.String(),
		After: entity.Snapshot{
			"status":          string(entity.GenerationStatusCompleted),
			"tool_name":       tool.ToolName,
			"credits_charged": tool.CreditCost,
			"model":           model,
		},
	}); err != nil {
		s.logger.Warn(logger.ModuleGeneration, "Generation completed without audit entry", map[string]interface{}{
			"generation_id": generationId.String(),
			"error":         err.Error(),
		})
	}
	s.logger.Info(logger.ModuleGeneration, "Generation completed", map[string]interface{}{
		"generation_id": generationId.String(),
		"account_id":    identity.AccountId.String(),
		"tool_name":     tool.ToolName,
		"credits":       tool.CreditCost,
	})
}

func (s *generationService) publishUsage(ctx context.Context, accountId uuid.UUID, generationId *uuid.UUID, toolName string, tokens int, cacheHit bool) {
	payload, err := json.Marshal(dto.GenerationUsageMessage{
		AccountId:    accountId,
		GenerationId: generationId,
		ToolName:     toolName,
		TokensUsed:   tokens,
		CacheHit:     cacheHit,
		OccurredAt:   time.Now().UTC(),
	})
	if err == nil {
		err = s.usage.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Warn(logger.ModuleGeneration, "Failed to publish usage message", map[string]interface{}{
			"account_id": accountId.String(),
			"error":      err.Error(),
		})
	}
}

// phase wraps fn in a child span.
func (s *generationService) phase(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Retry starts a brand-new pass with the stored input of a failed generation.
// Nothing from the failed attempt is resumed.
func (s *generationService) Retry(ctx context.Context, identity Identity, generationId uuid.UUID) (*dto.GenerateResponse, error) {
	gen, err := s.findOwned(ctx, identity, generationId)
	if err != nil {
		return nil, err
	}
	if gen.Status != entity.GenerationStatusFailed {
		return nil, ErrGenerationNotRetryable
	}

	return s.Generate(ctx, identity, &dto.GenerateRequest{
		ToolName:      gen.ToolName,
		SourceContent: gen.SourceContent,
		ProjectRef:    gen.ProjectRef,
		Settings:      settingsToDto(gen.Settings),
	})
}

func (s *generationService) Show(ctx context.Context, identity Identity, generationId uuid.UUID) (*dto.GenerationResponse, error) {
	gen, err := s.findOwned(ctx, identity, generationId)
	if err != nil {
		return nil, err
	}
	resp := generationToResponse(gen)
	return &resp, nil
}

// History lists the caller's generations. Support staff and above may pass
// AccountId to look at another account, or leave it empty to see everyone.
func (s *generationService) History(ctx context.Context, identity Identity, req *dto.GenerationListRequest) (*dto.PagedResponse[dto.GenerationResponse], error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var specs []specification.Specification
	switch {
	case !identity.Role.AtLeast(entity.AccountRoleSupport):
		specs = append(specs, specification.OwnedByAccount{AccountID: identity.AccountId})
	case req.AccountId != "":
		accountId, err := uuid.Parse(req.AccountId)
		if err != nil {
			return nil, ErrAccountNotFound
		}
		specs = append(specs, specification.OwnedByAccount{AccountID: accountId})
	}
	if req.ToolName != "" {
		specs = append(specs, specification.ByToolName{ToolName: req.ToolName})
	}
	if req.Status != "" {
		specs = append(specs, specification.ByStatus{Status: req.Status})
	}
	if req.ProjectRef != "" {
		specs = append(specs, specification.ByProjectRef{ProjectRef: req.ProjectRef})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).GenerationRepository()
	total, err := repo.Count(ctx, specs...)
	if err != nil {
		return nil, err
	}
	gens, err := repo.FindAll(ctx, append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.GenerationResponse, 0, len(gens))
	for _, g := range gens {
		items = append(items, generationToResponse(g))
	}
	return &dto.PagedResponse[dto.GenerationResponse]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *generationService) Stats(ctx context.Context, accountId *uuid.UUID) (*dto.GenerationStatsResponse, error) {
	var specs []specification.Specification
	if accountId != nil {
		specs = append(specs, specification.OwnedByAccount{AccountID: *accountId})
	}
	stats, err := s.uowFactory.NewUnitOfWork(ctx).GenerationRepository().Stats(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return generationStatsToResponse(stats), nil
}

// Rate stores the owner's 1-5 rating on a completed generation.
func (s *generationService) Rate(ctx context.Context, identity Identity, generationId uuid.UUID, req *dto.RateGenerationRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return ErrInvalidRating
	}
	gen, err := s.findOwned(ctx, identity, generationId)
	if err != nil {
		return err
	}
	if gen.Status != entity.GenerationStatusCompleted {
		return ErrGenerationNotFound
	}
	return s.uowFactory.NewUnitOfWork(ctx).GenerationRepository().UpdateFeedback(ctx, gen.Id, req.Rating, req.Feedback)
}

func (s *generationService) findOwned(ctx context.Context, identity Identity, generationId uuid.UUID) (*entity.Generation, error) {
	gen, err := s.uowFactory.NewUnitOfWork(ctx).GenerationRepository().FindOne(ctx,
		specification.ByID{ID: generationId},
		specification.OwnedByAccount{AccountID: identity.AccountId},
	)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, ErrGenerationNotFound
	}
	return gen, nil
}

func settingsFromDto(d dto.GenerationSettingsDto) entity.GenerationSettings {
	return entity.GenerationSettings{
		Tone:         d.Tone,
		Emotion:      d.Emotion,
		Language:     d.Language,
		TargetRegion: d.TargetRegion,
		CreatorNotes: d.CreatorNotes,
	}
}

func settingsToDto(s entity.GenerationSettings) dto.GenerationSettingsDto {
	return dto.GenerationSettingsDto{
		Tone:         s.Tone,
		Emotion:      s.Emotion,
		Language:     s.Language,
		TargetRegion: s.TargetRegion,
		CreatorNotes: s.CreatorNotes,
	}
}

func generationToResponse(g *entity.Generation) dto.GenerationResponse {
	return dto.GenerationResponse{
		Id:               g.Id,
		AccountId:        g.AccountId,
		ProjectRef:       g.ProjectRef,
		ToolName:         g.ToolName,
		Model:            g.Model,
		Status:           string(g.Status),
		Settings:         settingsToDto(g.Settings),
		Result:           g.Result,
		PromptTokens:     g.PromptTokens,
		CompletionTokens: g.CompletionTokens,
		CreditsCharged:   g.CreditsCharged,
		DurationMs:       g.DurationMs,
		ErrorMessage:     g.ErrorMessage,
		UserRating:       g.UserRating,
		UserFeedback:     g.UserFeedback,
		CreatedAt:        g.CreatedAt,
		CompletedAt:      g.CompletedAt,
	}
}

func generationStatsToResponse(s *entity.GenerationStats) *dto.GenerationStatsResponse {
	return &dto.GenerationStatsResponse{
		Total:            s.Total,
		Completed:        s.Completed,
		Failed:           s.Failed,
		Pending:          s.Pending,
		TotalCreditsUsed: s.TotalCreditsUsed,
	}
}
