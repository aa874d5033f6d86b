package bootstrap

import (
	"context"
	"log"

	"ai-contentgen-be/internal/config"
	"ai-contentgen-be/internal/controller"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/pkg/mailer"
	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/repository/memory"
	"ai-contentgen-be/internal/repository/unitofwork"
	"ai-contentgen-be/internal/service"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/llm"
	"ai-contentgen-be/pkg/llm/factory"
	pktNats "ai-contentgen-be/pkg/nats"
	"ai-contentgen-be/pkg/payment"
	"ai-contentgen-be/pkg/ratelimit"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ToolController       controller.IToolController
	AccountController    controller.IAccountController
	GenerationController controller.IGenerationController
	PaymentController    controller.IPaymentController
	AdminController      controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

// Overrides replaces infrastructure that tests do not want to dial.
type Overrides struct {
	LLMProvider  llm.LLMProvider
	Gateway      payment.Gateway
	Counter      ratelimit.WindowCounter
	Logger       logger.ILogger
	Incidents    logger.ILogger
	EmailService mailer.IEmailService
	Events       adminEvents.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	return NewContainerWith(db, cfg, Overrides{})
}

func NewContainerWith(db *gorm.DB, cfg *config.Config, o Overrides) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	sysLogger := o.Logger
	if sysLogger == nil {
		zl := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
		c.closers = append(c.closers, func() { _ = zl.Sync() })
		sysLogger = zl
	}
	incidentLogger := o.Incidents
	if incidentLogger == nil {
		il := logger.NewIsolatedLogger(cfg.App.IncidentLogPath)
		c.closers = append(c.closers, func() { _ = il.Sync() })
		incidentLogger = il
	}

	emailService := o.EmailService
	if emailService == nil {
		if cfg.SMTP.Host == "" {
			log.Println("[INFO] SMTP_HOST not set, outgoing email disabled")
			emailService = mailer.NewNoopEmailService()
		} else {
			emailService = mailer.NewEmailService(
				cfg.SMTP.Host,
				cfg.SMTP.Port,
				cfg.SMTP.Email,
				cfg.SMTP.Password,
				cfg.SMTP.Email,
				cfg.SMTP.SenderName,
			)
		}
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	eventPublisher := o.Events
	if eventPublisher == nil {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
		eventPublisher = adminEvents.NewNatsPublisher(natsPub, sysLogger)
	}

	// 3. Infrastructure
	llmProvider := o.LLMProvider
	if llmProvider == nil {
		baseURL := cfg.Ai.OllamaBaseURL
		if cfg.Ai.LLMProvider == "gemini" {
			baseURL = cfg.Ai.GeminiBaseURL
		}
		p, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, cfg.Keys.GoogleGemini)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
		}
		llmProvider = p
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	counter := o.Counter
	if counter == nil {
		counter = newWindowCounter(cfg, uowFactory, c)
	}

	gateway := o.Gateway
	if gateway == nil {
		gateway = payment.NewMidtransGateway(cfg.Payment.MidtransServerKey, cfg.Payment.IsProduction)
	}

	// 4. Services
	auditService := service.NewAuditService(uowFactory, sysLogger)
	ledgerService := service.NewLedgerService(uowFactory, auditService, eventPublisher, sysLogger)
	toolConfigService := service.NewToolConfigService(
		uowFactory,
		memory.NewToolConfigCache(cfg.Generation.ToolCacheTTL),
		auditService,
		eventPublisher,
		sysLogger,
	)
	riskGuard := service.NewRiskGuard(counter, memory.NewFlagRegistry(cfg.RateLimit.FlagTTL), eventPublisher, sysLogger)

	publisherService := service.NewPublisherService(cfg.Generation.UsageTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Generation.UsageTopic, uowFactory, sysLogger)

	generationService := service.NewGenerationService(
		uowFactory,
		ledgerService,
		toolConfigService,
		riskGuard,
		auditService,
		llmProvider,
		publisherService,
		eventPublisher,
		sysLogger,
		incidentLogger,
		service.GenerationOptions{
			Timeout:      cfg.Generation.Timeout,
			DefaultModel: cfg.Ai.LLMModel,
		},
	)
	accountService := service.NewAccountService(uowFactory, ledgerService, sysLogger, cfg.Generation.SignupBonusCredits)
	topUpService := service.NewTopUpService(uowFactory, ledgerService, gateway, emailService, eventPublisher, sysLogger, incidentLogger, service.TopUpOptions{
		ServerKey:      cfg.Payment.MidtransServerKey,
		PricePerCredit: cfg.Payment.PricePerCredit,
		MinCredits:     cfg.Payment.MinTopUpCredits,
		FinishURL:      cfg.App.ClientURL + "/billing",
	})
	adminService := service.NewAdminService(
		uowFactory,
		ledgerService,
		auditService,
		eventPublisher,
		emailService,
		sysLogger,
		incidentLogger,
	)

	// 5. Controllers
	auth := serverutils.NewJwtMiddleware(cfg.Auth.JWTSecret)
	identity := controller.IdentityMiddleware(accountService)

	c.ToolController = controller.NewToolController(toolConfigService)
	c.AccountController = controller.NewAccountController(accountService, ledgerService, topUpService, auth, identity)
	c.GenerationController = controller.NewGenerationController(generationService, auth, identity)
	c.PaymentController = controller.NewPaymentController(topUpService)
	c.AdminController = controller.NewAdminController(adminService, toolConfigService, generationService, auth, identity)

	return c
}

// newWindowCounter picks the rate-limit backend. Redis keeps the sliding
// windows off the primary database; the database backend counts generation
// rows and needs nothing extra to run.
func newWindowCounter(cfg *config.Config, uowFactory unitofwork.RepositoryFactory, c *Container) ratelimit.WindowCounter {
	if cfg.RateLimit.Backend == "database" {
		log.Println("[INFO] Rate limiting backed by generation history")
		return service.NewGenerationWindowCounter(uowFactory)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return ratelimit.NewRedisWindowCounter(rdb, cfg.RateLimit.KeyPrefix)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
