package bootstrap

import (
	"context"
	"log"
	"strings"
	"time"

	"ai-studio-be/internal/config"
	"ai-studio-be/internal/controller"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/logger"
	"ai-studio-be/internal/repository/unitofwork"
	"ai-studio-be/internal/service"
	"ai-studio-be/pkg/generator"
	pktNats "ai-studio-be/pkg/nats"
	"ai-studio-be/pkg/ratelimit"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	HealthController     controller.IHealthController
	QuotaController      controller.IQuotaController
	UsageController      controller.IUsageController
	CostController       controller.ICostController
	GenerationController controller.IGenerationController
	AdminController      controller.IAdminController

	// Used by the identity middleware to provision users on first sight.
	AccountService service.IAccountService

	// Background Services (Exposed for main.go to run)
	EventRelayService service.IEventRelayService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	clock := service.Clock(service.SystemClock)

	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	eventBus := service.NewEventBus(pubSub, service.DomainEventsTopic, sysLogger)

	// 3. Infrastructure
	// NATS is optional; without it domain events stay in process.
	var sink service.EventSink
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			sink = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	limiter := newLimiter(cfg, c)

	// 4. Services
	auditService := service.NewAuditService(uowFactory, sysLogger)
	accountService := service.NewAccountService(uowFactory, service.FreeTier(cfg.Quota), eventBus, sysLogger, clock)
	quotaService := service.NewQuotaService(uowFactory, eventBus, sysLogger, clock)
	usageService := service.NewUsageService(uowFactory, eventBus, sysLogger, clock)
	generationService := service.NewGenerationService(
		limiter,
		service.RateLimit{Limit: cfg.RateLimit.PerMinute, Window: time.Minute},
		quotaService,
		usageService,
		auditService,
		newProviders(cfg.Providers),
		sysLogger,
		clock,
	)

	c.AccountService = accountService
	c.EventRelayService = service.NewEventRelayService(pubSub, service.DomainEventsTopic, sink, sysLogger)

	// 5. Controllers
	c.HealthController = controller.NewHealthController(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	c.QuotaController = controller.NewQuotaController(quotaService, auditService)
	c.UsageController = controller.NewUsageController(usageService, auditService)
	c.CostController = controller.NewCostController(auditService)
	c.GenerationController = controller.NewGenerationController(generationService, auditService)
	c.AdminController = controller.NewAdminController(accountService, auditService)

	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newLimiter(cfg *config.Config, c *Container) ratelimit.Limiter {
	if cfg.RateLimit.Backend != "redis" {
		return ratelimit.NewMemoryLimiter(cfg.RateLimit.PerMinute, time.Minute)
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

	return ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.PerMinute, time.Minute, "ratelimit:")
}

func newProviders(cfg config.ProviderConfig) map[entity.GenerationType]generator.Provider {
	providers := make(map[entity.GenerationType]generator.Provider, len(entity.GenerationTypes))

	if cfg.GoogleGemini != "" {
		providers[entity.GenerationTypeImage] = generator.NewGeminiImageProvider(cfg.GoogleGemini, cfg.GeminiImageModel, cfg.Timeout)
		log.Printf("[INFO] Using Image Provider: GEMINI")
	}
	if cfg.VideoURL != "" {
		providers[entity.GenerationTypeVideo] = generator.NewRelayProvider("video", cfg.VideoURL, cfg.APIKey, cfg.Timeout)
		log.Printf("[INFO] Using Video Provider: %s", cfg.VideoURL)
	}
	if cfg.MusicURL != "" {
		providers[entity.GenerationTypeMusic] = generator.NewRelayProvider("music", cfg.MusicURL, cfg.APIKey, cfg.Timeout)
		log.Printf("[INFO] Using Music Provider: %s", cfg.MusicURL)
	}

	for _, t := range entity.GenerationTypes {
		if _, ok := providers[t]; !ok {
			log.Printf("[WARN] No %s provider configured, requests will fail", t)
			providers[t] = generator.NewUnconfigured(strings.ToLower(string(t)))
		}
	}
	return providers
}
