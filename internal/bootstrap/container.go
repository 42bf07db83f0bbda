package bootstrap

import (
	"context"
	"log"

	"github.com/Gatu-1548/plagio-ia/internal/config"
	"github.com/Gatu-1548/plagio-ia/internal/controller"
	"github.com/Gatu-1548/plagio-ia/internal/handler"
	"github.com/Gatu-1548/plagio-ia/internal/lifecycle"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/metrics"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/internal/service"
	"github.com/Gatu-1548/plagio-ia/internal/storage"
	"github.com/Gatu-1548/plagio-ia/internal/websocket"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/events"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"

	pktNats "github.com/Gatu-1548/plagio-ia/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	ProjectController      controller.IProjectController
	DocumentController     controller.IDocumentController
	OrganizationController controller.IOrganizationController
	UserController         controller.IUserController
	PlanController         controller.PlanController
	BIController           controller.IBIController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & per-tab state
	StatusHandler *handler.StatusHandler
	WebSocketHub  *websocket.Hub
	Workspaces    *workspace.Registry

	Metrics *metrics.Metrics
	Logger  logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	appMetrics := metrics.New()

	// 2. Event Bus
	// Subscribers ack before the next publish so a tab sees its statuses in order.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS (optional: console events are dropped when unset)
	var emitter *events.Emitter
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			emitter = events.NewEmitter(natsPub, sysLogger)
		}
	}

	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
			if cfg.Storage.Driver == "redis" {
				log.Printf("[WARN] Falling back to in-memory tab storage")
			}
			rdb.Close()
			rdb = nil
		}
	}

	var store storage.Store
	if cfg.Storage.Driver == "redis" && rdb != nil {
		store = storage.NewRedisStore(rdb, cfg.Storage.SessionTTL)
		log.Printf("[INFO] Using tab storage: REDIS")
	} else {
		store = storage.NewMemoryStore(cfg.Storage.SessionTTL)
		log.Printf("[INFO] Using tab storage: MEMORY")
	}

	// API gateway
	gw := gateway.New(gateway.Options{
		BaseURL:        cfg.Gateway.BaseURL,
		GraphQLPath:    cfg.Gateway.GraphQLPath,
		UploadPath:     cfg.Gateway.UploadPath,
		RequestTimeout: cfg.Gateway.RequestTimeout,
		RateLimit:      cfg.Gateway.RateLimit,
		RateBurst:      cfg.Gateway.RateBurst,
		Logger:         sysLogger,
		Observe:        appMetrics.ObserveGateway,
	})

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.HubLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)

	// 4. Services
	publisherService := service.NewPublisherService(pubSub)
	consumerService := service.NewConsumerService(pubSub, wsHub, appMetrics, emitter, sysLogger)

	registry := workspace.NewRegistry(workspace.Dependencies{
		Storage: store,
		Gateway: gw,
		Poller: poller.Options{
			Interval:      cfg.Polling.Interval,
			Ceiling:       cfg.Polling.Ceiling,
			SilentTimeout: cfg.Polling.SilentTimeout,
			Logger:        sysLogger,
		},
		CacheTTL: cfg.Storage.ProjectCacheTTL,
		IdleTTL:  cfg.Storage.IdleTTL,
		OnEvent: func(tabID string, ev lifecycle.Event) {
			if err := publisherService.PublishStatus(context.Background(), tabID, ev); err != nil {
				sysLogger.Warn("Container", "Failed to publish document status", map[string]interface{}{"tab_id": tabID, "error": err.Error()})
			}
		},
		OnOpen:  func(string) { appMetrics.WorkspaceOpened() },
		OnClose: func(string) { appMetrics.WorkspaceClosed() },
		Logger:  sysLogger,
	})

	authService := service.NewAuthService(gw, emitter, sysLogger)
	projectService := service.NewProjectService(gw, emitter, sysLogger)
	documentService := service.NewDocumentService(gw, publisherService, appMetrics, emitter, sysLogger)
	organizationService := service.NewOrganizationService(gw, emitter, sysLogger)
	userService := service.NewUserService(gw)
	planService := service.NewPlanService(gw)
	biService := service.NewBIService(gw)

	statusHandler := handler.NewStatusHandler(documentService, wsHub, wsLogger)

	c := &Container{
		AuthController:         controller.NewAuthController(authService),
		ProjectController:      controller.NewProjectController(projectService, documentService),
		DocumentController:     controller.NewDocumentController(documentService),
		OrganizationController: controller.NewOrganizationController(organizationService),
		UserController:         controller.NewUserController(userService),
		PlanController:         controller.NewPlanController(planService),
		BIController:           controller.NewBIController(biService),

		ConsumerService: consumerService,

		StatusHandler: statusHandler,
		WebSocketHub:  wsHub,
		Workspaces:    registry,

		Metrics: appMetrics,
		Logger:  sysLogger,
	}

	// Workspaces stop their pollers before the bus and brokers go away.
	c.closers = append(c.closers, registry.Close)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	if natsPub != nil {
		c.closers = append(c.closers, natsPub.Close)
	}
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })
	return c
}

// Close releases everything NewContainer opened, in dependency order.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}
