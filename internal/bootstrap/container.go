package bootstrap

import (
	"context"
	"log"
	"time"

	"legalai-be/internal/config"
	"legalai-be/internal/constant"
	"legalai-be/internal/controller"
	"legalai-be/internal/handler"
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/pkg/mailer"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/repository/memory"
	"legalai-be/internal/repository/redisstore"
	"legalai-be/internal/routes"
	"legalai-be/internal/service"
	"legalai-be/internal/websocket"
	"legalai-be/pkg/events"
	"legalai-be/pkg/filestore"
	"legalai-be/pkg/llm/factory"
	"legalai-be/pkg/navigation"
	"legalai-be/pkg/role"
	"legalai-be/pkg/summary"

	pktNats "legalai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const (
	summaryTopic     = "summary_jobs"
	workspaceTTL     = 1 * time.Hour
	workspaceCleanup = 10 * time.Minute
)

type Container struct {
	// Controllers
	RoleController       controller.IRoleController
	NavigationController controller.INavigationController
	DraftController      controller.IDraftController
	ChatController       controller.IChatController
	SummaryController    controller.ISummaryController
	ShareController      controller.IShareController

	// Guard inputs for the router
	Sessions *serverutils.SessionReader
	Roles    *role.Store
	Logger   logger.ILogger

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    *service.AuditService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	closers []func()
}

func connectRedis(url string) *redis.Client {
	if url == "" {
		log.Printf("[INFO] REDIS_URL not set, roles stay in memory and websocket fan-out is local")
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}

func NewContainer(cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { sysLogger.Sync() })

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
		sysLogger,
	)

	files, err := filestore.NewStore(cfg.App.UploadDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to prepare upload dir: %v", err)
	}

	// 2. Job queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Infrastructure
	var publisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		publisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
		c.AuditService = service.NewAuditService(natsSub, auditLogger)
		c.closers = append(c.closers, natsSub.Close)
	}

	rdb := connectRedis(cfg.App.RedisURL)
	var roleStorage role.Storage = memory.NewRoleStorage()
	if rdb != nil {
		roleStorage = redisstore.NewRoleStorage(rdb)
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 4. Text generation
	chatProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:      cfg.Ai.ChatProvider,
		Model:         cfg.Ai.ChatModel,
		GeminiBaseURL: cfg.Ai.GeminiBaseURL,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		HFBaseURL:     cfg.Ai.HFBaseURL,
		HFAPIKey:      cfg.Keys.HuggingFace,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize chat provider: %v", err)
	}
	log.Printf("[INFO] Using chat provider: %s (%s)", cfg.Ai.ChatProvider, cfg.Ai.ChatModel)

	draftProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:      cfg.Ai.DraftProvider,
		Model:         cfg.Ai.DraftModel,
		GeminiBaseURL: cfg.Ai.GeminiBaseURL,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		HFBaseURL:     cfg.Ai.HFBaseURL,
		HFAPIKey:      cfg.Keys.HuggingFace,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize draft provider: %v", err)
	}
	log.Printf("[INFO] Using draft provider: %s (%s)", cfg.Ai.DraftProvider, cfg.Ai.DraftModel)

	systemPrompt := cfg.Ai.ChatSystemPrompt
	if systemPrompt == "" {
		systemPrompt = constant.ChatSystemPromptV1
	}

	// 5. Services
	workspace := memory.NewWorkspaceRepository(workspaceTTL, workspaceCleanup)
	c.Roles = role.NewStore(roleStorage, sysLogger)
	c.Sessions = serverutils.NewSessionReader(cfg.Auth.JWTSecret)

	roleService := service.NewRoleService(c.Roles, publisher, sysLogger)
	navigationService := service.NewNavigationService(navigation.NewFilter(c.Roles), routes.Table(), c.Roles)
	draftService := service.NewDraftService(draftProvider, workspace, c.WebSocketHub, publisher, sysLogger)
	chatService := service.NewChatService(
		chatProvider,
		systemPrompt,
		workspace,
		c.WebSocketHub,
		service.RevealSettings{Step: cfg.Stream.RevealStep, Interval: cfg.Stream.RevealInterval},
		sysLogger,
	)
	summaryService := service.NewSummaryService(files, workspace, pubSub, summaryTopic, c.WebSocketHub, sysLogger)
	shareService := service.NewShareService(files, emailService, publisher, sysLogger)

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		summaryTopic,
		workspace,
		summary.NewPipeline(summary.NewClient(cfg.ML.BaseURL)),
		publisher,
		sysLogger,
	)

	// 6. Controllers
	c.RoleController = controller.NewRoleController(roleService)
	c.NavigationController = controller.NewNavigationController(navigationService, c.Sessions)
	c.DraftController = controller.NewDraftController(draftService)
	c.ChatController = controller.NewChatController(chatService)
	c.SummaryController = controller.NewSummaryController(summaryService)
	c.ShareController = controller.NewShareController(shareService)
	c.StreamHandler = handler.NewStreamHandler(c.WebSocketHub, wsLogger)

	return c
}

// Start launches the hub, the summary consumer and, when NATS is up, the audit trail.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.AuditService != nil {
		if err := c.AuditService.Start(ctx); err != nil {
			c.Logger.Warn("Bootstrap", "Audit trail disabled", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
