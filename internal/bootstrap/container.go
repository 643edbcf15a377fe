package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"vibe-curation-be/internal/config"
	"vibe-curation-be/internal/controller"
	"vibe-curation-be/internal/handler"
	"vibe-curation-be/internal/mapper"
	"vibe-curation-be/internal/pkg/logger"
	"vibe-curation-be/internal/repository/memory"
	"vibe-curation-be/internal/service"
	"vibe-curation-be/internal/websocket"
	"vibe-curation-be/pkg/curation"
	"vibe-curation-be/pkg/enrich/factory"
	"vibe-curation-be/pkg/imagesearch"
	"vibe-curation-be/pkg/scoring"
	"vibe-curation-be/pkg/store"

	pktNats "vibe-curation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	CurationController controller.ICurationController

	// Background Services (Exposed for main.go to run)
	ConsumerService *service.ConsumerService

	// WebSockets
	SessionFeedHandler *handler.SessionFeedHandler
	WebSocketHub       *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	searchCfg := imagesearch.DefaultConfig()
	searchCfg.BaseURL = cfg.Provider.ImageSearchBaseURL
	searchCfg.License = cfg.Provider.ImageSearchLicense
	searchCfg.PageSize = cfg.Provider.ImageSearchPageSize
	searcher := imagesearch.NewClient(searchCfg, initEngineLogger())
	log.Printf("[INFO] Using image catalog: %s", searchCfg.BaseURL)

	enricher, err := factory.NewProvider(cfg.Ai.EnrichProvider, cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize enrichment provider: %v", err)
	}
	log.Printf("[INFO] Using enrichment provider: %s (%s)", cfg.Ai.EnrichProvider, cfg.Ai.OllamaModel)

	// 4. Engine
	weights := scoring.Weights{
		Base:          cfg.Curation.BaseWeight,
		Kept:          cfg.Curation.KeptWeight,
		Accepted:      cfg.Curation.AcceptedWeight,
		ColorPreseed:  cfg.Curation.ColorPreseed,
		MaxKeywords:   cfg.Curation.MaxKeywords,
		MaxKeptTitles: cfg.Curation.MaxKeptTitles,
	}
	engineCfg := curation.Config{
		SlotCount:         cfg.Curation.SlotCount,
		PrefetchThreshold: cfg.Curation.PrefetchThreshold,
		EnrichTimeout:     time.Duration(cfg.Curation.EnrichTimeoutMs) * time.Millisecond,
	}
	engine := curation.NewEngine(searcher, enricher, weights, engineCfg, initEngineLogger())

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository(
		time.Duration(cfg.App.SessionTTLMinutes)*time.Minute,
		10*time.Minute,
	)

	// 4.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Feed fan-out stays local", err)
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/feed.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, sysLogger)
	auditLogger := logger.NewIsolatedLogger("logs/audit.log")
	consumerService := service.NewConsumerService(pubSub, wsHub, natsPub, sysLogger, auditLogger)

	// Every settled transition streams one snapshot to the session's watchers.
	engine.OnUpdate = func(s *store.Session) {
		s.Lock()
		state := mapper.ToSessionState(s)
		s.Unlock()
		publisherService.PublishSessionUpdated(state)
	}

	curationService := service.NewCurationService(engine, sessionRepo, publisherService, sysLogger)

	// 6. Handlers & Controllers
	feedHandler := handler.NewSessionFeedHandler(sessionRepo, wsHub, wsLogger)

	return &Container{
		CurationController: controller.NewCurationController(curationService),
		ConsumerService:    consumerService,
		SessionFeedHandler: feedHandler,
		WebSocketHub:       wsHub,
	}
}

func initEngineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "curation.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[CURATION] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
