package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fundflow/backend/internal/config"
	"github.com/fundflow/backend/internal/db"
	"github.com/fundflow/backend/internal/events"
	"github.com/fundflow/backend/internal/funding"
	apphttp "github.com/fundflow/backend/internal/http"
	"github.com/fundflow/backend/internal/http/handlers"
	"github.com/fundflow/backend/internal/repositories"
	"github.com/fundflow/backend/internal/services"
	"github.com/fundflow/backend/internal/treasury"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	accountRepo := repositories.NewAccountRepo(pool)
	registryRepo := repositories.NewRegistryRepo(pool)
	proposalRepo := repositories.NewProposalRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	contributionRepo := repositories.NewContributionRepo(pool)
	settlementRepo := repositories.NewSettlementRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Funding core, backed by the treasury for balance moves
	tr := treasury.New(pool, log)
	clock := funding.SystemClock{}
	registry := funding.NewRegistry(cfg.ReviewerAccountID, cfg.SettlementAssetID, clock, tr, publisher, log)

	// Services
	registryService := services.NewRegistryService(registry, registryRepo, proposalRepo, campaignRepo, contributionRepo, settlementRepo, auditRepo, clock, log)
	campaignService := services.NewCampaignService(registry, campaignRepo, contributionRepo, settlementRepo, auditRepo, clock, log)

	// Replay persisted state into the registry before serving
	if err := registryService.Rehydrate(ctx); err != nil {
		log.Fatal("failed to rehydrate registry", zap.Error(err))
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(accountRepo, cfg, log)
	accountHandler := handlers.NewAccountHandler(accountRepo, tr, cfg, log)
	proposalHandler := handlers.NewProposalHandler(registryService, log)
	campaignHandler := handlers.NewCampaignHandler(campaignService, cfg, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, accountHandler, proposalHandler, campaignHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
