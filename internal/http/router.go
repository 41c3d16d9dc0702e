package http

import (
	"time"

	"github.com/fundflow/backend/internal/config"
	"github.com/fundflow/backend/internal/http/handlers"
	"github.com/fundflow/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	proposalHandler *handlers.ProposalHandler,
	campaignHandler *handlers.CampaignHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Rate-limited endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Account
	protected.Get("/me", accountHandler.GetMe)
	protected.Get("/me/balance", accountHandler.GetBalance)
	protected.Post("/me/faucet", accountHandler.Faucet)

	// Proposals
	protected.Post("/proposals", proposalHandler.SubmitProposal)
	protected.Get("/proposals", proposalHandler.ListProposals)
	protected.Get("/proposals/my", proposalHandler.MyProposals)
	protected.Get("/proposals/:id", proposalHandler.GetProposal)
	protected.Post("/proposals/:id/review", proposalHandler.ReviewProposal)

	// Registry administration
	protected.Post("/registry/transfer-reviewer", proposalHandler.TransferReviewer)

	// Campaigns
	protected.Get("/campaigns", campaignHandler.ListCampaigns)
	protected.Get("/campaigns/:id", campaignHandler.GetCampaign)
	protected.Post("/campaigns/:id/contribute", campaignHandler.Contribute)
	protected.Post("/campaigns/:id/claim", campaignHandler.Claim)
	protected.Post("/campaigns/:id/refund", campaignHandler.Refund)
	protected.Get("/campaigns/:id/contributions", campaignHandler.ListContributions)
	protected.Get("/campaigns/:id/events", campaignHandler.GetCampaignEvents)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
