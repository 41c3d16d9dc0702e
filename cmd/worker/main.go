package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundflow/backend/internal/config"
	"github.com/fundflow/backend/internal/db"
	"github.com/fundflow/backend/internal/events"
	"github.com/fundflow/backend/internal/models"
	"github.com/fundflow/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	campaignRepo := repositories.NewCampaignRepo(pool)
	publisher := events.NewRedisPublisher(rdb, log)

	// liveness endpoint
	health := fiber.New(fiber.Config{DisableStartupMessage: true})
	health.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	go func() {
		if err := health.Listen(fmt.Sprintf(":%s", cfg.WorkerPort)); err != nil {
			log.Error("health server error", zap.Error(err))
		}
	}()
	defer health.Shutdown()

	log.Info("worker started", zap.String("health_port", cfg.WorkerPort))

	refreshTicker := time.NewTicker(cfg.SnapshotRefreshInterval)
	defer refreshTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-refreshTicker.C:
			runPhaseRefresh(ctx, campaignRepo, publisher, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// runPhaseRefresh recomputes the stored phase for campaigns whose window
// boundary has passed. Settlement stays caller-driven; this job only keeps
// the query mirror honest and announces window closes.
func runPhaseRefresh(ctx context.Context, campaignRepo *repositories.CampaignRepo, publisher events.Publisher, log *zap.Logger) {
	now := time.Now()

	promote(ctx, campaignRepo, nil, models.CampaignPhaseUpcoming, now, log)
	promote(ctx, campaignRepo, publisher, models.CampaignPhaseActive, now, log)
}

func promote(ctx context.Context, campaignRepo *repositories.CampaignRepo, publisher events.Publisher, phase string, now time.Time, log *zap.Logger) {
	ids, err := campaignRepo.ListByPhase(ctx, phase, 100)
	if err != nil {
		log.Error("failed to list campaigns", zap.String("phase", phase), zap.Error(err))
		return
	}

	for _, id := range ids {
		c, stored, err := campaignRepo.GetByLedgerID(ctx, id)
		if err != nil {
			log.Error("failed to load campaign", zap.String("ledger_id", id.String()), zap.Error(err))
			continue
		}

		current := c.Phase(now)
		if current == stored {
			continue
		}

		if err := campaignRepo.UpdateSnapshot(ctx, id, c.TotalCollected, c.Claimed, current); err != nil {
			log.Error("failed to update phase", zap.String("ledger_id", id.String()), zap.Error(err))
			continue
		}
		log.Info("campaign phase updated",
			zap.String("ledger_id", id.String()),
			zap.String("from", stored),
			zap.String("to", current),
		)

		// Announce the window close once, when leaving the active phase.
		if publisher != nil && stored == models.CampaignPhaseActive {
			_ = publisher.Publish(ctx, events.StreamCampaign, events.Event{
				Type: events.EventCampaignWindowClosed,
				Payload: map[string]any{
					"ledger_id":       id.String(),
					"successful":      current == models.CampaignPhaseSuccessful,
					"total_collected": c.TotalCollected,
				},
			})
		}
	}
}
