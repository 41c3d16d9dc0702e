package services

import (
	"context"
	"errors"

	"github.com/fundflow/backend/internal/funding"
	"github.com/fundflow/backend/internal/models"
	"github.com/fundflow/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignService routes contribution and settlement calls to the right
// ledger and mirrors accepted mutations into Postgres. The ledger enforces
// every rule itself; this layer only persists and audits what the ledger
// accepted.
type CampaignService struct {
	registry         *funding.Registry
	campaignRepo     *repositories.CampaignRepo
	contributionRepo *repositories.ContributionRepo
	settlementRepo   *repositories.SettlementRepo
	auditRepo        *repositories.AuditRepo
	clock            funding.Clock
	log              *zap.Logger
}

func NewCampaignService(
	registry *funding.Registry,
	campaignRepo *repositories.CampaignRepo,
	contributionRepo *repositories.ContributionRepo,
	settlementRepo *repositories.SettlementRepo,
	auditRepo *repositories.AuditRepo,
	clock funding.Clock,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		registry:         registry,
		campaignRepo:     campaignRepo,
		contributionRepo: contributionRepo,
		settlementRepo:   settlementRepo,
		auditRepo:        auditRepo,
		clock:            clock,
		log:              log,
	}
}

func (s *CampaignService) ledger(ledgerID uuid.UUID) (*funding.Ledger, error) {
	l, ok := s.registry.LedgerByRef(ledgerID)
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return l, nil
}

func (s *CampaignService) Contribute(ctx context.Context, ledgerID, caller uuid.UUID, amount uint64, sourceAsset uuid.UUID) error {
	l, err := s.ledger(ledgerID)
	if err != nil {
		return err
	}
	if err := l.Contribute(ctx, caller, amount, sourceAsset); err != nil {
		return err
	}

	if err := s.contributionRepo.Create(ctx, &models.Contribution{
		LedgerID:    ledgerID,
		Contributor: caller,
		SourceAsset: sourceAsset,
		Amount:      amount,
	}); err != nil {
		s.log.Error("failed to persist contribution", zap.String("ledger_id", ledgerID.String()), zap.Error(err))
	}
	s.refreshSnapshot(ctx, l)

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorAccount: &caller,
		ActorType:    "user",
		Action:       "contribution_recorded",
		EntityType:   "campaign",
		EntityID:     &ledgerID,
		Meta:         map[string]any{"amount": amount, "source_asset": sourceAsset.String()},
	})
	return nil
}

func (s *CampaignService) Claim(ctx context.Context, ledgerID, caller uuid.UUID) error {
	l, err := s.ledger(ledgerID)
	if err != nil {
		return err
	}
	if err := l.ClaimFunds(ctx, caller); err != nil {
		return err
	}

	details := l.Details()
	if err := s.settlementRepo.Create(ctx, &models.Settlement{
		LedgerID:  ledgerID,
		Type:      models.SettlementTypeClaim,
		Recipient: caller,
		Asset:     details.SettlementAsset,
		Amount:    details.TotalCollected,
	}); err != nil {
		s.log.Error("failed to persist claim", zap.String("ledger_id", ledgerID.String()), zap.Error(err))
	}
	s.refreshSnapshot(ctx, l)

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorAccount: &caller,
		ActorType:    "user",
		Action:       "funds_claimed",
		EntityType:   "campaign",
		EntityID:     &ledgerID,
		Meta:         map[string]any{"amount": details.TotalCollected},
	})
	return nil
}

func (s *CampaignService) Refund(ctx context.Context, ledgerID, caller uuid.UUID) error {
	l, err := s.ledger(ledgerID)
	if err != nil {
		return err
	}

	// Balance is zeroed by the refund; read it first for the settlement row.
	amount := l.BalanceOf(caller)
	if err := l.Refund(ctx, caller); err != nil {
		return err
	}

	details := l.Details()
	if err := s.settlementRepo.Create(ctx, &models.Settlement{
		LedgerID:  ledgerID,
		Type:      models.SettlementTypeRefund,
		Recipient: caller,
		Asset:     details.SettlementAsset,
		Amount:    amount,
	}); err != nil {
		s.log.Error("failed to persist refund", zap.String("ledger_id", ledgerID.String()), zap.Error(err))
	}
	s.refreshSnapshot(ctx, l)

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorAccount: &caller,
		ActorType:    "user",
		Action:       "refund_processed",
		EntityType:   "campaign",
		EntityID:     &ledgerID,
		Meta:         map[string]any{"amount": amount},
	})
	return nil
}

// GetCampaign returns the live snapshot with the derived flags recomputed
// for the current instant.
func (s *CampaignService) GetCampaign(ledgerID uuid.UUID) (*models.Campaign, error) {
	l, err := s.ledger(ledgerID)
	if err != nil {
		return nil, err
	}
	details := l.Details()
	return &details, nil
}

// ListCampaigns lists persisted snapshots, overlaying live ledger state
// where the ledger is loaded.
func (s *CampaignService) ListCampaigns(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, error) {
	campaigns, err := s.campaignRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range campaigns {
		if l, ok := s.registry.LedgerByRef(campaigns[i].LedgerID); ok {
			campaigns[i] = l.Details()
		}
	}
	return campaigns, nil
}

func (s *CampaignService) ListContributions(ctx context.Context, ledgerID uuid.UUID, limit, offset int) ([]models.Contribution, error) {
	return s.contributionRepo.ListByLedger(ctx, ledgerID, limit, offset)
}

func (s *CampaignService) GetCampaignEvents(ctx context.Context, ledgerID uuid.UUID) ([]models.AuditLog, error) {
	return s.auditRepo.GetByEntity(ctx, "campaign", ledgerID, 100, 0)
}

func (s *CampaignService) refreshSnapshot(ctx context.Context, l *funding.Ledger) {
	details := l.Details()
	if err := s.campaignRepo.UpdateSnapshot(ctx, details.LedgerID, details.TotalCollected, details.Claimed, details.Phase(s.clock.Now())); err != nil {
		s.log.Error("failed to refresh campaign snapshot", zap.String("ledger_id", details.LedgerID.String()), zap.Error(err))
	}
}
