package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fundflow/backend/internal/funding"
	"github.com/fundflow/backend/internal/models"
	"github.com/fundflow/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegistryService fronts the in-memory registry with write-through
// persistence and audit logging. The registry stays authoritative for
// validation and lifecycle rules; Postgres holds the query/history mirror
// that survives restarts.
type RegistryService struct {
	registry         *funding.Registry
	registryRepo     *repositories.RegistryRepo
	proposalRepo     *repositories.ProposalRepo
	campaignRepo     *repositories.CampaignRepo
	contributionRepo *repositories.ContributionRepo
	settlementRepo   *repositories.SettlementRepo
	auditRepo        *repositories.AuditRepo
	clock            funding.Clock
	log              *zap.Logger
}

func NewRegistryService(
	registry *funding.Registry,
	registryRepo *repositories.RegistryRepo,
	proposalRepo *repositories.ProposalRepo,
	campaignRepo *repositories.CampaignRepo,
	contributionRepo *repositories.ContributionRepo,
	settlementRepo *repositories.SettlementRepo,
	auditRepo *repositories.AuditRepo,
	clock funding.Clock,
	log *zap.Logger,
) *RegistryService {
	return &RegistryService{
		registry:         registry,
		registryRepo:     registryRepo,
		proposalRepo:     proposalRepo,
		campaignRepo:     campaignRepo,
		contributionRepo: contributionRepo,
		settlementRepo:   settlementRepo,
		auditRepo:        auditRepo,
		clock:            clock,
		log:              log,
	}
}

// Rehydrate replays persisted proposals, contributions, settlements and the
// reviewer role into the registry. Called once at boot, before the API
// starts serving.
func (s *RegistryService) Rehydrate(ctx context.Context) error {
	reviewer, err := s.registryRepo.GetReviewer(ctx)
	if err != nil {
		return fmt.Errorf("load reviewer: %w", err)
	}
	s.registry.RestoreReviewer(reviewer)

	proposals, err := s.proposalRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load proposals: %w", err)
	}

	for _, p := range proposals {
		ledger := s.registry.RestoreProposal(p)
		if ledger == nil {
			continue
		}

		balances, err := s.contributionRepo.SumByContributor(ctx, ledger.ID())
		if err != nil {
			return fmt.Errorf("load contributions for ledger %s: %w", ledger.ID(), err)
		}
		var total uint64
		for _, b := range balances {
			total += b
		}

		claimed := false
		settlements, err := s.settlementRepo.ListByLedger(ctx, ledger.ID())
		if err != nil {
			return fmt.Errorf("load settlements for ledger %s: %w", ledger.ID(), err)
		}
		for _, st := range settlements {
			switch st.Type {
			case models.SettlementTypeClaim:
				claimed = true
			case models.SettlementTypeRefund:
				delete(balances, st.Recipient)
			}
		}

		ledger.Restore(balances, total, claimed)
	}

	s.log.Info("registry rehydrated", zap.Int("proposals", len(proposals)))
	return nil
}

func (s *RegistryService) Submit(ctx context.Context, submitter uuid.UUID, minTarget, maxTarget uint64, windowStart, windowEnd time.Time) (*models.Proposal, error) {
	id, err := s.registry.Submit(ctx, submitter, minTarget, maxTarget, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	p, err := s.registry.Proposal(id)
	if err != nil {
		return nil, err
	}
	if err := s.proposalRepo.Create(ctx, &p); err != nil {
		s.log.Error("failed to persist proposal", zap.Uint64("proposal_id", id), zap.Error(err))
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorAccount: &submitter,
		ActorType:    "user",
		Action:       "proposal_submitted",
		EntityType:   "proposal",
		Meta:         map[string]any{"proposal_id": id, "min_target": minTarget, "max_target": maxTarget},
	})
	return &p, nil
}

func (s *RegistryService) Review(ctx context.Context, caller uuid.UUID, proposalID uint64, approve bool) (*models.Proposal, error) {
	ledger, err := s.registry.Review(ctx, caller, proposalID, approve)
	if err != nil {
		return nil, err
	}

	p, err := s.registry.Proposal(proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.proposalRepo.UpdateReview(ctx, proposalID, p.Status, p.LedgerID); err != nil {
		s.log.Error("failed to persist review", zap.Uint64("proposal_id", proposalID), zap.Error(err))
	}

	if ledger != nil {
		details := ledger.Details()
		if err := s.campaignRepo.Create(ctx, &details, details.Phase(s.clock.Now())); err != nil {
			s.log.Error("failed to persist campaign", zap.String("ledger_id", details.LedgerID.String()), zap.Error(err))
		}
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorAccount: &caller,
		ActorType:    "reviewer",
		Action:       fmt.Sprintf("proposal_%s", p.Status),
		EntityType:   "proposal",
		EntityID:     p.LedgerID,
		Meta:         map[string]any{"proposal_id": proposalID, "approved": approve},
	})
	return &p, nil
}

func (s *RegistryService) GetProposal(proposalID uint64) (*models.Proposal, error) {
	p, err := s.registry.Proposal(proposalID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RegistryService) ListProposals(ctx context.Context, f repositories.ProposalFilter) ([]models.Proposal, error) {
	return s.proposalRepo.List(ctx, f)
}

// SubmitterHistory returns a submitter's proposal ids in submission order.
func (s *RegistryService) SubmitterHistory(submitter uuid.UUID) []uint64 {
	return s.registry.SubmitterHistory(submitter)
}

func (s *RegistryService) TransferReviewer(ctx context.Context, caller, newReviewer uuid.UUID) error {
	if err := s.registry.TransferReviewer(ctx, caller, newReviewer); err != nil {
		return err
	}

	if err := s.registryRepo.SetReviewer(ctx, newReviewer); err != nil {
		s.log.Error("failed to persist reviewer transfer", zap.String("new_reviewer", newReviewer.String()), zap.Error(err))
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorAccount: &caller,
		ActorType:    "reviewer",
		Action:       "reviewer_changed",
		EntityType:   "registry",
		Meta:         map[string]any{"new_reviewer": newReviewer.String()},
	})
	return nil
}

func (s *RegistryService) Reviewer() uuid.UUID {
	return s.registry.Reviewer()
}
