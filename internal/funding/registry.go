package funding

import (
	"context"
	"sync"
	"time"

	"github.com/fundflow/backend/internal/events"
	"github.com/fundflow/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry vets campaign proposals and deploys a Ledger per accepted one.
// A single reviewer account holds the review privilege; the role moves only
// through TransferReviewer. The registry keeps a non-owning reference to each
// deployed ledger for lookup and never mediates contributions or settlement.
type Registry struct {
	mu              sync.Mutex
	reviewer        uuid.UUID
	settlementAsset uuid.UUID

	proposals   []*models.Proposal
	bySubmitter map[uuid.UUID][]uint64
	byProposal  map[uint64]*Ledger
	byRef       map[uuid.UUID]*Ledger

	clock     Clock
	transfer  AssetTransfer
	publisher events.Publisher
	log       *zap.Logger
}

func NewRegistry(reviewer, settlementAsset uuid.UUID, clock Clock, transfer AssetTransfer, publisher events.Publisher, log *zap.Logger) *Registry {
	return &Registry{
		reviewer:        reviewer,
		settlementAsset: settlementAsset,
		bySubmitter:     make(map[uuid.UUID][]uint64),
		byProposal:      make(map[uint64]*Ledger),
		byRef:           make(map[uuid.UUID]*Ledger),
		clock:           clock,
		transfer:        transfer,
		publisher:       publisher,
		log:             log,
	}
}

// Submit records a new pending proposal and returns its id. Ids are
// sequential in submission order and never reused.
func (r *Registry) Submit(ctx context.Context, submitter uuid.UUID, minTarget, maxTarget uint64, windowStart, windowEnd time.Time) (uint64, error) {
	if submitter == uuid.Nil {
		return 0, ErrInvalidIdentity
	}
	if maxTarget <= minTarget {
		return 0, ErrInvalidAmounts
	}

	r.mu.Lock()
	now := r.clock.Now()
	if !windowStart.After(now) || !windowEnd.After(windowStart) {
		r.mu.Unlock()
		return 0, ErrInvalidWindow
	}

	p := &models.Proposal{
		ID:          uint64(len(r.proposals)),
		Submitter:   submitter,
		MinTarget:   minTarget,
		MaxTarget:   maxTarget,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Status:      models.ProposalStatusPending,
		CreatedAt:   now,
	}
	r.proposals = append(r.proposals, p)
	r.bySubmitter[submitter] = append(r.bySubmitter[submitter], p.ID)
	r.mu.Unlock()

	r.log.Info("proposal submitted",
		zap.Uint64("proposal_id", p.ID),
		zap.String("submitter", submitter.String()),
		zap.Uint64("min_target", minTarget),
		zap.Uint64("max_target", maxTarget),
	)

	_ = r.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: events.EventProposalSubmitted,
		Payload: map[string]any{
			"proposal_id":  p.ID,
			"submitter":    submitter.String(),
			"min_target":   minTarget,
			"max_target":   maxTarget,
			"window_start": windowStart,
			"window_end":   windowEnd,
		},
	})
	return p.ID, nil
}

// Review resolves a pending proposal. Approval freezes the proposal terms
// into a freshly deployed ledger; rejection records the outcome and nothing
// else. Either way the decision is write-once. Returns the deployed ledger
// on approval, nil on rejection.
func (r *Registry) Review(ctx context.Context, caller uuid.UUID, proposalID uint64, approve bool) (*Ledger, error) {
	r.mu.Lock()
	if caller != r.reviewer {
		r.mu.Unlock()
		return nil, ErrUnauthorized
	}
	if proposalID >= uint64(len(r.proposals)) {
		r.mu.Unlock()
		return nil, ErrUnknownProposal
	}

	p := r.proposals[proposalID]
	target := models.ProposalStatusRejected
	if approve {
		target = models.ProposalStatusAccepted
	}
	if !models.IsValidProposalTransition(p.Status, target) {
		r.mu.Unlock()
		return nil, ErrAlreadyReviewed
	}

	creator := p.Submitter
	var ledger *Ledger
	if approve {
		ref := uuid.New()
		ledger = NewLedger(ref, LedgerTerms{
			ProposalID:      p.ID,
			Creator:         p.Submitter,
			MinTarget:       p.MinTarget,
			MaxTarget:       p.MaxTarget,
			WindowStart:     p.WindowStart,
			WindowEnd:       p.WindowEnd,
			SettlementAsset: r.settlementAsset,
		}, r.clock, r.transfer, r.publisher, r.log)
		r.byProposal[p.ID] = ledger
		r.byRef[ref] = ledger
		p.LedgerID = &ref
	}
	p.Status = target
	r.mu.Unlock()

	r.log.Info("proposal reviewed",
		zap.Uint64("proposal_id", proposalID),
		zap.Bool("approved", approve),
	)

	if ledger != nil {
		_ = r.publisher.Publish(ctx, events.StreamRegistry, events.Event{
			Type: events.EventLedgerDeployed,
			Payload: map[string]any{
				"proposal_id": proposalID,
				"ledger_id":   ledger.ID().String(),
				"creator":     creator.String(),
			},
		})
	}
	_ = r.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: events.EventProposalReviewed,
		Payload: map[string]any{
			"proposal_id": proposalID,
			"approved":    approve,
		},
	})
	return ledger, nil
}

// cloneProposal copies a proposal including the ledger reference, so a
// caller mutating the snapshot cannot reach registry state.
func cloneProposal(p *models.Proposal) models.Proposal {
	out := *p
	if p.LedgerID != nil {
		ref := *p.LedgerID
		out.LedgerID = &ref
	}
	return out
}

// Proposal returns a read-only snapshot of one proposal.
func (r *Registry) Proposal(proposalID uint64) (models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if proposalID >= uint64(len(r.proposals)) {
		return models.Proposal{}, ErrUnknownProposal
	}
	return cloneProposal(r.proposals[proposalID]), nil
}

// Proposals returns snapshots of every proposal in submission order.
func (r *Registry) Proposals() []models.Proposal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Proposal, len(r.proposals))
	for i, p := range r.proposals {
		out[i] = cloneProposal(p)
	}
	return out
}

// SubmitterHistory lists a submitter's proposal ids in submission order.
// A submitter with no history gets an empty slice, not an error.
func (r *Registry) SubmitterHistory(submitter uuid.UUID) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.bySubmitter[submitter]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// TransferReviewer moves the review privilege to a new account.
func (r *Registry) TransferReviewer(ctx context.Context, caller, newReviewer uuid.UUID) error {
	r.mu.Lock()
	if caller != r.reviewer {
		r.mu.Unlock()
		return ErrUnauthorized
	}
	if newReviewer == uuid.Nil {
		r.mu.Unlock()
		return ErrInvalidIdentity
	}
	r.reviewer = newReviewer
	r.mu.Unlock()

	r.log.Info("reviewer changed",
		zap.String("old_reviewer", caller.String()),
		zap.String("new_reviewer", newReviewer.String()),
	)

	_ = r.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: events.EventReviewerChanged,
		Payload: map[string]any{
			"old_reviewer": caller.String(),
			"new_reviewer": newReviewer.String(),
		},
	})
	return nil
}

// Reviewer returns the current reviewer account.
func (r *Registry) Reviewer() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reviewer
}

// LedgerByProposal looks up the deployed ledger for an accepted proposal.
func (r *Registry) LedgerByProposal(proposalID uint64) (*Ledger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byProposal[proposalID]
	return l, ok
}

// LedgerByRef looks up a deployed ledger by its identity.
func (r *Registry) LedgerByRef(ref uuid.UUID) (*Ledger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byRef[ref]
	return l, ok
}

// Ledgers returns every deployed ledger.
func (r *Registry) Ledgers() []*Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Ledger, 0, len(r.byRef))
	for _, l := range r.byRef {
		out = append(out, l)
	}
	return out
}

// RestoreReviewer replays a persisted reviewer transfer at boot, overriding
// the configured bootstrap reviewer. No event is published.
func (r *Registry) RestoreReviewer(reviewer uuid.UUID) {
	if reviewer == uuid.Nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviewer = reviewer
}

// RestoreProposal replays a persisted proposal into the registry at boot.
// Proposals must be replayed in id order; accepted ones get their ledger
// redeployed under the stored reference, returned for state replay.
func (r *Registry) RestoreProposal(p models.Proposal) *Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := p
	r.proposals = append(r.proposals, &stored)
	r.bySubmitter[p.Submitter] = append(r.bySubmitter[p.Submitter], p.ID)

	if p.Status != models.ProposalStatusAccepted || p.LedgerID == nil {
		return nil
	}
	ledger := NewLedger(*p.LedgerID, LedgerTerms{
		ProposalID:      p.ID,
		Creator:         p.Submitter,
		MinTarget:       p.MinTarget,
		MaxTarget:       p.MaxTarget,
		WindowStart:     p.WindowStart,
		WindowEnd:       p.WindowEnd,
		SettlementAsset: r.settlementAsset,
	}, r.clock, r.transfer, r.publisher, r.log)
	r.byProposal[p.ID] = ledger
	r.byRef[*p.LedgerID] = ledger
	return ledger
}
