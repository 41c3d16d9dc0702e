package funding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fundflow/backend/internal/events"
	"github.com/fundflow/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerTerms are the proposal terms frozen into a ledger at deploy time.
type LedgerTerms struct {
	ProposalID      uint64
	Creator         uuid.UUID
	MinTarget       uint64
	MaxTarget       uint64
	WindowStart     time.Time
	WindowEnd       time.Time
	SettlementAsset uuid.UUID
}

// Ledger owns one campaign's funding window, per-contributor balances and the
// settlement state. Terms are immutable after deploy. Mutating calls credit
// internal accounting first, then perform the external asset transfer, and
// roll the accounting back if the transfer fails. While a call is inside its
// transfer step the ledger is marked busy and any other mutating call is
// rejected with ErrReentrantCall instead of waiting.
type Ledger struct {
	mu   sync.Mutex
	busy bool

	id    uuid.UUID
	terms LedgerTerms

	totalCollected uint64
	claimed        bool
	balances       map[uuid.UUID]uint64

	clock     Clock
	transfer  AssetTransfer
	publisher events.Publisher
	log       *zap.Logger
}

func NewLedger(id uuid.UUID, terms LedgerTerms, clock Clock, transfer AssetTransfer, publisher events.Publisher, log *zap.Logger) *Ledger {
	return &Ledger{
		id:        id,
		terms:     terms,
		balances:  make(map[uuid.UUID]uint64),
		clock:     clock,
		transfer:  transfer,
		publisher: publisher,
		log:       log,
	}
}

// ID is the ledger identity, also its custody account in the treasury.
func (l *Ledger) ID() uuid.UUID { return l.id }

// Contribute credits amount to caller's balance during the active window.
// Window boundaries are inclusive on both ends, and a contribution landing
// exactly on maxTarget is accepted while anything beyond it is rejected
// whole — there is no partial fill.
func (l *Ledger) Contribute(ctx context.Context, caller uuid.UUID, amount uint64, sourceAsset uuid.UUID) error {
	l.mu.Lock()
	if l.busy {
		l.mu.Unlock()
		return ErrReentrantCall
	}
	now := l.clock.Now()
	if now.Before(l.terms.WindowStart) || now.After(l.terms.WindowEnd) {
		l.mu.Unlock()
		return ErrNotActive
	}
	if amount == 0 {
		l.mu.Unlock()
		return ErrInvalidAmount
	}
	if sourceAsset == uuid.Nil {
		l.mu.Unlock()
		return ErrInvalidAsset
	}
	if amount > l.terms.MaxTarget-l.totalCollected {
		l.mu.Unlock()
		return ErrTargetExceeded
	}

	// Credit before the external transfer closes the reentrancy window.
	l.balances[caller] += amount
	l.totalCollected += amount
	l.busy = true
	l.mu.Unlock()

	err := l.transfer.Transfer(ctx, sourceAsset, caller, l.id, amount)

	l.mu.Lock()
	l.busy = false
	if err != nil {
		l.balances[caller] -= amount
		if l.balances[caller] == 0 {
			delete(l.balances, caller)
		}
		l.totalCollected -= amount
		l.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	total := l.totalCollected
	l.mu.Unlock()

	l.log.Info("contribution recorded",
		zap.String("ledger_id", l.id.String()),
		zap.String("contributor", caller.String()),
		zap.Uint64("amount", amount),
		zap.Uint64("total_collected", total),
	)

	_ = l.publisher.Publish(ctx, events.StreamCampaign, events.Event{
		Type: events.EventContributionRecorded,
		Payload: map[string]any{
			"ledger_id":    l.id.String(),
			"contributor":  caller.String(),
			"source_asset": sourceAsset.String(),
			"amount":       amount,
		},
	})
	return nil
}

// ClaimFunds pays the collected total to the creator. Permitted exactly once,
// only strictly after the window end, and only once the min target is met.
func (l *Ledger) ClaimFunds(ctx context.Context, caller uuid.UUID) error {
	l.mu.Lock()
	if l.busy {
		l.mu.Unlock()
		return ErrReentrantCall
	}
	if caller != l.terms.Creator {
		l.mu.Unlock()
		return ErrUnauthorized
	}
	if l.claimed {
		l.mu.Unlock()
		return ErrAlreadyClaimed
	}
	if !l.clock.Now().After(l.terms.WindowEnd) {
		l.mu.Unlock()
		return ErrNotEnded
	}
	if l.totalCollected < l.terms.MinTarget {
		l.mu.Unlock()
		return ErrTargetNotReached
	}

	amount := l.totalCollected
	l.claimed = true
	l.busy = true
	l.mu.Unlock()

	err := l.transfer.Transfer(ctx, l.terms.SettlementAsset, l.id, l.terms.Creator, amount)

	l.mu.Lock()
	l.busy = false
	if err != nil {
		l.claimed = false
		l.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	l.mu.Unlock()

	l.log.Info("funds claimed",
		zap.String("ledger_id", l.id.String()),
		zap.String("creator", caller.String()),
		zap.Uint64("amount", amount),
	)

	_ = l.publisher.Publish(ctx, events.StreamCampaign, events.Event{
		Type: events.EventFundsClaimed,
		Payload: map[string]any{
			"ledger_id": l.id.String(),
			"creator":   caller.String(),
			"amount":    amount,
		},
	})
	_ = l.publisher.Publish(ctx, events.StreamCampaign, events.Event{
		Type: events.EventCampaignEnded,
		Payload: map[string]any{
			"ledger_id":       l.id.String(),
			"successful":      true,
			"total_collected": amount,
		},
	})
	return nil
}

// Refund returns caller's full balance after a failed campaign. The balance
// is zeroed before the transfer and restored if it fails, so a second call
// after a successful refund sees no contribution.
func (l *Ledger) Refund(ctx context.Context, caller uuid.UUID) error {
	l.mu.Lock()
	if l.busy {
		l.mu.Unlock()
		return ErrReentrantCall
	}
	if !l.clock.Now().After(l.terms.WindowEnd) {
		l.mu.Unlock()
		return ErrNotEnded
	}
	if l.totalCollected >= l.terms.MinTarget {
		l.mu.Unlock()
		return ErrCampaignSuccessful
	}
	amount := l.balances[caller]
	if amount == 0 {
		l.mu.Unlock()
		return ErrNoContribution
	}

	delete(l.balances, caller)
	l.busy = true
	l.mu.Unlock()

	err := l.transfer.Transfer(ctx, l.terms.SettlementAsset, l.id, caller, amount)

	l.mu.Lock()
	l.busy = false
	if err != nil {
		l.balances[caller] = amount
		l.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	l.mu.Unlock()

	l.log.Info("refund processed",
		zap.String("ledger_id", l.id.String()),
		zap.String("contributor", caller.String()),
		zap.Uint64("amount", amount),
	)

	_ = l.publisher.Publish(ctx, events.StreamCampaign, events.Event{
		Type: events.EventRefundProcessed,
		Payload: map[string]any{
			"ledger_id":   l.id.String(),
			"contributor": caller.String(),
			"amount":      amount,
		},
	})
	return nil
}

// Details returns a snapshot of the ledger. IsActive and IsSuccessful are
// recomputed from the clock on every call, never stored.
func (l *Ledger) Details() models.Campaign {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	return models.Campaign{
		LedgerID:        l.id,
		ProposalID:      l.terms.ProposalID,
		Creator:         l.terms.Creator,
		MinTarget:       l.terms.MinTarget,
		MaxTarget:       l.terms.MaxTarget,
		WindowStart:     l.terms.WindowStart,
		WindowEnd:       l.terms.WindowEnd,
		SettlementAsset: l.terms.SettlementAsset,
		TotalCollected:  l.totalCollected,
		Claimed:         l.claimed,
		IsActive:        !now.Before(l.terms.WindowStart) && !now.After(l.terms.WindowEnd),
		IsSuccessful:    l.totalCollected >= l.terms.MinTarget,
	}
}

// BalanceOf returns one contributor's current balance.
func (l *Ledger) BalanceOf(account uuid.UUID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Balances returns a copy of the balances map.
func (l *Ledger) Balances() map[uuid.UUID]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[uuid.UUID]uint64, len(l.balances))
	for k, v := range l.balances {
		out[k] = v
	}
	return out
}

// Restore replays persisted state into a freshly deployed ledger. Used only
// while rehydrating from storage at boot, before the ledger is exposed.
func (l *Ledger) Restore(balances map[uuid.UUID]uint64, totalCollected uint64, claimed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[uuid.UUID]uint64, len(balances))
	for k, v := range balances {
		if v > 0 {
			l.balances[k] = v
		}
	}
	l.totalCollected = totalCollected
	l.claimed = claimed
}
