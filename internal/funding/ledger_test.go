package funding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fundflow/backend/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	testBase  = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testStart = testBase.Add(24 * time.Hour)
	testEnd   = testBase.Add(10 * 24 * time.Hour)
)

func newTestLedger(minTarget, maxTarget uint64) (*Ledger, *fakeClock, *fakeTransfer, *memPublisher, uuid.UUID) {
	creator := uuid.New()
	clock := newFakeClock(testBase)
	transfer := &fakeTransfer{}
	pub := &memPublisher{}
	ledger := NewLedger(uuid.New(), LedgerTerms{
		ProposalID:      0,
		Creator:         creator,
		MinTarget:       minTarget,
		MaxTarget:       maxTarget,
		WindowStart:     testStart,
		WindowEnd:       testEnd,
		SettlementAsset: uuid.New(),
	}, clock, transfer, pub, zap.NewNop())
	return ledger, clock, transfer, pub, creator
}

func TestContributeWindowGating(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"before window start", testStart.Add(-time.Second), ErrNotActive},
		{"at window start", testStart, nil},
		{"mid window", testStart.Add(time.Hour), nil},
		{"at window end", testEnd, nil},
		{"after window end", testEnd.Add(time.Second), ErrNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, clock, _, _, _ := newTestLedger(100, 1000)
			clock.Set(tt.now)
			err := ledger.Contribute(context.Background(), uuid.New(), 50, uuid.New())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Contribute at %v: err = %v, want %v", tt.now, err, tt.wantErr)
			}
		})
	}
}

func TestContributeValidation(t *testing.T) {
	ledger, clock, transfer, _, _ := newTestLedger(100, 1000)
	clock.Set(testStart.Add(time.Hour))

	if err := ledger.Contribute(context.Background(), uuid.New(), 0, uuid.New()); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: err = %v, want ErrInvalidAmount", err)
	}
	if err := ledger.Contribute(context.Background(), uuid.New(), 10, uuid.Nil); !errors.Is(err, ErrInvalidAsset) {
		t.Errorf("nil asset: err = %v, want ErrInvalidAsset", err)
	}
	if transfer.callCount() != 0 {
		t.Errorf("rejected contributions must not reach the transfer collaborator, got %d calls", transfer.callCount())
	}
	if d := ledger.Details(); d.TotalCollected != 0 {
		t.Errorf("rejected contributions must not change state, total = %d", d.TotalCollected)
	}
}

func TestContributeTargetCap(t *testing.T) {
	ledger, clock, _, _, _ := newTestLedger(100, 1000)
	clock.Set(testStart.Add(time.Second))
	ctx := context.Background()
	user1 := uuid.New()
	asset := uuid.New()

	if err := ledger.Contribute(ctx, user1, 500, asset); err != nil {
		t.Fatalf("first contribution: %v", err)
	}
	if d := ledger.Details(); d.TotalCollected != 500 {
		t.Errorf("total = %d, want 500", d.TotalCollected)
	}
	if b := ledger.BalanceOf(user1); b != 500 {
		t.Errorf("balance = %d, want 500", b)
	}

	// 500 + 600 > 1000: rejected whole, no partial fill
	if err := ledger.Contribute(ctx, user1, 600, asset); !errors.Is(err, ErrTargetExceeded) {
		t.Errorf("over-cap contribution: err = %v, want ErrTargetExceeded", err)
	}
	if d := ledger.Details(); d.TotalCollected != 500 {
		t.Errorf("total after rejection = %d, want 500", d.TotalCollected)
	}

	// landing exactly on maxTarget is allowed
	if err := ledger.Contribute(ctx, user1, 500, asset); err != nil {
		t.Fatalf("contribution to exact cap: %v", err)
	}
	if d := ledger.Details(); d.TotalCollected != 1000 {
		t.Errorf("total = %d, want 1000", d.TotalCollected)
	}

	// nothing fits once the cap is reached
	if err := ledger.Contribute(ctx, user1, 1, asset); !errors.Is(err, ErrTargetExceeded) {
		t.Errorf("contribution past cap: err = %v, want ErrTargetExceeded", err)
	}
}

func TestContributeConservation(t *testing.T) {
	ledger, clock, _, _, _ := newTestLedger(100, 10000)
	clock.Set(testStart)
	ctx := context.Background()
	asset := uuid.New()

	contributors := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	amounts := []uint64{5, 40, 255, 1, 999, 300}

	for i, amount := range amounts {
		caller := contributors[i%len(contributors)]
		if err := ledger.Contribute(ctx, caller, amount, asset); err != nil {
			t.Fatalf("contribution %d: %v", i, err)
		}

		var sum uint64
		for _, b := range ledger.Balances() {
			sum += b
		}
		if d := ledger.Details(); d.TotalCollected != sum {
			t.Fatalf("after contribution %d: total = %d, sum of balances = %d", i, d.TotalCollected, sum)
		}
	}
}

func TestContributeTransferFailureRollsBack(t *testing.T) {
	ledger, clock, transfer, pub, _ := newTestLedger(100, 1000)
	clock.Set(testStart)
	user := uuid.New()

	transfer.fail = errors.New("insufficient funds")
	err := ledger.Contribute(context.Background(), user, 200, uuid.New())
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("err = %v, want ErrTransferFailed", err)
	}

	if d := ledger.Details(); d.TotalCollected != 0 {
		t.Errorf("total after failed transfer = %d, want 0", d.TotalCollected)
	}
	if b := ledger.BalanceOf(user); b != 0 {
		t.Errorf("balance after failed transfer = %d, want 0", b)
	}
	if len(pub.types()) != 0 {
		t.Errorf("no event expected for failed contribution, got %v", pub.types())
	}

	// ledger stays usable for the next correct call
	transfer.fail = nil
	if err := ledger.Contribute(context.Background(), user, 200, uuid.New()); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if b := ledger.BalanceOf(user); b != 200 {
		t.Errorf("balance after retry = %d, want 200", b)
	}
}

func TestContributeReentrancyRejected(t *testing.T) {
	ledger, clock, transfer, _, _ := newTestLedger(100, 1000)
	clock.Set(testStart)
	user := uuid.New()
	asset := uuid.New()

	var reentrantErr error
	transfer.onTransfer = func() error {
		reentrantErr = ledger.Contribute(context.Background(), uuid.New(), 10, asset)
		return nil
	}

	if err := ledger.Contribute(context.Background(), user, 100, asset); err != nil {
		t.Fatalf("outer contribution: %v", err)
	}
	if !errors.Is(reentrantErr, ErrReentrantCall) {
		t.Errorf("reentrant contribution: err = %v, want ErrReentrantCall", reentrantErr)
	}
	if d := ledger.Details(); d.TotalCollected != 100 {
		t.Errorf("total = %d, want 100 (only the outer call)", d.TotalCollected)
	}
}

func TestClaimReentrancyRejected(t *testing.T) {
	ledger, clock, transfer, _, creator := newTestLedger(100, 1000)
	clock.Set(testStart)
	if err := ledger.Contribute(context.Background(), uuid.New(), 500, uuid.New()); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	clock.Set(testEnd.Add(time.Second))

	var reentrantErr error
	transfer.onTransfer = func() error {
		reentrantErr = ledger.Refund(context.Background(), creator)
		return nil
	}
	if err := ledger.ClaimFunds(context.Background(), creator); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !errors.Is(reentrantErr, ErrReentrantCall) {
		t.Errorf("reentrant refund during claim: err = %v, want ErrReentrantCall", reentrantErr)
	}
}

func TestClaimFunds(t *testing.T) {
	ledger, clock, transfer, pub, creator := newTestLedger(100, 1000)
	ctx := context.Background()
	clock.Set(testStart.Add(time.Second))
	user := uuid.New()
	if err := ledger.Contribute(ctx, user, 500, uuid.New()); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	// window still open
	if err := ledger.ClaimFunds(ctx, creator); !errors.Is(err, ErrNotEnded) {
		t.Errorf("claim during window: err = %v, want ErrNotEnded", err)
	}

	// claim boundary is exclusive of windowEnd itself
	clock.Set(testEnd)
	if err := ledger.ClaimFunds(ctx, creator); !errors.Is(err, ErrNotEnded) {
		t.Errorf("claim at window end: err = %v, want ErrNotEnded", err)
	}

	clock.Set(testEnd.Add(time.Second))
	if err := ledger.ClaimFunds(ctx, uuid.New()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("claim by non-creator: err = %v, want ErrUnauthorized", err)
	}

	if err := ledger.ClaimFunds(ctx, creator); err != nil {
		t.Fatalf("claim: %v", err)
	}
	last := transfer.lastCall()
	if last.amount != 500 || last.to != creator {
		t.Errorf("claim transfer = %+v, want 500 to creator", last)
	}

	if err := ledger.ClaimFunds(ctx, creator); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("second claim: err = %v, want ErrAlreadyClaimed", err)
	}

	types := pub.types()
	var sawClaimed, sawEnded bool
	for _, ty := range types {
		if ty == events.EventFundsClaimed {
			sawClaimed = true
		}
		if ty == events.EventCampaignEnded {
			sawEnded = true
		}
	}
	if !sawClaimed || !sawEnded {
		t.Errorf("events = %v, want funds_claimed and campaign_ended", types)
	}
}

func TestClaimTargetNotReached(t *testing.T) {
	ledger, clock, _, _, creator := newTestLedger(100, 1000)
	clock.Set(testStart)
	if err := ledger.Contribute(context.Background(), uuid.New(), 50, uuid.New()); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	clock.Set(testEnd.Add(time.Second))
	if err := ledger.ClaimFunds(context.Background(), creator); !errors.Is(err, ErrTargetNotReached) {
		t.Errorf("claim below min target: err = %v, want ErrTargetNotReached", err)
	}
}

func TestClaimTransferFailureAllowsRetry(t *testing.T) {
	ledger, clock, transfer, _, creator := newTestLedger(100, 1000)
	clock.Set(testStart)
	if err := ledger.Contribute(context.Background(), uuid.New(), 500, uuid.New()); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	clock.Set(testEnd.Add(time.Second))

	transfer.fail = errors.New("treasury unavailable")
	if err := ledger.ClaimFunds(context.Background(), creator); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("claim with failing transfer: err = %v, want ErrTransferFailed", err)
	}
	if d := ledger.Details(); d.Claimed {
		t.Error("claimed flag must roll back when the transfer fails")
	}

	transfer.fail = nil
	if err := ledger.ClaimFunds(context.Background(), creator); err != nil {
		t.Fatalf("claim retry: %v", err)
	}
}

func TestRefund(t *testing.T) {
	ledger, clock, transfer, _, _ := newTestLedger(100, 1000)
	ctx := context.Background()
	clock.Set(testStart)
	contributor := uuid.New()
	if err := ledger.Contribute(ctx, contributor, 50, uuid.New()); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	if err := ledger.Refund(ctx, contributor); !errors.Is(err, ErrNotEnded) {
		t.Errorf("refund during window: err = %v, want ErrNotEnded", err)
	}

	clock.Set(testEnd.Add(time.Second))
	if err := ledger.Refund(ctx, uuid.New()); !errors.Is(err, ErrNoContribution) {
		t.Errorf("refund with no balance: err = %v, want ErrNoContribution", err)
	}

	if err := ledger.Refund(ctx, contributor); err != nil {
		t.Fatalf("refund: %v", err)
	}
	last := transfer.lastCall()
	if last.amount != 50 || last.to != contributor {
		t.Errorf("refund transfer = %+v, want 50 to contributor", last)
	}
	if b := ledger.BalanceOf(contributor); b != 0 {
		t.Errorf("balance after refund = %d, want 0", b)
	}

	if err := ledger.Refund(ctx, contributor); !errors.Is(err, ErrNoContribution) {
		t.Errorf("second refund: err = %v, want ErrNoContribution", err)
	}
}

func TestRefundRejectedWhenSuccessful(t *testing.T) {
	ledger, clock, _, _, _ := newTestLedger(100, 1000)
	clock.Set(testStart)
	contributor := uuid.New()
	if err := ledger.Contribute(context.Background(), contributor, 500, uuid.New()); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	clock.Set(testEnd.Add(time.Second))
	if err := ledger.Refund(context.Background(), contributor); !errors.Is(err, ErrCampaignSuccessful) {
		t.Errorf("refund on successful campaign: err = %v, want ErrCampaignSuccessful", err)
	}
}

func TestRefundTransferFailureRestoresBalance(t *testing.T) {
	ledger, clock, transfer, _, _ := newTestLedger(100, 1000)
	clock.Set(testStart)
	contributor := uuid.New()
	if err := ledger.Contribute(context.Background(), contributor, 50, uuid.New()); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	clock.Set(testEnd.Add(time.Second))

	transfer.fail = errors.New("treasury unavailable")
	if err := ledger.Refund(context.Background(), contributor); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("refund with failing transfer: err = %v, want ErrTransferFailed", err)
	}
	if b := ledger.BalanceOf(contributor); b != 50 {
		t.Errorf("balance after failed refund = %d, want 50", b)
	}

	transfer.fail = nil
	if err := ledger.Refund(context.Background(), contributor); err != nil {
		t.Fatalf("refund retry: %v", err)
	}
}

func TestDetailsDerivedFlags(t *testing.T) {
	ledger, clock, _, _, _ := newTestLedger(100, 1000)

	tests := []struct {
		name       string
		now        time.Time
		wantActive bool
	}{
		{"before start", testStart.Add(-time.Second), false},
		{"at start", testStart, true},
		{"at end", testEnd, true},
		{"after end", testEnd.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Set(tt.now)
			d := ledger.Details()
			if d.IsActive != tt.wantActive {
				t.Errorf("IsActive = %v, want %v", d.IsActive, tt.wantActive)
			}
		})
	}

	if d := ledger.Details(); d.IsSuccessful {
		t.Error("IsSuccessful must be false below min target")
	}
	clock.Set(testStart)
	if err := ledger.Contribute(context.Background(), uuid.New(), 100, uuid.New()); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if d := ledger.Details(); !d.IsSuccessful {
		t.Error("IsSuccessful must be true at min target")
	}
}
