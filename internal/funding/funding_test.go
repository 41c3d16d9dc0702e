package funding

import (
	"context"
	"sync"
	"time"

	"github.com/fundflow/backend/internal/events"
	"github.com/google/uuid"
)

// fakeClock pins "now" so window boundaries can be tested exactly.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type transferCall struct {
	asset, from, to uuid.UUID
	amount          uint64
}

// fakeTransfer records transfer calls and can be made to fail or to call
// back into the ledger mid-transfer.
type fakeTransfer struct {
	mu         sync.Mutex
	fail       error
	onTransfer func() error
	calls      []transferCall
}

func (f *fakeTransfer) Transfer(ctx context.Context, asset, from, to uuid.UUID, amount uint64) error {
	f.mu.Lock()
	fail := f.fail
	hook := f.onTransfer
	f.mu.Unlock()

	if hook != nil {
		if err := hook(); err != nil {
			return err
		}
	}
	if fail != nil {
		return fail
	}

	f.mu.Lock()
	f.calls = append(f.calls, transferCall{asset: asset, from: from, to: to, amount: amount})
	f.mu.Unlock()
	return nil
}

func (f *fakeTransfer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransfer) lastCall() transferCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// memPublisher collects published events in order.
type memPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *memPublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
