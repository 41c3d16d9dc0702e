package handlers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fundflow/backend/internal/config"
	"github.com/fundflow/backend/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// overlapConn flags any concurrent WriteMessage entry.
type overlapConn struct {
	writing  atomic.Bool
	overlaps atomic.Int32
	writes   atomic.Int32
}

func (c *overlapConn) WriteMessage(messageType int, data []byte) error {
	if !c.writing.CompareAndSwap(false, true) {
		c.overlaps.Add(1)
		return nil
	}
	time.Sleep(time.Millisecond)
	c.writes.Add(1)
	c.writing.Store(false)
	return nil
}

func TestBroadcastSerializesConnectionWrites(t *testing.T) {
	hub := NewWSHub(&config.Config{}, nil, zap.NewNop())
	conn := &overlapConn{}
	hub.register(uuid.New(), conn)

	// both event streams deliver concurrently in production
	const perStream = 20
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perStream; j++ {
				hub.broadcast(events.Event{Type: events.EventContributionRecorded})
			}
		}()
	}
	wg.Wait()

	if n := conn.overlaps.Load(); n != 0 {
		t.Errorf("observed %d concurrent writes to one connection, want 0", n)
	}
	if n := conn.writes.Load(); n != 2*perStream {
		t.Errorf("writes = %d, want %d", n, 2*perStream)
	}
}

func TestUnregisterRemovesConnection(t *testing.T) {
	hub := NewWSHub(&config.Config{}, nil, zap.NewNop())
	accountID := uuid.New()
	conn := &overlapConn{}

	client := hub.register(accountID, conn)
	hub.broadcast(events.Event{Type: events.EventProposalSubmitted})
	if n := conn.writes.Load(); n != 1 {
		t.Fatalf("writes before unregister = %d, want 1", n)
	}

	hub.unregister(accountID, client)
	hub.broadcast(events.Event{Type: events.EventProposalSubmitted})
	if n := conn.writes.Load(); n != 1 {
		t.Errorf("writes after unregister = %d, want 1", n)
	}
}
