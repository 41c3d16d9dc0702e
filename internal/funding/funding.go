// Package funding holds the campaign lifecycle core: the proposal registry
// and the per-campaign ledger. Both are in-memory entities that enforce the
// accounting invariants themselves; persistence and transport live outside.
package funding

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock supplies "now" to every time-gated check. Injected so tests can pin
// the window boundaries exactly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation used in production.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// AssetTransfer moves amount of asset from one account to another. The
// implementation must be atomic: either the full amount moves or nothing
// does. A returned error means nothing moved.
type AssetTransfer interface {
	Transfer(ctx context.Context, asset, from, to uuid.UUID, amount uint64) error
}
