package locks

import (
	"context"
	"errors"
	"time"
)

// ErrRoomBusy means another request holds the room lock; callers surface it as
// a retryable conflict rather than waiting.
var ErrRoomBusy = errors.New("locks: room is busy")

// RoomLocker serializes the availability-check-then-insert window per
// (tenant, room). Implementations: Redis SET NX with TTL for multi-instance
// deployments, a keyed mutex for tests and single-node runs.
type RoomLocker interface {
	// AcquireRoom returns a release func on success or ErrRoomBusy if the lock
	// is held. The TTL bounds how long a crashed holder can block the room.
	AcquireRoom(ctx context.Context, tenantID, roomID string, ttl time.Duration) (release func(), err error)
}
