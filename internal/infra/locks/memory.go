package locks

import (
	"context"
	"sync"
	"time"

	applocks "innkeeper/internal/app/locks"
)

// MemoryLocker is a per-key mutex for single-process deployments and tests.
// The TTL is ignored: the lock lives until released or the process dies.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) AcquireRoom(ctx context.Context, tenantID, roomID string, ttl time.Duration) (func(), error) {
	key := roomKey(tenantID, roomID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, applocks.ErrRoomBusy
	}
	l.held[key] = struct{}{}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

func roomKey(tenantID, roomID string) string {
	return "room_lock:" + tenantID + ":" + roomID
}

var _ applocks.RoomLocker = (*MemoryLocker)(nil)
