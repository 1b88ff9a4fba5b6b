package locks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	applocks "innkeeper/internal/app/locks"
)

// releaseScript deletes the lock only if the caller still owns it, so a lock
// that expired and was re-acquired by someone else is never released by the
// stale holder.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// RedisLocker serializes room writes across instances with SET NX + TTL.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) AcquireRoom(ctx context.Context, tenantID, roomID string, ttl time.Duration) (func(), error) {
	key := roomKey(tenantID, roomID)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, applocks.ErrRoomBusy
	}
	return func() {
		// Best-effort: an expired lock is already gone and that is fine.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err()
	}, nil
}

var _ applocks.RoomLocker = (*RedisLocker)(nil)
