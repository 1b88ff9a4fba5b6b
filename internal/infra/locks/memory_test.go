package locks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applocks "innkeeper/internal/app/locks"
)

func TestMemoryLockerExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.AcquireRoom(ctx, "tenant-1", "room-101", time.Second)
	require.NoError(t, err)

	_, err = locker.AcquireRoom(ctx, "tenant-1", "room-101", time.Second)
	assert.ErrorIs(t, err, applocks.ErrRoomBusy)

	release()

	release2, err := locker.AcquireRoom(ctx, "tenant-1", "room-101", time.Second)
	require.NoError(t, err)
	release2()
}

func TestMemoryLockerKeyScoping(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.AcquireRoom(ctx, "tenant-1", "room-101", time.Second)
	require.NoError(t, err)
	defer release()

	t.Run("other room unaffected", func(t *testing.T) {
		r, err := locker.AcquireRoom(ctx, "tenant-1", "room-102", time.Second)
		require.NoError(t, err)
		r()
	})

	t.Run("same room other tenant unaffected", func(t *testing.T) {
		r, err := locker.AcquireRoom(ctx, "tenant-2", "room-101", time.Second)
		require.NoError(t, err)
		r()
	})
}

func TestMemoryLockerReleaseIsIdempotentPerHolder(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.AcquireRoom(ctx, "tenant-1", "room-101", time.Second)
	require.NoError(t, err)
	release()
	// double release is a no-op
	release()

	r, err := locker.AcquireRoom(ctx, "tenant-1", "room-101", time.Second)
	require.NoError(t, err)
	r()
}
