package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires a free lock", func(t *testing.T) {
		l := NewMemoryLocker()
		release, err := l.Acquire(ctx, "settlement:owner-1:2026-02", time.Minute)
		require.NoError(t, err)
		require.NotNil(t, release)
		release()
	})

	t.Run("second acquire fails while held", func(t *testing.T) {
		l := NewMemoryLocker()
		_, err := l.Acquire(ctx, "key", time.Minute)
		require.NoError(t, err)

		_, err = l.Acquire(ctx, "key", time.Minute)
		var notAcquired *ErrNotAcquired
		require.ErrorAs(t, err, &notAcquired)
		assert.Equal(t, "key", notAcquired.Key)
	})

	t.Run("release frees the lock", func(t *testing.T) {
		l := NewMemoryLocker()
		release, err := l.Acquire(ctx, "key", time.Minute)
		require.NoError(t, err)
		release()

		_, err = l.Acquire(ctx, "key", time.Minute)
		require.NoError(t, err)
	})

	t.Run("different keys do not contend", func(t *testing.T) {
		l := NewMemoryLocker()
		_, err := l.Acquire(ctx, "key-a", time.Minute)
		require.NoError(t, err)

		_, err = l.Acquire(ctx, "key-b", time.Minute)
		require.NoError(t, err)
	})

	t.Run("expired hold is reclaimed", func(t *testing.T) {
		l := NewMemoryLocker()
		now := time.Now()
		l.clock = func() time.Time { return now }

		_, err := l.Acquire(ctx, "key", time.Minute)
		require.NoError(t, err)

		l.clock = func() time.Time { return now.Add(2 * time.Minute) }
		_, err = l.Acquire(ctx, "key", time.Minute)
		require.NoError(t, err)
	})
}
