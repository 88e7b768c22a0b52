package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisQueue(client)
}

func TestPushPop(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	job := &ScanJob{
		ID:        "job-1",
		TenantID:  "tenant-1",
		Trigger:   TriggerManual,
		Priority:  1,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, q.Push(ctx, job))

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.ID)
	assert.Equal(t, "tenant-1", got.TenantID)
	assert.Equal(t, TriggerManual, got.Trigger)
}

func TestPop_PriorityOrder(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, &ScanJob{ID: "low", TenantID: "t", Priority: 5}))
	require.NoError(t, q.Push(ctx, &ScanJob{ID: "high", TenantID: "t", Priority: 1}))

	first, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "high", first.ID)

	second, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "low", second.ID)
}

func TestPop_Empty(t *testing.T) {
	q := newTestQueue(t)

	_, err := q.Pop(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestLength(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)

	require.NoError(t, q.Push(ctx, &ScanJob{ID: "job-1", TenantID: "t", Priority: 1}))
	require.NoError(t, q.Push(ctx, &ScanJob{ID: "job-2", TenantID: "t", Priority: 2}))

	length, err = q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)
}
