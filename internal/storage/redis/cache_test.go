package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &Client{goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestSetGetJSON(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, client.SetJSON(ctx, "key", payload{Name: "belt", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, client.GetJSON(ctx, "key", &got))
	assert.Equal(t, "belt", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetJSON_Miss(t *testing.T) {
	client, _ := newTestClient(t)

	var dest map[string]string
	err := client.GetJSON(context.Background(), "missing", &dest)
	assert.ErrorIs(t, err, goredis.Nil)
}

func TestCachedAlertList_Expires(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	key := AlertListKey("tenant-1", "status=ACTIVE&page=1")
	require.NoError(t, client.CacheAlertList(ctx, key, map[string]int{"total": 4}, 30*time.Second))

	var dest map[string]int
	require.NoError(t, client.GetCachedAlertList(ctx, key, &dest))
	assert.Equal(t, 4, dest["total"])

	mr.FastForward(time.Minute)
	err := client.GetCachedAlertList(ctx, key, &dest)
	assert.ErrorIs(t, err, goredis.Nil)
}

func TestAlertListKey(t *testing.T) {
	a := AlertListKey("tenant-1", "status=ACTIVE")
	b := AlertListKey("tenant-1", "status=RESOLVED")
	c := AlertListKey("tenant-2", "status=ACTIVE")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, AlertListKey("tenant-1", "status=ACTIVE"))
	assert.Contains(t, a, "alerts:list:tenant-1:")
}

func TestInvalidateAlertLists(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	for _, query := range []string{"page=1", "page=2", "status=ACTIVE"} {
		require.NoError(t, client.CacheAlertList(ctx, AlertListKey("tenant-1", query), query, time.Minute))
	}
	otherKey := AlertListKey("tenant-2", "page=1")
	require.NoError(t, client.CacheAlertList(ctx, otherKey, "kept", time.Minute))

	require.NoError(t, client.InvalidateAlertLists(ctx, "tenant-1"))

	var dest string
	err := client.GetCachedAlertList(ctx, AlertListKey("tenant-1", "page=1"), &dest)
	assert.ErrorIs(t, err, goredis.Nil)

	require.NoError(t, client.GetCachedAlertList(ctx, otherKey, &dest))
	assert.Equal(t, "kept", dest)
}
