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

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_SetGetJSON(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.SetJSON(ctx, "pm:test", payload{Name: "a", Count: 2}, time.Minute))

	var got payload
	found, err := c.GetJSON(ctx, "pm:test", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "a", Count: 2}, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.GetJSON(ctx, "pm:test", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_UndecodableEntryIsAMiss(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("pm:bad", "{not json"))

	var got payload
	found, err := c.GetJSON(ctx, "pm:bad", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("pm:bad"))
}

func TestClient_DeleteByPattern(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for _, k := range []string{"pm:courses:1", "pm:courses:2", "pm:course:x"} {
		require.NoError(t, mr.Set(k, "1"))
	}

	deleted, err := c.DeleteByPattern(ctx, "pm:courses:*")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.True(t, mr.Exists("pm:course:x"))

	require.NoError(t, c.Delete(ctx, "pm:course:x"))
	assert.False(t, mr.Exists("pm:course:x"))
}

func TestClient_PingFailsWhenServerDown(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, c.Ping(ctx))
}
