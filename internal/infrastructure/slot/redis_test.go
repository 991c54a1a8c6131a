package slot_test

import (
	"context"
	"testing"
	"time"

	"hostel-backend/internal/application/housing"
	"hostel-backend/internal/fixtures"
	"hostel-backend/internal/infrastructure/slot"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisSlot_GetSetMany(t *testing.T) {
	mr, rdb := setupRedis(t)
	ctx := context.Background()
	s := &slot.RedisSlot{Client: rdb, Prefix: "hostel:"}

	_, found, err := s.Get(ctx, housing.KeyListings)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetMany(ctx, map[string][]byte{
		housing.KeyListings:  []byte(`[]`),
		housing.KeyOccupancy: []byte(`{}`),
	}))
	v, found, err := s.Get(ctx, housing.KeyListings)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(v))

	raw, err := mr.Get("hostel:" + housing.KeyOccupancy)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)
}

func TestRedisSlot_GetErrorWhenServerDown(t *testing.T) {
	mr, rdb := setupRedis(t)
	mr.Close()
	s := &slot.RedisSlot{Client: rdb}
	_, _, err := s.Get(context.Background(), housing.KeyListings)
	assert.Error(t, err)
}

func TestRedisBroadcaster_DeliversSignals(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	b := &slot.RedisBroadcaster{Client: rdb}

	signals := make(chan struct{}, 4)
	stop, err := b.Subscribe(ctx, func() { signals <- struct{}{} })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, b.Publish(ctx))
	select {
	case <-signals:
	case <-time.After(2 * time.Second):
		t.Fatal("no signal received")
	}
}

func TestRedisBackedStores_Converge(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	seed, err := fixtures.Default(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	newStore := func() *housing.Store {
		s, err := housing.NewStore(ctx, seed, housing.Options{
			Slot:        &slot.RedisSlot{Client: rdb, Prefix: "hostel:"},
			Broadcaster: &slot.RedisBroadcaster{Client: rdb},
			Policy:      housing.DefaultPolicy(),
		})
		require.NoError(t, err)
		stop, err := s.Listen(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = stop() })
		return s
	}
	a := newStore()
	b := newStore()

	_, err = a.BookRoom(ctx, "h1", "101", "Alice")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		booking, ok := b.FindBooking("Alice")
		return ok && booking.Bed.ID == "b-101-1"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, a.Snapshot(), b.Snapshot())

	c := newStore()
	_, ok := c.FindBooking("Alice")
	assert.True(t, ok, "a store started later loads the persisted snapshot")
}
