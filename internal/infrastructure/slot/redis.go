package slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultChannel is the pub/sub channel carrying the payload-less change signal.
const DefaultChannel = "storage-update"

// RedisSlot stores entries as plain Redis strings under Prefix.
type RedisSlot struct {
	Client *redis.Client
	Prefix string
}

func (s *RedisSlot) key(k string) string {
	return s.Prefix + k
}

func (s *RedisSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.Client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// SetMany writes all entries in one MULTI/EXEC so readers never see a mix of two snapshots.
func (s *RedisSlot) SetMany(ctx context.Context, entries map[string][]byte) error {
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, s.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// RedisBroadcaster carries change signals between processes over Redis pub/sub.
type RedisBroadcaster struct {
	Client  *redis.Client
	Channel string
}

func (b *RedisBroadcaster) channel() string {
	if b.Channel == "" {
		return DefaultChannel
	}
	return b.Channel
}

func (b *RedisBroadcaster) Publish(ctx context.Context) error {
	return b.Client.Publish(ctx, b.channel(), DefaultChannel).Err()
}

// Subscribe returns once the subscription is confirmed by the server. onSignal runs on a
// dedicated goroutine, one signal at a time.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, onSignal func()) (func() error, error) {
	ps := b.Client.Subscribe(ctx, b.channel())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", b.channel(), err)
	}
	ch := ps.Channel()
	go func() {
		for range ch {
			onSignal()
		}
		log.Debug().Str("channel", b.channel()).Msg("Change signal subscription closed")
	}()
	return ps.Close, nil
}
