package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-restaurant-sync/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "restaurant:doc:"

// Redis keeps the document under a plain key and announces every write on a
// pub/sub channel carrying the full body.
type Redis struct {
	rdb *redis.Client
}

// NewRedis parses redisURL and checks connectivity.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func redisKey(key string) string     { return redisKeyPrefix + key }
func redisChannel(key string) string { return redisKeyPrefix + key + ":changes" }

func (r *Redis) Get(ctx context.Context, key string) (Document, error) {
	body, err := r.rdb.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, err
	}
	return decode(key, body), nil
}

func (r *Redis) Put(ctx context.Context, key string, state model.SystemState) error {
	body, err := json.Marshal(state)
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, redisKey(key), body, 0)
	pipe.Publish(ctx, redisChannel(key), body)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, key string) (<-chan Document, error) {
	ps := r.rdb.Subscribe(ctx, redisChannel(key))
	// Wait for the subscription to be confirmed before reading the current
	// value, so no write can fall between the two.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", key, err)
	}

	out := make(chan Document, 1)
	initial, err := r.Get(ctx, key)
	if err != nil {
		ps.Close()
		return nil, err
	}
	offerLatest(out, initial)

	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Warn().Str("key", key).Msg("redis subscription closed")
					return
				}
				offerLatest(out, decode(key, []byte(msg.Payload)))
			}
		}
	}()
	return out, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
