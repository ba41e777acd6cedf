package store

import (
	"context"
	"time"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

// Redis keeps the history under a string key so several terminals can
// share one conversation.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(addr, key string) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{Addr: addr}), key)
}

func NewRedisWithClient(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: "chatwidget:history:" + key}
}

func (r *Redis) Read() ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Message{}, nil
		}
		return nil, errors.Wrap(err, "redis get history")
	}
	return Decode(data)
}

func (r *Redis) Write(messages []models.Message) error {
	data, err := Encode(messages)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return errors.Wrap(err, "redis set history")
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
