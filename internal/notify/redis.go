package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ihirwe/event-locator/internal/observability"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher delivers notifications over Redis pub/sub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(ctx context.Context, redisURL, channel string, logger *slog.Logger, metrics *observability.Metrics) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger, metrics: metrics}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, n EventNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		p.metrics.NotificationsPublished.WithLabelValues("redis", "error").Inc()
		return fmt.Errorf("serialize notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		p.metrics.NotificationsPublished.WithLabelValues("redis", "error").Inc()
		return fmt.Errorf("publish notification: %w", err)
	}
	p.metrics.NotificationsPublished.WithLabelValues("redis", "ok").Inc()
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

var _ Publisher = (*RedisPublisher)(nil)
