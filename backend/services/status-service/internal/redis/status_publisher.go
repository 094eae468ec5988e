package redisstore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"evdash/backend/services/status-service/internal/models"
)

// DefaultChannel carries every merged snapshot.
const DefaultChannel = "status:latest"

// Publisher fans merged snapshots out over redis pub/sub.
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher returns redis-backed publisher.
func NewPublisher(client *redis.Client, channel string) *Publisher {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

// Channel returns the pub/sub channel name.
func (p *Publisher) Channel() string {
	return p.channel
}

// Publish sends the snapshot to current subscribers. There is no delivery guarantee.
func (p *Publisher) Publish(ctx context.Context, status models.LatestStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}
