package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/ethics-case-api/internal/models"
)

// NotificationRepository publishes status-change events on a Redis channel.
type NotificationRepository struct {
	client  redis.UniversalClient
	channel string
}

// NewNotificationRepository constructs the publisher.
func NewNotificationRepository(client redis.UniversalClient, channel string) *NotificationRepository {
	if channel == "" {
		channel = "case.status_changed"
	}
	return &NotificationRepository{client: client, channel: channel}
}

// Publish serialises the event and publishes it. Returns the subscriber count.
func (r *NotificationRepository) Publish(ctx context.Context, event models.StatusChangedEvent) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("marshal status event: %w", err)
	}
	receivers, err := r.client.Publish(ctx, r.channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish %s: %w", r.channel, err)
	}
	return receivers, nil
}
