package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ethics-case-api/internal/models"
)

func TestNotificationRepositoryWithoutClient(t *testing.T) {
	repo := NewNotificationRepository(nil, "")
	require.Equal(t, "case.status_changed", repo.channel)

	n, err := repo.Publish(context.Background(), models.StatusChangedEvent{CaseID: "case-1"})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestNotificationRepositoryPublishFailure(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	repo := NewNotificationRepository(client, "cases")
	_, err := repo.Publish(context.Background(), models.StatusChangedEvent{CaseID: "case-1", NewStatus: models.StatusReview1})
	require.ErrorContains(t, err, "redis publish cases")
}
