package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ethics-case-api/internal/models"
)

type publisherStub struct {
	mu       sync.Mutex
	events   []models.StatusChangedEvent
	failures int
}

func (p *publisherStub) Publish(ctx context.Context, event models.StatusChangedEvent) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return 0, errors.New("redis down")
	}
	p.events = append(p.events, event)
	return 1, nil
}

func (p *publisherStub) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestNotificationServicePublishesAfterNotify(t *testing.T) {
	publisher := &publisherStub{}
	metrics := NewMetricsService()
	svc := NewNotificationService(publisher, metrics, nil, NotificationConfig{Enabled: true, Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify(context.Background(), models.StatusChangedEvent{CaseID: "c1", NewStatus: models.StatusAnalysis1})
	require.Eventually(t, func() bool { return publisher.published() == 1 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.notifications.WithLabelValues("published")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNotificationServiceRetriesFailedPublish(t *testing.T) {
	publisher := &publisherStub{failures: 1}
	svc := NewNotificationService(publisher, nil, nil, NotificationConfig{Enabled: true, Workers: 1, Retries: 2, RetryDelay: 10 * time.Millisecond})
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify(context.Background(), models.StatusChangedEvent{CaseID: "c1", NewStatus: models.StatusReview1})
	require.Eventually(t, func() bool { return publisher.published() == 1 }, time.Second, 10*time.Millisecond)
}

func TestNotificationServiceDisabledIsNoop(t *testing.T) {
	publisher := &publisherStub{}
	svc := NewNotificationService(publisher, nil, nil, NotificationConfig{Enabled: false})
	svc.Start(context.Background())
	svc.Notify(context.Background(), models.StatusChangedEvent{CaseID: "c1"})
	svc.Stop()
	require.Zero(t, publisher.published())

	var nilSvc *NotificationService
	nilSvc.Notify(context.Background(), models.StatusChangedEvent{CaseID: "c1"})
	nilSvc.Stop()
}

func TestNotificationServiceNotStartedCountsFailure(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewNotificationService(&publisherStub{}, metrics, nil, NotificationConfig{Enabled: true})

	svc.Notify(context.Background(), models.StatusChangedEvent{CaseID: "c1"})
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.notifications.WithLabelValues("failed")))
}
