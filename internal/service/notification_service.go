package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ethics-case-api/internal/models"
	"github.com/noah-isme/ethics-case-api/pkg/jobs"
)

const statusChangedJob = "case.status_changed"

type eventPublisher interface {
	Publish(ctx context.Context, event models.StatusChangedEvent) (int64, error)
}

type notificationMetrics interface {
	ObserveNotification(result string)
}

// NotificationConfig tunes the dispatcher worker pool.
type NotificationConfig struct {
	Enabled        bool
	Workers        int
	Retries        int
	RetryDelay     time.Duration
	PublishTimeout time.Duration
}

// NotificationService dispatches status-change events after commit. Enqueueing
// never blocks the caller; a full buffer drops the event with a log line.
type NotificationService struct {
	publisher eventPublisher
	queue     *jobs.Queue
	metrics   notificationMetrics
	logger    *zap.Logger
	cfg       NotificationConfig
}

// NewNotificationService builds the dispatcher and its queue.
func NewNotificationService(publisher eventPublisher, metrics notificationMetrics, logger *zap.Logger, cfg NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 3 * time.Second
	}
	svc := &NotificationService{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
	svc.queue = jobs.NewQueue("case-notifications", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the workers. A disabled dispatcher stays idle.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || !s.cfg.Enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Notify enqueues event for publication.
func (s *NotificationService) Notify(ctx context.Context, event models.StatusChangedEvent) {
	if s == nil || !s.cfg.Enabled {
		return
	}
	job := jobs.Job{
		ID:      fmt.Sprintf("%s:%s", event.CaseID, event.NewStatus),
		Type:    statusChangedJob,
		Payload: event,
	}
	if err := s.queue.TryEnqueue(job); err != nil {
		result := "failed"
		if errors.Is(err, jobs.ErrQueueFull) {
			result = "dropped"
		}
		s.metrics.ObserveNotification(result)
		s.logger.Warn("status notification not queued",
			zap.String("case_id", event.CaseID),
			zap.String("status", string(event.NewStatus)),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.StatusChangedEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PublishTimeout)
	defer cancel()
	receivers, err := s.publisher.Publish(ctx, event)
	if err != nil {
		s.metrics.ObserveNotification("failed")
		return err
	}
	s.metrics.ObserveNotification("published")
	s.logger.Debug("status notification published",
		zap.String("case_id", event.CaseID),
		zap.String("status", string(event.NewStatus)),
		zap.Int64("receivers", receivers),
	)
	return nil
}
