package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
	"github.com/noah-isme/privacy-admin-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	MarkDelivered(ctx context.Context, id string, at time.Time) error
}

// NotificationSender delivers a committed notification to an external channel.
type NotificationSender interface {
	Send(ctx context.Context, n models.Notification) error
}

// NotificationSenderFunc adapts a function into a sender.
type NotificationSenderFunc func(ctx context.Context, n models.Notification) error

// Send implements NotificationSender.
func (f NotificationSenderFunc) Send(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// NotificationConfig tunes recording and delivery.
type NotificationConfig struct {
	DefaultRecipient string
	Queue            jobs.QueueConfig
}

// NotificationService records workflow notifications and delivers them
// asynchronously through the configured senders.
type NotificationService struct {
	repo             notificationStore
	senders          []NotificationSender
	queue            *jobs.Queue[models.Notification]
	defaultRecipient string
	metrics          *MetricsService
	logger           *zap.Logger
	clock            func() time.Time
}

// NewNotificationService constructs the service and its delivery queue.
func NewNotificationService(repo notificationStore, cfg NotificationConfig, metrics *MetricsService, logger *zap.Logger, senders ...NotificationSender) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{
		repo:             repo,
		senders:          senders,
		defaultRecipient: cfg.DefaultRecipient,
		metrics:          metrics,
		logger:           logger,
		clock:            func() time.Time { return time.Now().UTC() },
	}
	if cfg.Queue.Logger == nil {
		cfg.Queue.Logger = logger
	}
	svc.queue = jobs.NewQueue("notifications", svc.deliver, cfg.Queue).OnDiscard(svc.abandon)
	return svc
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the delivery workers.
func (s *NotificationService) Stop() { s.queue.Stop() }

// Record inserts the notification using exec, normally the transaction of the change that produced it.
func (s *NotificationService) Record(ctx context.Context, exec sqlx.ExtContext, n *models.Notification) error {
	if n == nil {
		return nil
	}
	if strings.TrimSpace(n.Recipient) == "" {
		n.Recipient = s.defaultRecipient
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock()
	}
	return s.repo.Create(ctx, exec, n)
}

// Dispatch queues a committed notification for delivery. A full or stopped
// queue leaves the notification undelivered in the inbox.
func (s *NotificationService) Dispatch(n models.Notification) {
	if len(s.senders) == 0 {
		return
	}
	if err := s.queue.Enqueue(jobs.Job[models.Notification]{ID: n.ID, Payload: n}); err != nil {
		s.metrics.RecordNotification(string(n.Type), "dropped")
		s.logger.Warn("notification not queued", zap.String("notification_id", n.ID), zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job[models.Notification]) error {
	n := job.Payload
	if strings.TrimSpace(n.Recipient) == "" {
		return jobs.Permanent(errors.New("notification has no recipient"))
	}
	for _, sender := range s.senders {
		if err := sender.Send(ctx, n); err != nil {
			s.metrics.RecordNotification(string(n.Type), "failed")
			return err
		}
	}
	if err := s.repo.MarkDelivered(ctx, n.ID, s.clock()); err != nil {
		s.logger.Warn("failed to mark notification delivered", zap.String("notification_id", n.ID), zap.Error(err))
	}
	s.metrics.RecordNotification(string(n.Type), "delivered")
	return nil
}

// abandon records a notification that delivery gave up on. It stays
// undelivered in the inbox.
func (s *NotificationService) abandon(job jobs.Job[models.Notification], err error) {
	s.metrics.RecordNotification(string(job.Payload.Type), "abandoned")
	s.logger.Error("notification delivery abandoned",
		zap.String("notification_id", job.ID),
		zap.Int("attempts", job.Attempt),
		zap.Error(err),
	)
}

// List returns the inbox of a user.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page models.PageRequest) ([]models.Notification, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, models.NotificationFilter{TargetUserID: userID, UnreadOnly: unreadOnly, PageRequest: page})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list notifications")
	}
	return items, pagination(page, total), nil
}

// MarkRead flags a notification visible to the user as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID, s.clock()); err != nil {
		return loadError(err, "notification")
	}
	return nil
}

// LogSender writes notifications to the structured log.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger.Named("notify")}
}

// Send implements NotificationSender.
func (s *LogSender) Send(_ context.Context, n models.Notification) error {
	s.logger.Info("notification",
		zap.String("id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("recipient", n.Recipient),
		zap.String("entity_type", n.EntityType),
		zap.String("entity_id", n.EntityID),
		zap.String("subject", n.Subject),
	)
	return nil
}

type publisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// PublishSender fans notifications out on a Redis pub/sub channel.
type PublishSender struct {
	publisher publisher
	channel   string
}

// NewPublishSender constructs a PublishSender.
func NewPublishSender(p publisher, channel string) *PublishSender {
	return &PublishSender{publisher: p, channel: channel}
}

// Send implements NotificationSender.
func (s *PublishSender) Send(ctx context.Context, n models.Notification) error {
	return s.publisher.Publish(ctx, s.channel, n)
}
