package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

const defaultMonitorBatch = 200

type overdueDSARStore interface {
	ListOverdueUnalerted(ctx context.Context, now time.Time, limit int) ([]models.DSAR, error)
	MarkOverdueAlerted(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error
}

type breachDeadlineStore interface {
	ListDeadlinePassedUnalerted(ctx context.Context, now time.Time, limit int) ([]models.Breach, error)
	MarkDeadlineAlerted(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error
}

type alertMarker func(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error

// MonitorConfig tunes the deadline monitor.
type MonitorConfig struct {
	Schedule  string
	BatchSize int
}

// MonitorResult counts reminders emitted by a run.
type MonitorResult struct {
	DSARsOverdue          int `json:"dsars_overdue"`
	BreachesPastDeadline  int `json:"breaches_past_deadline"`
	AlreadyAlertedSkipped int `json:"already_alerted_skipped"`
}

// MonitorService periodically emits one reminder for each overdue DSAR and
// each breach past its regulator deadline.
type MonitorService struct {
	dsars    overdueDSARStore
	breaches breachDeadlineStore
	db       txProvider
	notifier notificationRecorder
	metrics  *MetricsService
	logger   *zap.Logger
	clock    func() time.Time
	cfg      MonitorConfig
	cron     *cron.Cron
}

// NewMonitorService constructs the monitor.
func NewMonitorService(dsars overdueDSARStore, breaches breachDeadlineStore, cfg MonitorConfig, deps WorkflowDeps) *MonitorService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 15m"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultMonitorBatch
	}
	return &MonitorService{
		dsars:    dsars,
		breaches: breaches,
		db:       deps.DB,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		clock:    deps.Clock,
		cfg:      cfg,
	}
}

// Start schedules RunOnce on the configured cron expression.
func (s *MonitorService) Start(ctx context.Context) error {
	cronLogger := cronZapLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("deadline monitor run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule deadline monitor %q: %w", s.cfg.Schedule, err)
	}
	s.cron = c
	c.Start()
	s.logger.Info("deadline monitor started", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (s *MonitorService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("deadline monitor stopped")
}

// RunOnce scans both registers and emits reminders for records not yet alerted.
func (s *MonitorService) RunOnce(ctx context.Context) (*MonitorResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveMonitorRun(time.Since(start)) }()

	now := s.clock().UTC()
	result := &MonitorResult{}

	dsars, err := s.dsars.ListOverdueUnalerted(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list overdue dsars")
	}
	for i := range dsars {
		item := dsars[i]
		due := ""
		if item.DueDate != nil {
			due = item.DueDate.Format("2006-01-02")
		}
		n := &models.Notification{
			Type:       models.NotificationDSAROverdue,
			Subject:    fmt.Sprintf("DSAR %s is overdue", item.ReferenceNumber),
			Message:    fmt.Sprintf("DSAR %s from %s was due on %s and is still %s.", item.ReferenceNumber, item.RequestorName, due, item.Status),
			EntityType: models.EntityDSAR,
			EntityID:   item.ID,
		}
		sent, err := s.alert(ctx, s.dsars.MarkOverdueAlerted, item.ID, now, n)
		if err != nil {
			return result, err
		}
		if sent {
			result.DSARsOverdue++
		} else {
			result.AlreadyAlertedSkipped++
		}
	}

	breaches, err := s.breaches.ListDeadlinePassedUnalerted(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return result, appErrors.Internal(err, "failed to list breaches past deadline")
	}
	for i := range breaches {
		item := breaches[i]
		deadlineAt := ""
		if item.NotificationDeadline != nil {
			deadlineAt = item.NotificationDeadline.Format(time.RFC3339)
		}
		n := &models.Notification{
			Type:       models.NotificationBreachDeadline,
			Subject:    fmt.Sprintf("Regulator deadline passed for breach %s", item.ReferenceNumber),
			Message:    fmt.Sprintf("Breach %s (%s severity) had to be reported by %s and the regulator has not been notified.", item.ReferenceNumber, item.Severity, deadlineAt),
			EntityType: models.EntityBreach,
			EntityID:   item.ID,
		}
		sent, err := s.alert(ctx, s.breaches.MarkDeadlineAlerted, item.ID, now, n)
		if err != nil {
			return result, err
		}
		if sent {
			result.BreachesPastDeadline++
		} else {
			result.AlreadyAlertedSkipped++
		}
	}

	s.metrics.RecordDeadlineAlerts(models.EntityDSAR, result.DSARsOverdue)
	s.metrics.RecordDeadlineAlerts(models.EntityBreach, result.BreachesPastDeadline)
	if result.DSARsOverdue > 0 || result.BreachesPastDeadline > 0 {
		s.logger.Info("deadline reminders emitted",
			zap.Int("dsars", result.DSARsOverdue),
			zap.Int("breaches", result.BreachesPastDeadline),
		)
	}
	return result, nil
}

// alert stamps the record and stores its reminder atomically. A record
// stamped by a concurrent run is skipped.
func (s *MonitorService) alert(ctx context.Context, mark alertMarker, id string, at time.Time, n *models.Notification) (sent bool, err error) {
	if s.db == nil {
		return false, appErrors.Internal(errors.New("transaction provider not configured"), "failed to start transaction")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, appErrors.Internal(err, "failed to start transaction")
	}
	defer func() {
		if err != nil || !sent {
			_ = tx.Rollback()
		}
	}()

	if err = mark(ctx, tx, id, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		err = appErrors.Internal(err, "failed to stamp reminder")
		return false, err
	}
	if s.notifier != nil {
		if err = s.notifier.Record(ctx, tx, n); err != nil {
			err = appErrors.Internal(err, "failed to record reminder")
			return false, err
		}
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit reminder")
		return false, err
	}
	if s.notifier != nil {
		s.notifier.Dispatch(*n)
	}
	return true, nil
}

// cronZapLogger adapts zap to cron.Logger.
type cronZapLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronZapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
