package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/repository"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// notificationRecorder persists a notification inside the caller's
// transaction and hands it to delivery once the transaction committed.
type notificationRecorder interface {
	Record(ctx context.Context, exec sqlx.ExtContext, n *models.Notification) error
	Dispatch(n models.Notification)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, patterns ...string) error
}

type statusWriter func(ctx context.Context, exec sqlx.ExtContext, update repository.StatusUpdate) error

// WorkflowDeps groups collaborators shared by every register service.
type WorkflowDeps struct {
	DB       txProvider
	Notifier notificationRecorder
	Audit    auditLogger
	Cache    cacheInvalidator
	Metrics  *MetricsService
	Logger   *zap.Logger
	Clock    func() time.Time
}

// workflow runs guarded writes and their side effects.
type workflow struct {
	db       txProvider
	notifier notificationRecorder
	audit    auditLogger
	cache    cacheInvalidator
	metrics  *MetricsService
	logger   *zap.Logger
	clock    func() time.Time
}

func newWorkflow(deps WorkflowDeps) workflow {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	return workflow{
		db:       deps.DB,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		clock:    deps.Clock,
	}
}

func (w *workflow) now() time.Time { return w.clock().UTC() }

// transitionPlan is a validated status change ready to be written.
type transitionPlan struct {
	entity       string
	update       repository.StatusUpdate
	notification *models.Notification
}

// applyTransition writes the status change and its notification in one
// transaction. Nothing is visible unless both succeed.
func (w *workflow) applyTransition(ctx context.Context, write statusWriter, plan transitionPlan) (err error) {
	if w.db == nil {
		return appErrors.Internal(errors.New("transaction provider not configured"), "failed to start transaction")
	}
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Internal(err, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = write(ctx, tx, plan.update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Conflictf("%s %s was modified concurrently", plan.entity, plan.update.ID)
			return err
		}
		err = appErrors.Internal(err, fmt.Sprintf("failed to update %s status", plan.entity))
		return err
	}
	if plan.notification != nil && w.notifier != nil {
		if err = w.notifier.Record(ctx, tx, plan.notification); err != nil {
			err = appErrors.Internal(err, "failed to record notification")
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit transition")
		return err
	}

	w.metrics.RecordTransition(plan.entity, plan.update.From, plan.update.To)
	if plan.notification != nil && w.notifier != nil {
		w.notifier.Dispatch(*plan.notification)
	}
	w.afterWrite(ctx)
	w.logger.Info("status transition applied",
		zap.String("entity", plan.entity),
		zap.String("id", plan.update.ID),
		zap.String("from", plan.update.From),
		zap.String("to", plan.update.To),
	)
	return nil
}

// afterWrite drops cached aggregates derived from the registers.
func (w *workflow) afterWrite(ctx context.Context) {
	if w.cache == nil {
		return
	}
	if err := w.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		w.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (w *workflow) emitAudit(ctx context.Context, actor models.Actor, action, resource, resourceID string, oldValues, newValues interface{}) {
	if w.audit == nil {
		return
	}
	log := models.NewAuditLog(actor, action, resource, resourceID).WithValues(oldValues, newValues)
	if err := w.audit.CreateAuditLog(ctx, log); err != nil {
		w.logger.Warn("failed to persist audit log", zap.String("resource", resource), zap.Error(err))
	}
}

// loadError maps repository lookups into domain errors.
func loadError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NotFound(entity)
	}
	return appErrors.Internal(err, "failed to load "+entity)
}

// writeError maps a failed compare-and-swap write into a conflict.
func writeError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Conflictf("%s was modified by another request", entity)
	}
	return appErrors.Internal(err, "failed to save "+entity)
}

// checkExpectations rejects stale transition requests.
func checkExpectations(entity, current, expected string, version int, expectedVersion *int) error {
	if expected != current {
		return appErrors.Conflictf("%s status is %s, expected %s", entity, current, expected)
	}
	if expectedVersion != nil && *expectedVersion != version {
		return appErrors.Conflictf("%s version is %d, expected %d", entity, version, *expectedVersion)
	}
	return nil
}

func checkVersion(entity string, version int, expected *int) error {
	if expected != nil && *expected != version {
		return appErrors.Conflictf("%s version is %d, expected %d", entity, version, *expected)
	}
	return nil
}

// referenceNumber renders PREFIX-YYYYMMDD-XXXXXXXX.
func referenceNumber(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), suffix)
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

func statusChangedNotification(entity, id, label string, from, to string, actor models.Actor, note string) *models.Notification {
	message := fmt.Sprintf("%s moved from %s to %s by %s.", label, from, to, actorName(actor))
	if note = strings.TrimSpace(note); note != "" {
		message += " Note: " + note
	}
	return &models.Notification{
		Type:       models.NotificationStatusChanged,
		Subject:    fmt.Sprintf("%s is now %s", label, to),
		Message:    message,
		EntityType: entity,
		EntityID:   id,
	}
}

func actorName(actor models.Actor) string {
	if actor.Email != "" {
		return actor.Email
	}
	if actor.UserID != "" {
		return actor.UserID
	}
	return "system"
}

func pagination(page models.PageRequest, total int) *models.Pagination {
	p := page.Normalize()
	return &models.Pagination{Page: p.Page, PageSize: p.PageSize, TotalCount: total}
}
