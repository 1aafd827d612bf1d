package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

const notificationColumns = `id, type, recipient, target_user_id, subject, message, entity_type, entity_id, is_read, read_at, delivered_at, created_at`

// NotificationRepository persists workflow notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification, typically inside the transaction of the change that produced it.
func (r *NotificationRepository) Create(ctx context.Context, exec sqlx.ExtContext, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, type, recipient, target_user_id, subject, message, entity_type, entity_id, is_read, created_at)
VALUES (:id, :type, :recipient, :target_user_id, :subject, :message, :entity_type, :entity_id, :is_read, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, execOr(r.db, exec), query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// List returns notifications addressed to a user or broadcast to everyone.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	w := &whereBuilder{}
	if filter.TargetUserID != "" {
		w.add("(target_user_id = $%d OR target_user_id IS NULL)", filter.TargetUserID)
	}
	if filter.UnreadOnly {
		w.addRaw("is_read = FALSE")
	}
	query := "SELECT " + notificationColumns + " FROM notifications" + w.clause() +
		orderAndPage(filter.PageRequest, map[string]string{"created_at": "created_at"}, "created_at")
	var items []models.Notification
	if err := r.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM notifications"+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	return items, total, nil
}

// MarkRead flags a notification as read when it is visible to the user.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	const query = `UPDATE notifications SET is_read = TRUE, read_at = $1
WHERE id = $2 AND (target_user_id = $3 OR target_user_id IS NULL)`
	result, err := r.db.ExecContext(ctx, query, at, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireAffected(result, "notifications")
}

// MarkDelivered records successful delivery.
func (r *NotificationRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET delivered_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("mark notification delivered: %w", err)
	}
	return nil
}
