package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/models"
)

func TestNotificationRepositoryCreateInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	n := &models.Notification{Type: models.NotificationStatusChanged, Recipient: "dpo@example.com", Subject: "s", Message: "m", EntityType: models.EntityDSAR, EntityID: "dsar-1"}
	require.NoError(t, repo.Create(context.Background(), tx, n))
	require.NoError(t, tx.Commit())
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "type", "recipient", "target_user_id", "subject", "message", "entity_type", "entity_id", "is_read", "read_at", "delivered_at", "created_at"}).
		AddRow("n-1", "STATUS_CHANGED", "dpo@example.com", "user-1", "subject", "message", "dsar", "dsar-1", false, nil, nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE (target_user_id = $1 OR target_user_id IS NULL) AND is_read = FALSE ORDER BY created_at DESC")).
		WithArgs("user-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications WHERE")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.NotificationFilter{TargetUserID: "user-1", UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationStatusChanged, items[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadNotVisible(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read = TRUE")).
		WithArgs(at, "n-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkRead(context.Background(), "n-1", "user-2", at)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
