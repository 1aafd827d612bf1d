package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

func TestDeadlineServicePreviews(t *testing.T) {
	svc := NewDeadlineService(newRegistryStub())
	svc.now = fixedClock
	ctx := context.Background()
	received := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	dsar, err := svc.DSAR(ctx, "GDPR", &received)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31", dsar.DueDate.Format("2006-01-02"))
	require.NotNil(t, dsar.DaysRemaining)
	assert.Equal(t, 21, *dsar.DaysRemaining)

	breach, err := svc.Breach(ctx, "GDPR", &received)
	require.NoError(t, err)
	require.NotNil(t, breach.NotificationDeadline)
	assert.Equal(t, received.Add(72*time.Hour), *breach.NotificationDeadline)
	require.NotNil(t, breach.RegulatorName)

	noWindow, err := svc.Breach(ctx, "CCPA", nil)
	require.NoError(t, err)
	assert.Nil(t, noWindow.NotificationDeadline)
	assert.Equal(t, fixedNow, noWindow.DetectedDate)

	_, err = svc.DSAR(ctx, "MARS", nil)
	requireAppError(t, err, appErrors.ErrNotFound)
}
