package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/privacy-admin-api/internal/models"
	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

func TestDSARMachineTransitions(t *testing.T) {
	assert.Equal(t, models.DSARStatusReceived, DSAR.Initial())
	assert.True(t, DSAR.CanTransition(models.DSARStatusReceived, models.DSARStatusVerified))
	assert.True(t, DSAR.CanTransition(models.DSARStatusPendingInfo, models.DSARStatusInProgress))
	assert.False(t, DSAR.CanTransition(models.DSARStatusReceived, models.DSARStatusCompleted))

	for _, s := range []models.DSARStatus{models.DSARStatusCompleted, models.DSARStatusRejected, models.DSARStatusWithdrawn} {
		assert.True(t, DSAR.IsTerminal(s), s)
		assert.Empty(t, DSAR.Next(s), s)
	}
}

func TestDSARWithdrawableFromEveryOpenStatus(t *testing.T) {
	for _, s := range []models.DSARStatus{models.DSARStatusReceived, models.DSARStatusVerified, models.DSARStatusInProgress, models.DSARStatusPendingInfo} {
		assert.NoError(t, DSAR.Validate(s, models.DSARStatusWithdrawn), s)
	}
}

func TestValidateRejectsUnreachableTarget(t *testing.T) {
	err := DSAR.Validate(models.DSARStatusCompleted, models.DSARStatusReceived)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "dsar cannot move from completed to received", appErr.Message)
}

func TestValidateRejectsUnknownStatus(t *testing.T) {
	err := Consent.Validate(models.ConsentStatusActive, models.ConsentStatus("revoked"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
}

func TestNextIsSorted(t *testing.T) {
	assert.Equal(t,
		[]models.DSARStatus{models.DSARStatusCompleted, models.DSARStatusPendingInfo, models.DSARStatusRejected, models.DSARStatusWithdrawn},
		DSAR.Next(models.DSARStatusInProgress))
}

func TestMachinesHaveNoEdgesOutOfTerminal(t *testing.T) {
	assert.True(t, Complaint.IsTerminal(models.ComplaintStatusClosed))
	assert.True(t, Breach.IsTerminal(models.BreachStatusClosed))
	assert.True(t, ROPA.IsTerminal(models.ROPAStatusArchived))
	assert.True(t, Consent.IsTerminal(models.ConsentStatusExpired))
	assert.False(t, Breach.CanTransition(models.BreachStatusClosed, models.BreachStatusInvestigating))
}

func TestNewPanicsOnTerminalEdges(t *testing.T) {
	assert.Panics(t, func() {
		New("broken", "a", map[string][]string{"b": {"a"}}, "b")
	})
}
