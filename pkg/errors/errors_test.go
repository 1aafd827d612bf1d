package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsCodeAndStatus(t *testing.T) {
	err := Clone(ErrConflict, "stale status")
	assert.Equal(t, "CONFLICT", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "stale status", err.Error())
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestFromErrorUnwrapsNestedAppErrors(t *testing.T) {
	wrapped := fmt.Errorf("transition: %w", Clone(ErrInvalidTransition, "dsar cannot move from completed to received"))
	appErr := FromError(wrapped)
	assert.Equal(t, ErrInvalidTransition.Code, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
}

func TestNilErrorString(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.Nil(t, e.Unwrap())
	assert.Nil(t, FromError(nil))
}

func TestInvalidFlattensFieldErrors(t *testing.T) {
	payload := struct {
		Email string `validate:"required,email"`
		Days  int    `validate:"gte=1"`
	}{Email: "not-an-email"}

	err := Invalid(validator.New().Struct(payload), "invalid dsar payload")
	require.Len(t, err.Details, 2)
	assert.Equal(t, ErrValidation.Code, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, FieldError{Field: "Email", Rule: "email"}, err.Details[0])
	assert.Equal(t, FieldError{Field: "Days", Rule: "gte", Param: "1"}, err.Details[1])
}

func TestInvalidWithoutFieldErrors(t *testing.T) {
	err := Invalid(errors.New("unexpected EOF"), "invalid payload")
	assert.Empty(t, err.Details)
	assert.Equal(t, "invalid payload: unexpected EOF", err.Error())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "breach not found", NotFound("breach").Message)
	assert.True(t, errors.Is(Conflictf("dsar version is %d, expected %d", 3, 2), ErrConflict))
	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(sql.ErrTxDone))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(ErrInvalidTransition))
}
