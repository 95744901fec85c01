package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidTransition(t *testing.T) {
	err := NewInvalidTransition("OPEN", "CLOSED", map[string]any{"ticket_id": int64(7)})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
	assert.Equal(t, "OPEN", domainErr.Details["from"])
	assert.Equal(t, "CLOSED", domainErr.Details["to"])
	assert.Equal(t, int64(7), domainErr.Details["ticket_id"])
}

func TestNewInvalidState(t *testing.T) {
	err := NewInvalidState("work order already closed", nil)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
}

func TestNewAllocationError(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := NewAllocationError("DI", cause)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALLOCATION_FAILED", domainErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.HTTPStatus)
	assert.Equal(t, "DI", domainErr.Details["series"])
	assert.ErrorIs(t, err, cause)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	domainErr := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewNotFound("reclamation", map[string]any{"ticket_id": int64(1)})
	domainErr := ToDomainError(original)
	assert.Same(t, original, error(domainErr))
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	domainErr := ToDomainError(cause)
	require.NotNil(t, domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
