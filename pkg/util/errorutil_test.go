package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("passthrough", func(t *testing.T) {
		err := NewForbidden("nope")
		converted := ToDomainError(err)
		require.NotNil(t, converted)
		assert.Equal(t, "FORBIDDEN", converted.Code)
		assert.Equal(t, http.StatusForbidden, converted.HTTPStatus)
	})

	t.Run("wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("loading project: %w", NewNotFound("project", nil))
		converted := ToDomainError(err)
		require.NotNil(t, converted)
		assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		converted := ToDomainError(pgx.ErrNoRows)
		require.NotNil(t, converted)
		assert.Equal(t, "NOT_FOUND", converted.Code)
		assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
	})

	t.Run("generic maps to internal", func(t *testing.T) {
		converted := ToDomainError(errors.New("boom"))
		require.NotNil(t, converted)
		assert.Equal(t, "INTERNAL_ERROR", converted.Code)
		assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
	})
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
