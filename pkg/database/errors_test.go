package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	wrapped := fmt.Errorf("upsert user: %w", pgErr)

	assert.True(t, IsUniqueViolation(wrapped))
	assert.Equal(t, "idx_users_email", ConstraintName(wrapped))

	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.Equal(t, "", ConstraintName(errors.New("plain")))
}
