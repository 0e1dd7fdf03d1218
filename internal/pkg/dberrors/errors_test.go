package dberrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"lock timeout", &pgconn.PgError{Code: CodeLockNotAvailable}, true},
		{"serialization", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: CodeSerializationFailure}), true},
		{"deadlock", &pgconn.PgError{Code: CodeDeadlockDetected}, true},
		{"deadline", fmt.Errorf("tx: %w", context.DeadlineExceeded), true},
		{"unique", &pgconn.PgError{Code: CodeUniqueViolation}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestConstraintHelpers(t *testing.T) {
	dup := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "users_email_key"}
	assert.True(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(dup, "other"))

	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: CodeForeignKeyViolation}))
	assert.True(t, IsAppendOnlyViolation(&pgconn.PgError{Code: CodeRaiseException, Message: "approval_records is append-only"}))
}
