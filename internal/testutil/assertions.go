package testutil

import (
	"errors"
	"testing"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"

	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAuditCount fails the test unless exactly want audit entries match
// tableName and action (empty values match everything).
func AssertAuditCount(t *testing.T, db *gorm.DB, tableName string, action models.AuditAction, want int64) {
	t.Helper()

	if got := CountAuditEntries(t, db, tableName, action); got != want {
		t.Errorf("expected %d audit entries for table=%q action=%q, got %d", want, tableName, action, got)
	}
}
