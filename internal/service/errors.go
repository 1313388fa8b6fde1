package service

import (
	"alcyxob/trainer-app/internal/storage"
	"errors"
	"fmt"
	"time"
)

// --- Error Definitions ---
var (
	// ErrValidation wraps every input problem; handlers answer 400 with the wrapped message.
	ErrValidation = errors.New("validation failed")

	ErrTrainerNotFound = errors.New("trainer not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrPlanNotFound    = errors.New("plan not found")
	ErrDayNotFound     = errors.New("plan day not found")
	ErrBlockNotFound   = errors.New("plan block not found")
	ErrItemNotFound    = errors.New("plan item not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrStorageNotConfigured is returned by avatar and export features without object storage.
	ErrStorageNotConfigured = storage.ErrNotConfigured
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// nowFunc is swapped in tests.
var nowFunc = func() time.Time { return time.Now().UTC() }
