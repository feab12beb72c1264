package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrIntegrityViolation marks a unique constraint hit at commit time. The
	// allocator retries on it; callers only see it wrapped in ContentionError.
	ErrIntegrityViolation = errors.New("integrity violation")
)

// ContentionError is returned when no unique sequence could be committed
// within the attempt budget. Nothing was persisted; the request may be retried.
type ContentionError struct {
	DocType  string
	Epoch    string
	Attempts int
	Err      error
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("sequence %s/%s: no unique value after %d attempts: %v", e.DocType, e.Epoch, e.Attempts, e.Err)
}

func (e *ContentionError) Unwrap() error { return e.Err }

// integrity tags unique-key failures so the retry loop can see them.
func integrity(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrIntegrityViolation, err)
	}
	return err
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
