package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound = errors.New("source file not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")

	// Field and row scoped kinds; aggregated into the quality report,
	// never fatal for a batch.
	ErrUnparseable      = errors.New("unparseable value")
	ErrValidation       = errors.New("validation failure")
	ErrIdentityConflict = errors.New("identity conflict")
	ErrOrphanReference  = errors.New("orphan reference")

	// Batch scoped kinds; the only two that abort an invocation.
	ErrConflict     = errors.New("file already processing")
	ErrCommitFailed = errors.New("store commit failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
