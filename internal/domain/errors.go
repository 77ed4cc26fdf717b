// Package domain holds entities, ports and domain errors shared by all layers.
package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("resource already exists")
	ErrForbidden    = errors.New("access denied")
	ErrConflict     = errors.New("conflict with current state")

	// Invoice lifecycle.
	ErrNotDraft     = errors.New("invoice is not a draft")
	ErrNotFinalized = errors.New("draft invoices cannot be exported, finalize first")
	ErrNoItems      = errors.New("invoice must have at least one line item")
	ErrCancelled    = errors.New("invoice is already cancelled")

	// GoBD archival preconditions.
	ErrDraftNotArchivable = errors.New("draft invoices cannot be archived")
	ErrAlreadyArchived    = errors.New("invoice is already archived")
)
