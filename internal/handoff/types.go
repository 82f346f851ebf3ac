// Package handoff implements the ownership transfer protocol: the
// grant-then-promote sequence that moves a Drive file from one account to
// another, and the batch coordinator that paces it over many files.
package handoff

import (
	"context"
	"errors"

	"github.com/driveshift/driveshift/internal/gdrive"
)

// Sentinel errors for the transfer protocol. Every failure wraps one of
// these plus the underlying cause; use errors.Is to classify.
var (
	// ErrInvalidInput: malformed target email or empty file ID, detected
	// before any API call.
	ErrInvalidInput = errors.New("handoff: invalid input")

	// ErrNotFound: the file is missing or inaccessible to the source account.
	ErrNotFound = errors.New("handoff: file not found")

	// ErrNoOwner: the file metadata reports an empty owner list, which the
	// Drive API should never produce.
	ErrNoOwner = errors.New("handoff: file has no owner")

	// ErrPermissionLookup: the permission set could not be read.
	ErrPermissionLookup = errors.New("handoff: permission lookup failed")

	// ErrPromotionFailed: the target's permission could not be located or
	// promoted to owner.
	ErrPromotionFailed = errors.New("handoff: promotion failed")
)

// DriveService is the capability set the protocol needs from a Drive client.
// *gdrive.Client satisfies it; tests substitute a fake. Transport, auth
// header injection, and retry belong behind this interface, not here.
type DriveService interface {
	GetFile(ctx context.Context, fileID string) (*gdrive.File, error)
	ListPermissions(ctx context.Context, fileID string) ([]gdrive.Permission, error)
	CreatePermission(ctx context.Context, fileID, email, role string, notify bool) (*gdrive.Permission, error)
	UpdatePermission(ctx context.Context, fileID, permissionID, role string, transferOwnership bool) error
}

// TransferOutcome is the per-file result of a batch element.
type TransferOutcome struct {
	FileID   string
	FileName string
	Success  bool
	// Message is a short human-readable disposition ("ownership transferred",
	// "already owner"). Empty on failure.
	Message string
	// Err is the failure cause; nil on success.
	Err error
	// NewOwner is the target email after a successful transfer.
	NewOwner string
}

// ErrorMessage returns the failure cause as a string, or "" on success.
// The history store persists this form.
func (o TransferOutcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}

	return o.Err.Error()
}

// BatchSummary aggregates a batch run. Outcomes preserve input order for
// all processed items. Unprocessed counts trailing items skipped after an
// early halt; they appear in no outcome and in neither Successful nor
// Failed, so Successful+Failed+Unprocessed == Total always holds.
type BatchSummary struct {
	Total       int
	Successful  int
	Failed      int
	Unprocessed int
	Outcomes    []TransferOutcome
}
