package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/driveshift/driveshift/internal/gdrive"
)

// Disposition messages for successful transfers.
const (
	msgTransferred  = "ownership transferred"
	msgAlreadyOwner = "already owner"
)

// Result is the success payload of a single transfer.
type Result struct {
	FileName string
	NewOwner string
	Message  string
}

// Options control a single transfer.
type Options struct {
	// Notify makes Drive email the target when the bootstrap writer grant
	// is created.
	Notify bool
}

// Transfer moves ownership of one file to targetEmail using the two-step
// grant-then-promote sequence:
//
//  1. Fetch the file and its permission set.
//  2. If the target already owns the file, return success immediately —
//     the operation is idempotent.
//  3. If the target holds no permission at all, grant writer first; Drive
//     requires a principal to hold write access before promotion to owner.
//  4. Promote the target's permission to owner with transferOwnership set.
//
// Transfer never retries internally and mutates no local state. A failure
// between the writer grant and the promotion leaves the target as writer;
// re-running the transfer resumes from that state.
func Transfer(ctx context.Context, svc DriveService, fileID, targetEmail string, opts Options, logger *slog.Logger) (*Result, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: empty file id", ErrInvalidInput)
	}

	if !ValidEmail(targetEmail) {
		return nil, fmt.Errorf("%w: target email %q", ErrInvalidInput, targetEmail)
	}

	file, err := svc.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, gdrive.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q: %w", ErrNotFound, fileID, err)
		}

		return nil, fmt.Errorf("fetching file %q: %w", fileID, err)
	}

	perms, err := svc.ListPermissions(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: file %q: %w", ErrPermissionLookup, fileID, err)
	}

	existing := findByEmail(perms, targetEmail)

	// Idempotence short-circuit: nothing to do, no write calls issued.
	if existing != nil && existing.IsOwner() {
		logger.Info("target already owns file",
			slog.String("file_id", fileID),
			slog.String("target", targetEmail),
		)

		return &Result{FileName: file.Name, NewOwner: targetEmail, Message: msgAlreadyOwner}, nil
	}

	if existing == nil {
		created, createErr := svc.CreatePermission(ctx, fileID, targetEmail, gdrive.RoleWriter, opts.Notify)
		if createErr != nil {
			return nil, fmt.Errorf("%w: granting writer on %q: %w", ErrPromotionFailed, fileID, createErr)
		}

		logger.Info("granted writer permission",
			slog.String("file_id", fileID),
			slog.String("target", targetEmail),
			slog.String("permission_id", created.ID),
		)

		existing = created
	}

	// The create response normally carries the permission ID. If it does
	// not, re-list and locate; a miss there means a concurrent change or
	// API inconsistency.
	if existing.ID == "" {
		existing, err = relocate(ctx, svc, fileID, targetEmail)
		if err != nil {
			return nil, err
		}
	}

	if err := svc.UpdatePermission(ctx, fileID, existing.ID, gdrive.RoleOwner, true); err != nil {
		return nil, fmt.Errorf("%w: promoting %s on %q: %w", ErrPromotionFailed, targetEmail, fileID, err)
	}

	logger.Info("ownership transferred",
		slog.String("file_id", fileID),
		slog.String("file_name", file.Name),
		slog.String("new_owner", targetEmail),
	)

	return &Result{FileName: file.Name, NewOwner: targetEmail, Message: msgTransferred}, nil
}

// relocate re-reads the permission set to find the target's entry after a
// create response came back without an ID.
func relocate(ctx context.Context, svc DriveService, fileID, targetEmail string) (*gdrive.Permission, error) {
	perms, err := svc.ListPermissions(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: re-reading permissions on %q: %w", ErrPermissionLookup, fileID, err)
	}

	perm := findByEmail(perms, targetEmail)
	if perm == nil || perm.ID == "" {
		return nil, fmt.Errorf("%w: permission for %s on %q not found after creation", ErrPromotionFailed, targetEmail, fileID)
	}

	return perm, nil
}

// findByEmail returns the permission granted to email, or nil. Drive
// reports emails in their canonical casing, so the match is case-insensitive.
func findByEmail(perms []gdrive.Permission, email string) *gdrive.Permission {
	for i := range perms {
		if strings.EqualFold(perms[i].EmailAddress, email) {
			return &perms[i]
		}
	}

	return nil
}
