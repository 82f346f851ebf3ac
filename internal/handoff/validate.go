package handoff

import (
	"context"
	"errors"
	"fmt"

	"github.com/driveshift/driveshift/internal/gdrive"
)

// Preconditions is the advisory snapshot taken before a transfer is
// confirmed: what the file is called and who currently owns it.
type Preconditions struct {
	FileID       string
	FileName     string
	CurrentOwner string
}

// ValidatePreconditions checks a transfer's inputs without mutating
// anything: the target email parses, the file is reachable, and it has an
// owner. Drive files carry exactly one primary owner at position 0 of the
// owners list; an empty list is a data-integrity failure, not a file
// without an owner.
//
// Purely advisory — ownership can still change between this check and the
// transfer itself, which re-queries everything.
func ValidatePreconditions(ctx context.Context, svc DriveService, fileID, targetEmail string) (*Preconditions, error) {
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

	if len(file.Owners) == 0 {
		return nil, fmt.Errorf("%w: file %q", ErrNoOwner, fileID)
	}

	return &Preconditions{
		FileID:       fileID,
		FileName:     file.Name,
		CurrentOwner: file.Owners[0].EmailAddress,
	}, nil
}
