package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveshift/driveshift/internal/gdrive"
)

// fakeDrive is an in-memory DriveService that records every call.
type fakeDrive struct {
	files map[string]*gdrive.File
	perms map[string][]gdrive.Permission

	// calls records each operation as "op:fileID" (plus details for writes).
	calls []string

	getErr    error
	listErr   error
	createErr error
	updateErr error

	// nextPermID is assigned to created permissions. Empty simulates a
	// create response that came back without an ID.
	nextPermID string

	// dropCreated discards created permissions instead of storing them,
	// simulating the race where a grant vanishes before promotion.
	dropCreated bool
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		files:      make(map[string]*gdrive.File),
		perms:      make(map[string][]gdrive.Permission),
		nextPermID: "perm-new",
	}
}

// addFile registers a file owned by ownerEmail with an owner permission.
func (f *fakeDrive) addFile(id, name, ownerEmail string) {
	f.files[id] = &gdrive.File{
		ID:     id,
		Name:   name,
		Owners: []gdrive.Principal{{EmailAddress: ownerEmail, DisplayName: "Owner"}},
	}
	f.perms[id] = []gdrive.Permission{
		{ID: "perm-owner", Role: gdrive.RoleOwner, Type: gdrive.PermissionTypeUser, EmailAddress: ownerEmail},
	}
}

func (f *fakeDrive) GetFile(_ context.Context, fileID string) (*gdrive.File, error) {
	f.calls = append(f.calls, "get:"+fileID)

	if f.getErr != nil {
		return nil, f.getErr
	}

	file, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("gdrive: HTTP 404: File not found: %w", gdrive.ErrNotFound)
	}

	return file, nil
}

func (f *fakeDrive) ListPermissions(_ context.Context, fileID string) ([]gdrive.Permission, error) {
	f.calls = append(f.calls, "list:"+fileID)

	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.perms[fileID], nil
}

func (f *fakeDrive) CreatePermission(_ context.Context, fileID, email, role string, _ bool) (*gdrive.Permission, error) {
	f.calls = append(f.calls, fmt.Sprintf("create:%s:%s:%s", fileID, email, role))

	if f.createErr != nil {
		return nil, f.createErr
	}

	perm := gdrive.Permission{ID: f.nextPermID, Role: role, Type: gdrive.PermissionTypeUser, EmailAddress: email}
	if !f.dropCreated {
		f.perms[fileID] = append(f.perms[fileID], gdrive.Permission{ID: "perm-created", Role: role, Type: gdrive.PermissionTypeUser, EmailAddress: email})
	}

	return &perm, nil
}

func (f *fakeDrive) UpdatePermission(_ context.Context, fileID, permissionID, role string, transferOwnership bool) error {
	f.calls = append(f.calls, fmt.Sprintf("update:%s:%s:%s:%t", fileID, permissionID, role, transferOwnership))

	if f.updateErr != nil {
		return f.updateErr
	}

	perms := f.perms[fileID]
	for i := range perms {
		if perms[i].ID == permissionID {
			perms[i].Role = role
		}
	}

	return nil
}

// writeCalls counts create/update operations.
func (f *fakeDrive) writeCalls() int {
	n := 0

	for _, c := range f.calls {
		if c[0] == 'c' || c[0] == 'u' {
			n++
		}
	}

	return n
}

func TestTransfer_GrantThenPromote(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")

	result, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", result.FileName)
	assert.Equal(t, "b@x.com", result.NewOwner)
	assert.Equal(t, msgTransferred, result.Message)

	// Exactly one writer grant followed by one promotion.
	assert.Equal(t, []string{
		"get:F1",
		"list:F1",
		"create:F1:b@x.com:writer",
		"update:F1:perm-new:owner:true",
	}, drive.calls)
}

func TestTransfer_AlreadyOwner(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")
	drive.perms["F1"] = append(drive.perms["F1"], gdrive.Permission{
		ID: "perm-b", Role: gdrive.RoleOwner, Type: gdrive.PermissionTypeUser, EmailAddress: "b@x.com",
	})

	result, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, msgAlreadyOwner, result.Message)
	// Idempotence short-circuit: zero write calls.
	assert.Zero(t, drive.writeCalls())
}

func TestTransfer_Idempotent(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")

	_, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.NoError(t, err)

	writesAfterFirst := drive.writeCalls()

	result, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, msgAlreadyOwner, result.Message)
	// The second call issued no further writes.
	assert.Equal(t, writesAfterFirst, drive.writeCalls())
}

func TestTransfer_ExistingWriterSkipsGrant(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")
	drive.perms["F1"] = append(drive.perms["F1"], gdrive.Permission{
		ID: "perm-b", Role: gdrive.RoleWriter, Type: gdrive.PermissionTypeUser, EmailAddress: "b@x.com",
	})

	_, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"get:F1",
		"list:F1",
		"update:F1:perm-b:owner:true",
	}, drive.calls)
}

func TestTransfer_CaseInsensitiveEmailMatch(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")
	drive.perms["F1"] = append(drive.perms["F1"], gdrive.Permission{
		ID: "perm-b", Role: gdrive.RoleWriter, Type: gdrive.PermissionTypeUser, EmailAddress: "B@X.com",
	})

	_, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.NoError(t, err)

	// Matched the existing grant despite the casing difference — no create.
	assert.Equal(t, 1, drive.writeCalls())
}

func TestTransfer_InvalidEmailBeforeAnyAPICall(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")

	_, err := Transfer(context.Background(), drive, "F1", "not-an-email", Options{}, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, drive.calls)
}

func TestTransfer_EmptyFileID(t *testing.T) {
	drive := newFakeDrive()

	_, err := Transfer(context.Background(), drive, "", "b@x.com", Options{}, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, drive.calls)
}

func TestTransfer_NotFound(t *testing.T) {
	drive := newFakeDrive()

	_, err := Transfer(context.Background(), drive, "missing", "b@x.com", Options{}, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	// Underlying cause preserved through the wrap.
	assert.ErrorIs(t, err, gdrive.ErrNotFound)
}

func TestTransfer_PermissionLookupFailure(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")
	drive.listErr = errors.New("boom")

	_, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermissionLookup)
	assert.Contains(t, err.Error(), "boom")
}

func TestTransfer_GrantFails(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")
	drive.createErr = errors.New("quota exceeded")

	_, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPromotionFailed)
}

func TestTransfer_PromotionFails(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")
	drive.updateErr = errors.New("consent required")

	_, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPromotionFailed)
	assert.Contains(t, err.Error(), "consent required")
}

func TestTransfer_RelocateAfterIDlessCreate(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")
	drive.nextPermID = ""

	_, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.NoError(t, err)

	// The fake stores the created grant as "perm-created"; the protocol
	// had to re-list to find it.
	assert.Contains(t, drive.calls, "update:F1:perm-created:owner:true")
}

func TestTransfer_RelocateMiss(t *testing.T) {
	drive := newFakeDrive()
	drive.addFile("F1", "report.pdf", "a@x.com")
	drive.nextPermID = ""
	drive.dropCreated = true

	_, err := Transfer(context.Background(), drive, "F1", "b@x.com", Options{}, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPromotionFailed)
	assert.Contains(t, err.Error(), "not found after creation")
}

func TestValidEmail(t *testing.T) {
	valid := []string{
		"a@x.com",
		"first.last@sub.example.org",
		"user+tag@example.co",
	}
	for _, s := range valid {
		assert.True(t, ValidEmail(s), s)
	}

	invalid := []string{
		"",
		"not-an-email",
		"@x.com",
		"a@",
		"a@nodot",
		"a@.com",
		"a b@x.com",
		"a@@x.com",
	}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), s)
	}
}
