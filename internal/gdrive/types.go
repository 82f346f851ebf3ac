package gdrive

// Permission roles used by driveshift. The Drive API defines more
// (organizer, fileOrganizer, commenter) — they pass through untouched.
const (
	RoleOwner  = "owner"
	RoleWriter = "writer"
	RoleReader = "reader"
)

// PermissionTypeUser is the Drive permission type for a single account.
const PermissionTypeUser = "user"

// Principal identifies an account participating in ownership or permission
// relations.
type Principal struct {
	EmailAddress string
	DisplayName  string
}

// File is a metadata snapshot of a Drive file. Fetched fresh per operation
// and never cached — ownership can change externally between calls.
type File struct {
	ID       string
	Name     string
	MimeType string
	// Owners in Drive's order; the primary owner is position 0.
	Owners []Principal
}

// Permission is one grant of a role on a file to a principal.
type Permission struct {
	ID           string
	Role         string
	Type         string
	EmailAddress string
}

// IsOwner reports whether this permission carries the owner role.
func (p Permission) IsOwner() bool {
	return p.Role == RoleOwner
}
