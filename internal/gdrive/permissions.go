package gdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// permissionResponse mirrors a permission object in Drive API JSON.
type permissionResponse struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	Type         string `json:"type"`
	EmailAddress string `json:"emailAddress"`
}

func (p *permissionResponse) toPermission() Permission {
	return Permission{
		ID:           p.ID,
		Role:         p.Role,
		Type:         p.Type,
		EmailAddress: p.EmailAddress,
	}
}

// permissionListResponse wraps one page of permissions.list results.
type permissionListResponse struct {
	NextPageToken string               `json:"nextPageToken"`
	Permissions   []permissionResponse `json:"permissions"`
}

// permissionFields limits list responses to what driveshift reads.
const permissionFields = "nextPageToken,permissions(id,role,type,emailAddress)"

// permissionPageSize is the page size for permissions.list. Files in this
// tool's scope rarely exceed a handful of grants, but shared files can.
const permissionPageSize = 100

// ListPermissions returns every permission on a file, following pagination.
func (c *Client) ListPermissions(ctx context.Context, fileID string) ([]Permission, error) {
	c.logger.Debug("listing permissions",
		slog.String("file_id", fileID),
	)

	var perms []Permission

	pageToken := ""
	for {
		q := url.Values{}
		q.Set("fields", permissionFields)
		q.Set("pageSize", strconv.Itoa(permissionPageSize))
		q.Set("supportsAllDrives", "true")

		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		path := fmt.Sprintf("/files/%s/permissions?%s", url.PathEscape(fileID), q.Encode())

		resp, err := c.Do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var plr permissionListResponse
		decErr := json.NewDecoder(resp.Body).Decode(&plr)
		resp.Body.Close()

		if decErr != nil {
			return nil, fmt.Errorf("gdrive: decoding permission list: %w", decErr)
		}

		for i := range plr.Permissions {
			perms = append(perms, plr.Permissions[i].toPermission())
		}

		if plr.NextPageToken == "" {
			break
		}

		pageToken = plr.NextPageToken
	}

	c.logger.Debug("listed permissions",
		slog.String("file_id", fileID),
		slog.Int("count", len(perms)),
	)

	return perms, nil
}

// createPermissionRequest is the body for permissions.create.
type createPermissionRequest struct {
	Role         string `json:"role"`
	Type         string `json:"type"`
	EmailAddress string `json:"emailAddress"`
}

// CreatePermission grants role to the given email on a file. notify controls
// whether Drive sends the grantee a notification email.
func (c *Client) CreatePermission(ctx context.Context, fileID, email, role string, notify bool) (*Permission, error) {
	c.logger.Info("creating permission",
		slog.String("file_id", fileID),
		slog.String("email", email),
		slog.String("role", role),
	)

	body, err := json.Marshal(createPermissionRequest{
		Role:         role,
		Type:         PermissionTypeUser,
		EmailAddress: email,
	})
	if err != nil {
		return nil, fmt.Errorf("gdrive: encoding permission request: %w", err)
	}

	q := url.Values{}
	q.Set("sendNotificationEmail", strconv.FormatBool(notify))
	q.Set("supportsAllDrives", "true")
	q.Set("fields", "id,role,type,emailAddress")

	path := fmt.Sprintf("/files/%s/permissions?%s", url.PathEscape(fileID), q.Encode())

	resp, err := c.Do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var pr permissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("gdrive: decoding permission response: %w", err)
	}

	perm := pr.toPermission()

	return &perm, nil
}

// updatePermissionRequest is the body for permissions.update.
type updatePermissionRequest struct {
	Role string `json:"role"`
}

// UpdatePermission changes an existing permission's role. Promotion to owner
// requires transferOwnership=true — Drive rejects a bare role change to
// owner without the flag.
func (c *Client) UpdatePermission(ctx context.Context, fileID, permissionID, role string, transferOwnership bool) error {
	c.logger.Info("updating permission",
		slog.String("file_id", fileID),
		slog.String("permission_id", permissionID),
		slog.String("role", role),
		slog.Bool("transfer_ownership", transferOwnership),
	)

	body, err := json.Marshal(updatePermissionRequest{Role: role})
	if err != nil {
		return fmt.Errorf("gdrive: encoding permission update: %w", err)
	}

	q := url.Values{}
	q.Set("transferOwnership", strconv.FormatBool(transferOwnership))
	q.Set("supportsAllDrives", "true")

	path := fmt.Sprintf("/files/%s/permissions/%s?%s",
		url.PathEscape(fileID), url.PathEscape(permissionID), q.Encode())

	resp, err := c.Do(ctx, http.MethodPatch, path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp.Body.Close()

	return nil
}

// DeletePermission revokes a permission from a file.
func (c *Client) DeletePermission(ctx context.Context, fileID, permissionID string) error {
	c.logger.Info("deleting permission",
		slog.String("file_id", fileID),
		slog.String("permission_id", permissionID),
	)

	path := fmt.Sprintf("/files/%s/permissions/%s?supportsAllDrives=true",
		url.PathEscape(fileID), url.PathEscape(permissionID))

	resp, err := c.Do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	resp.Body.Close()

	return nil
}
