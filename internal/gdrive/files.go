package gdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// principalResponse mirrors a user object in Drive API JSON.
type principalResponse struct {
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

func (p *principalResponse) toPrincipal() Principal {
	return Principal{
		EmailAddress: p.EmailAddress,
		DisplayName:  p.DisplayName,
	}
}

// fileResponse mirrors the Drive API files.get JSON response.
// Unexported — callers use File via toFile() normalization.
type fileResponse struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	MimeType string              `json:"mimeType"`
	Owners   []principalResponse `json:"owners"`
}

func (f *fileResponse) toFile() File {
	file := File{
		ID:       f.ID,
		Name:     f.Name,
		MimeType: f.MimeType,
		Owners:   make([]Principal, 0, len(f.Owners)),
	}

	for i := range f.Owners {
		file.Owners = append(file.Owners, f.Owners[i].toPrincipal())
	}

	return file
}

// fileFields limits files.get responses to what driveshift reads. The Drive
// API returns almost nothing without an explicit fields selector.
const fileFields = "id,name,mimeType,owners(emailAddress,displayName)"

// GetFile fetches a metadata snapshot of one file.
// Inaccessible files surface as ErrNotFound or ErrForbidden.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	c.logger.Debug("fetching file metadata",
		slog.String("file_id", fileID),
	)

	q := url.Values{}
	q.Set("fields", fileFields)
	q.Set("supportsAllDrives", "true")

	path := fmt.Sprintf("/files/%s?%s", url.PathEscape(fileID), q.Encode())

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var fr fileResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("gdrive: decoding file response: %w", err)
	}

	file := fr.toFile()

	c.logger.Debug("fetched file metadata",
		slog.String("file_id", file.ID),
		slog.String("name", file.Name),
		slog.Int("owners", len(file.Owners)),
	)

	return &file, nil
}

// aboutResponse mirrors the Drive API about.get JSON response.
type aboutResponse struct {
	User principalResponse `json:"user"`
}

// CurrentUser returns the principal the client is authenticated as.
func (c *Client) CurrentUser(ctx context.Context) (*Principal, error) {
	c.logger.Debug("fetching authenticated user")

	resp, err := c.Do(ctx, http.MethodGet, "/about?fields=user(emailAddress,displayName)", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ar aboutResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("gdrive: decoding about response: %w", err)
	}

	user := ar.User.toPrincipal()

	c.logger.Debug("fetched authenticated user",
		slog.String("email", user.EmailAddress),
	)

	return &user, nil
}
