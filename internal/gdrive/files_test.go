package gdrive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFile_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/files/file-123", r.URL.Path)
		assert.Equal(t, fileFields, r.URL.Query().Get("fields"))
		assert.Equal(t, "true", r.URL.Query().Get("supportsAllDrives"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "file-123",
			"name": "Q3 Budget.xlsx",
			"mimeType": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"owners": [
				{"emailAddress": "alice@example.com", "displayName": "Alice"},
				{"emailAddress": "bob@example.com", "displayName": "Bob"}
			]
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	file, err := client.GetFile(context.Background(), "file-123")
	require.NoError(t, err)

	assert.Equal(t, "file-123", file.ID)
	assert.Equal(t, "Q3 Budget.xlsx", file.Name)
	require.Len(t, file.Owners, 2)
	// Primary owner is position 0.
	assert.Equal(t, "alice@example.com", file.Owners[0].EmailAddress)
	assert.Equal(t, "Alice", file.Owners[0].DisplayName)
}

func TestGetFile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":404,"message":"File not found: nope","errors":[{"reason":"notFound"}]}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.GetFile(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetFile_IDEscaped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A slash in a file ID must not change the route.
		assert.NotContains(t, r.URL.Path, "/files/a/b")
		fmt.Fprint(w, `{"id":"x","name":"n","mimeType":"m","owners":[]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.GetFile(context.Background(), "a/b")
	require.NoError(t, err)
}

func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/about", r.URL.Path)
		assert.Equal(t, "user(emailAddress,displayName)", r.URL.Query().Get("fields"))

		fmt.Fprint(w, `{"user":{"emailAddress":"alice@example.com","displayName":"Alice"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.EmailAddress)
	assert.Equal(t, "Alice", user.DisplayName)
}

func TestCurrentUser_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"Invalid Credentials","errors":[{"reason":"authError"}]}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
