package testutil

import (
	"bytes"
	"context"
	"mime"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
)

// Minimal payloads recognised by content sniffing.
var (
	PNG  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	JPEG = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)
	GIF  = append([]byte("GIF89a"), make([]byte, 32)...)
	Text = []byte("just some plain text, definitely not an image")
)

// File is one part of a multipart upload.
type File struct {
	Field    string
	Name     string
	Contents []byte
}

// MultipartBody encodes fields and files as multipart/form-data and returns
// the body with its content type.
func MultipartBody(t testing.TB, fields map[string]string, files ...File) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		require.NoError(t, err)
		_, err = part.Write(f.Contents)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// FileHeaders round-trips files through a multipart reader so tests get real
// *multipart.FileHeader values.
func FileHeaders(t testing.TB, files ...File) []*multipart.FileHeader {
	t.Helper()
	body, ct := MultipartBody(t, nil, files...)
	_, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)

	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	var out []*multipart.FileHeader
	for _, f := range files {
		for _, fh := range form.File[f.Field] {
			if fh.Filename == f.Name && !containsHeader(out, fh) {
				out = append(out, fh)
				break
			}
		}
	}
	require.Len(t, out, len(files))
	return out
}

func containsHeader(list []*multipart.FileHeader, fh *multipart.FileHeader) bool {
	for _, h := range list {
		if h == fh {
			return true
		}
	}
	return false
}

// SeedUser stores a user directly and returns it.
func SeedUser(t testing.TB, store *UserStore, firstName, email string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		FirstName: firstName,
		Email:     email,
		Bio:       models.DefaultBio,
		Following: []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
	}
	require.NoError(t, store.Create(context.Background(), u))
	return u
}

// Reload fetches the current state of u from store.
func Reload(t testing.TB, store *UserStore, u *models.User) *models.User {
	t.Helper()
	fresh, err := store.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	return fresh
}
