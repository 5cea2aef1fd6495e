package routes_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/handlers"
	"github.com/AnshRaj112/travel-journal-backend/internal/routes"
)

func TestUploadsServeFilesWithoutListing(t *testing.T) {
	dir := t.TempDir()
	name := "1700000000000-deadbeef-trip.jpg"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jpeg bytes"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	router := routes.NewRouter(handlers.New(handlers.Deps{Log: zap.NewNop()}), routes.Options{
		Log:        zap.NewNop(),
		UploadsDir: dir,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/uploads/" + name, http.StatusOK},
		{"/uploads/", http.StatusNotFound},
		{"/uploads/nested/", http.StatusNotFound},
		{"/uploads/missing.jpg", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotContains(t, string(body), name+"\"", "no directory listing")
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "jpeg bytes", string(body))
			}
		})
	}
}
