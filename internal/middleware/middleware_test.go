package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

type stubResolver map[string]*models.User

func (s stubResolver) Resolve(_ context.Context, token string) (*models.User, error) {
	if token == "boom" {
		return nil, errors.New("db down")
	}
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, &utils.AuthError{Message: "Please authenticate"}
}

func TestRequireAuth(t *testing.T) {
	ana := &models.User{FirstName: "Ana"}
	resolver := stubResolver{"good": ana}

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(s.User.FirstName + ":" + s.Token))
	})

	tests := []struct {
		name       string
		header     string
		query      string
		allowQuery bool
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", "", false, http.StatusUnauthorized, `{"error":"No authorization header"}`},
		{"not bearer", "Basic abc", "", false, http.StatusUnauthorized, `{"error":"No authorization header"}`},
		{"unknown token", "Bearer nope", "", false, http.StatusUnauthorized, `{"error":"Please authenticate"}`},
		{"resolver failure", "Bearer boom", "", false, http.StatusUnauthorized, `{"error":"Please authenticate"}`},
		{"valid", "Bearer good", "", false, http.StatusOK, "Ana:good"},
		{"case insensitive scheme", "bearer good", "", false, http.StatusOK, "Ana:good"},
		{"query token ignored", "", "good", false, http.StatusUnauthorized, `{"error":"No authorization header"}`},
		{"query token allowed", "", "good", true, http.StatusOK, "Ana:good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireAuth(resolver, zap.NewNop(), tt.allowQuery)(echo)
			target := "/"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestSessionFromContextEmpty(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/journals", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/journals", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	SecurityHeaders(false)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	SecurityHeaders(true)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/journals/x", nil)
	req.RemoteAddr = "203.0.113.7:5123"
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), ctx["status"])
	assert.Equal(t, "/api/journals/x", ctx["path"])
	assert.Equal(t, "203.0.113.7", ctx["ip"])
}
