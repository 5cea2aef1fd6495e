package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/middleware"
	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse acknowledges actions without a resource to return.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes. Unclassified errors are
// logged and their details hidden in production.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *utils.ValidationError
		authErr       *utils.AuthError
		notFoundErr   *utils.NotFoundError
		conflictErr   *utils.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Message})
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: authErr.Message})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: capitalize(notFoundErr.Error())})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: conflictErr.Message})
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		resp := ErrorResponse{Error: "Internal server error"}
		if !h.production {
			resp.Details = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return &utils.ValidationError{Message: "Invalid request body"}
	}
	return nil
}

// caller returns the authenticated user. Routes using it sit behind
// middleware.RequireAuth, so a missing session is a wiring bug.
func caller(r *http.Request) *models.User {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		panic("handlers: route registered without RequireAuth")
	}
	return s.User
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}
