package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/travel-journal-backend/internal/services"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

const multipartMemory = 10 << 20

// CreateJournal accepts multipart/form-data with up to MaxFiles "images"
// parts, or a plain JSON body without images.
func (h *Handlers) CreateJournal(w http.ResponseWriter, r *http.Request) {
	var (
		in    services.CreateJournalInput
		files []*multipart.FileHeader
	)

	if isMultipart(r) {
		form, ok := h.parseMultipart(w, r, h.media.MaxFiles())
		if !ok {
			return
		}
		var err error
		if in, err = journalFromForm(form); err != nil {
			h.writeError(w, r, err)
			return
		}
		files = form.File["images"]
	} else {
		if err := decodeJSON(r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}
		in.Images = nil
	}

	keys, err := h.media.Accept(r.Context(), files)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in.Images = keys

	journal, err := h.journals.Create(r.Context(), caller(r), in)
	if err != nil {
		h.media.Discard(context.WithoutCancel(r.Context()), keys)
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, journal)
}

func (h *Handlers) GetUserJournals(w http.ResponseWriter, r *http.Request) {
	journals, err := h.journals.ListMine(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journals)
}

// GetAllJournals returns the most recent public journals.
func (h *Handlers) GetAllJournals(w http.ResponseWriter, r *http.Request) {
	journals, err := h.journals.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journals)
}

func (h *Handlers) GetJournal(w http.ResponseWriter, r *http.Request) {
	journal, err := h.journals.Get(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journal)
}

func (h *Handlers) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	var upd services.JournalUpdate
	if err := decodeJSON(r, &upd); err != nil {
		h.writeError(w, r, err)
		return
	}

	journal, err := h.journals.Update(r.Context(), caller(r), chi.URLParam(r, "id"), upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journal)
}

func (h *Handlers) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	if err := h.journals.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Journal deleted successfully"})
}

func (h *Handlers) ShareJournal(w http.ResponseWriter, r *http.Request) {
	journal, err := h.journals.Share(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journal)
}

// LikeJournal toggles the caller's like.
func (h *Handlers) LikeJournal(w http.ResponseWriter, r *http.Request) {
	res, err := h.journals.ToggleLike(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) CommentJournal(w http.ResponseWriter, r *http.Request) {
	var in services.CommentInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.journals.AddComment(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// parseMultipart bounds and parses a multipart body expected to carry at most
// files uploads. On failure it has already answered the request.
func (h *Handlers) parseMultipart(w http.ResponseWriter, r *http.Request, files int) (*multipart.Form, bool) {
	if limit := h.media.MaxRequestBytes(files); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(w, "Upload exceeds the size limit")
			return nil, false
		}
		badRequest(w, "Invalid multipart form")
		return nil, false
	}
	return r.MultipartForm, true
}

// journalFromForm reads the text fields of a create request. tags and
// friendsMentioned are comma separated and may repeat.
func journalFromForm(form *multipart.Form) (services.CreateJournalInput, error) {
	first := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	csv := func(key string) []string {
		var out []string
		for _, v := range form.Value[key] {
			out = append(out, utils.SplitCSV(v)...)
		}
		return out
	}

	in := services.CreateJournalInput{
		Title:            first("title"),
		Location:         first("location"),
		Entry:            first("entry"),
		Tags:             csv("tags"),
		FriendsMentioned: csv("friendsMentioned"),
	}

	if s := strings.TrimSpace(first("rating")); s != "" {
		rating, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return in, utils.NewValidationError("rating", "rating must be a number")
		}
		in.Rating = &rating
	}
	if s := strings.TrimSpace(first("isPublic")); s != "" {
		public, err := strconv.ParseBool(s)
		if err != nil {
			return in, utils.NewValidationError("isPublic", "isPublic must be true or false")
		}
		in.IsPublic = &public
	}
	return in, nil
}
