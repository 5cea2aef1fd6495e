package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/services"
)

// ProfilePhotoResponse is returned after replacing the profile photo.
type ProfilePhotoResponse struct {
	Message string                `json:"message"`
	User    *models.PublicProfile `json:"user"`
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.social.Profile(caller(r)))
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd services.ProfileUpdate
	if err := decodeJSON(r, &upd); err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.social.UpdateProfile(r.Context(), caller(r), upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfilePhoto stores the "profileImage" upload and points the profile at it.
func (h *Handlers) UpdateProfilePhoto(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		badRequest(w, "No file uploaded")
		return
	}
	form, ok := h.parseMultipart(w, r, 1)
	if !ok {
		return
	}

	var file *multipart.FileHeader
	if files := form.File["profileImage"]; len(files) > 0 {
		file = files[0]
	}
	key, err := h.media.AcceptOne(r.Context(), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.social.UpdateProfilePhoto(r.Context(), caller(r), key)
	if err != nil {
		h.media.Discard(context.WithoutCancel(r.Context()), []string{key})
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfilePhotoResponse{
		Message: "Profile photo updated successfully",
		User:    profile,
	})
}

// GetFollowing lists the users the caller follows with their counts.
func (h *Handlers) GetFollowing(w http.ResponseWriter, r *http.Request) {
	following, err := h.social.Following(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, following)
}

func (h *Handlers) FollowUser(w http.ResponseWriter, r *http.Request) {
	if err := h.social.Follow(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Successfully followed user"})
}

func (h *Handlers) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	if err := h.social.Unfollow(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Successfully unfollowed user"})
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.social.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
