package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sdas-dev/accountly/internal/auth"
	"github.com/sdas-dev/accountly/internal/httputil"
	"github.com/sdas-dev/accountly/internal/store"
)

const presignTTL = 15 * time.Minute

// PresignAvatarUpload godoc
// @Summary Request an avatar upload URL
// @Description Returns a presigned PUT URL and the object key to upload the caller's avatar to.
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} httputil.Payload
// @Failure 400 {object} httputil.Payload
// @Router /api/v1/users/avatar/presign [post]
func (h *Handler) PresignAvatarUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.JSONResponse(w, http.StatusUnauthorized, httputil.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	var input struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	// The key is namespaced per user so complete() can verify ownership.
	key := "avatars/" + identity.UserID + "/" + uuid.NewString() + filepath.Ext(input.FileName)

	uploadURL, err := h.blob.PresignPut(r.Context(), key, presignTTL)
	if err != nil {
		httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
			Success: false,
			Message: "Failed to presign upload",
		})
		return
	}

	httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
		Success: true,
		Message: "Upload URL created",
		Data: map[string]string{
			"uploadUrl": uploadURL,
			"key":       key,
		},
	})
}

// CompleteAvatarUpload verifies the uploaded object exists and stores its
// location in the user's photo field.
func (h *Handler) CompleteAvatarUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.JSONResponse(w, http.StatusUnauthorized, httputil.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	var input struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Key == "" {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if !strings.HasPrefix(input.Key, "avatars/"+identity.UserID+"/") {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Key does not belong to this user",
		})
		return
	}

	exists, err := h.blob.ObjectExists(r.Context(), input.Key)
	if err != nil {
		httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
			Success: false,
			Message: "Failed to verify upload",
		})
		return
	}
	if !exists {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Uploaded object not found",
		})
		return
	}

	user, err := h.svc.SetPhoto(r.Context(), identity.UserID, h.blob.PublicURL(input.Key))
	switch {
	case err == nil:
		httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
			Success: true,
			Message: "Avatar updated successfully",
			Data:    user.View(),
		})
	case errors.Is(err, store.ErrUserNotFound):
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "User not found",
		})
	default:
		httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
			Success: false,
			Message: err.Error(),
		})
	}
}

// GetAvatar returns the caller's avatar location, presigning a download URL
// when the bucket is private.
func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.JSONResponse(w, http.StatusUnauthorized, httputil.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	photo, err := h.svc.Photo(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
				Success: false,
				Message: "User not found",
			})
			return
		}
		httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	if photo == "" {
		httputil.JSONResponse(w, http.StatusNotFound, httputil.Payload{
			Success: false,
			Message: "No avatar set",
		})
		return
	}

	// A bare object key means the bucket is private; hand out a short-lived
	// download URL instead.
	url := photo
	if !strings.HasPrefix(photo, "http://") && !strings.HasPrefix(photo, "https://") {
		url, err = h.blob.PresignGet(r.Context(), photo, presignTTL)
		if err != nil {
			httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
				Success: false,
				Message: "Failed to presign download",
			})
			return
		}
	}

	httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
		Success: true,
		Message: "Avatar fetched successfully",
		Data:    map[string]string{"url": url},
	})
}
