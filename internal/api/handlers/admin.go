package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sdas-dev/accountly/internal/httputil"
	"github.com/sdas-dev/accountly/internal/store"
)

// UpdateUserByID godoc
// @Summary Update a user record
// @Description Merges the supplied fields onto the identified user and returns the updated record.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} httputil.Payload
// @Failure 404 {object} httputil.Payload
// @Router /api/v1/users/updateUserById/{id} [put]
func (h *Handler) UpdateUserByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	user, err := h.svc.UpdateUserByID(r.Context(), id, patch)
	switch {
	case err == nil:
		httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
			Success: true,
			Message: "User details updated successfully",
			Data:    user,
		})
	case errors.Is(err, store.ErrUserNotFound):
		httputil.JSONResponse(w, http.StatusNotFound, httputil.Payload{
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

// DeleteUserByID removes the identified user. A missing record answers 400,
// matching the rest of the service's observed contract.
func (h *Handler) DeleteUserByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.svc.DeleteUserByID(r.Context(), id)
	switch {
	case err == nil:
		httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
			Success: true,
			Message: "User successfully deleted",
		})
	case errors.Is(err, store.ErrUserNotFound):
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "User not found to delete",
		})
	default:
		httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
			Success: false,
			Message: err.Error(),
		})
	}
}

// ListUsers godoc
// @Summary List user accounts
// @Description Returns a paginated listing of user views.
// @Tags Admin
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} httputil.Payload
// @Router /api/v1/admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.svc.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
		Success: true,
		Message: "Users fetched successfully",
		Data:    result,
	})
}
