package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sdas-dev/accountly/internal/auth"
	"github.com/sdas-dev/accountly/internal/httputil"
	"github.com/sdas-dev/accountly/internal/service"
	"github.com/sdas-dev/accountly/internal/store"
)

// Register godoc
// @Summary Register a new account
// @Description Creates a user with a hashed password. Fails if the email is taken.
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} httputil.Payload
// @Failure 400 {object} httputil.Payload
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserName string `json:"userName"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Photo    string `json:"photo"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if input.UserName == "" || input.Email == "" || input.Password == "" {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	saved, err := h.svc.Register(r.Context(), service.RegisterInput{
		UserName: input.UserName,
		Email:    input.Email,
		Password: input.Password,
		Photo:    input.Photo,
	})
	switch {
	case err == nil:
		httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
			Success: true,
			Message: "User created successfully",
			Data:    saved,
		})
	case errors.Is(err, service.ErrUserExists):
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "User already exists",
		})
	default:
		httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
			Success: false,
			Message: err.Error(),
		})
	}
}

// Login godoc
// @Summary Log in with email and password
// @Description Verifies credentials and sets the session token cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} httputil.Payload
// @Failure 401 {object} httputil.Payload
// @Failure 404 {object} httputil.Payload
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if input.Email == "" || input.Password == "" {
		httputil.JSONResponse(w, http.StatusBadRequest, httputil.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	token, view, err := h.svc.Login(r.Context(), input.Email, input.Password)
	switch {
	case err == nil:
		auth.SetSessionCookie(w, token)
		httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
			Success: true,
			Message: "Login successfully",
			Token:   token,
			Data:    view,
		})
	case errors.Is(err, store.ErrUserNotFound):
		httputil.JSONResponse(w, http.StatusNotFound, httputil.Payload{
			Success: false,
			Message: "User not found",
		})
	case errors.Is(err, service.ErrBadCredentials):
		httputil.JSONResponse(w, http.StatusUnauthorized, httputil.Payload{
			Success: false,
			Message: "Incorrect password",
		})
	default:
		httputil.JSONResponse(w, http.StatusInternalServerError, httputil.Payload{
			Success: false,
			Message: err.Error(),
		})
	}
}

// Profile returns the authenticated caller's view, password hash and internal
// identifiers stripped. The 400 for a missing record is the service's
// long-standing contract.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.JSONResponse(w, http.StatusUnauthorized, httputil.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	view, err := h.svc.Profile(r.Context(), identity.UserID)
	switch {
	case err == nil:
		httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
			Success: true,
			Message: "Profile fetched successfully",
			Data:    view,
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

// Logout clears the session cookie. The token itself is not revoked
// server-side.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	httputil.JSONResponse(w, http.StatusOK, httputil.Payload{
		Success: true,
		Message: "Logout successfully",
	})
}
