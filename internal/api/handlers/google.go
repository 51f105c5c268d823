package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sdas-dev/accountly/internal/auth"
	"github.com/sdas-dev/accountly/internal/service"
	"github.com/sdas-dev/accountly/internal/store"
)

// oauthState is the round-tripped OAuth state value: a random nonce plus the
// flow ("login" or "register") the caller started, encoded as
// base64(nonce).base64(json).
type oauthState struct {
	Flow string `json:"flow"`
}

func (s oauthState) encode() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %w", err)
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(nonce) + "." + base64.RawURLEncoding.EncodeToString(payload), nil
}

func decodeOAuthState(state string) (oauthState, error) {
	nonce, payload, ok := strings.Cut(state, ".")
	if !ok || nonce == "" {
		return oauthState{}, fmt.Errorf("invalid state format")
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return oauthState{}, fmt.Errorf("failed to decode state payload: %w", err)
	}

	var s oauthState
	if err := json.Unmarshal(raw, &s); err != nil {
		return oauthState{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return s, nil
}

// GoogleLogin starts the OAuth dance. The state nonce carries whether the
// caller is logging in or registering.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	flow := r.URL.Query().Get("redirect") // "login" or "register"
	if flow == "" {
		flow = "login"
	}

	state, err := oauthState{Flow: flow}.encode()
	if err != nil {
		http.Error(w, "Failed to generate OAuth state", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback finishes the OAuth dance: exchanges the code, fetches the
// Google profile, and either creates the account or logs it in, issuing the
// same session cookie the password flow uses.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := decodeOAuthState(r.FormValue("state"))
	if err != nil {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	flow := state.Flow

	oauthToken, err := h.oauth.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.log.WithError(err).Warn("google code exchange failed")
		http.Error(w, "Code exchange failed", http.StatusInternalServerError)
		return
	}

	client := h.oauth.Client(r.Context(), oauthToken)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(data, &googleUser); err != nil {
		http.Error(w, "Failed to parse user info", http.StatusInternalServerError)
		return
	}

	var token string
	switch flow {
	case "register":
		token, err = h.svc.ExternalRegister(r.Context(), googleUser.Name, googleUser.Email, googleUser.Picture)
		if errors.Is(err, service.ErrUserExists) {
			http.Redirect(w, r, h.frontendURL+"/login?error=user_already_exists", http.StatusTemporaryRedirect)
			return
		}
	default:
		token, err = h.svc.ExternalLogin(r.Context(), googleUser.Email)
		if errors.Is(err, store.ErrUserNotFound) {
			http.Redirect(w, r, h.frontendURL+"/register?error=user_not_found", http.StatusTemporaryRedirect)
			return
		}
	}
	if err != nil {
		h.log.WithError(err).Warn("google sign-in failed")
		http.Error(w, "Sign-in failed", http.StatusInternalServerError)
		return
	}

	auth.SetSessionCookie(w, token)

	redirectURL := h.frontendURL + "/?status=success_login"
	if flow == "register" {
		redirectURL = h.frontendURL + "/?status=success_register"
	}
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}
