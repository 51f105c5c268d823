package api

import (
	"fmt"
	"net/http"

	_ "github.com/sdas-dev/accountly/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/sdas-dev/accountly/internal/api/handlers"
	"github.com/sdas-dev/accountly/internal/api/middleware"
	"github.com/sdas-dev/accountly/internal/auth"
)

func SetupRouter(h *handlers.Handler, verifier auth.TokenVerifier, corsOpts cors.Options) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(corsOpts)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("POST /register", h.Register)
	authMux.HandleFunc("POST /login", h.Login)
	authMux.HandleFunc("GET /google/login", h.GoogleLogin)
	authMux.HandleFunc("GET /google/callback", h.GoogleCallback)

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// ---------- PROTECTED ROUTES ----------
	// Logout lives under /api/v1/auth/, which the public auth mount shadows,
	// so it is registered on the main mux with its own middleware wrap.
	mainMux.Handle("POST /api/v1/auth/logout",
		auth.Middleware(verifier)(http.HandlerFunc(h.Logout)),
	)

	protectedMux := http.NewServeMux()

	protectedMux.HandleFunc("GET /users/profile", h.Profile)

	protectedMux.HandleFunc("POST /users/avatar/presign", h.PresignAvatarUpload)
	protectedMux.HandleFunc("POST /users/avatar/complete", h.CompleteAvatarUpload)
	protectedMux.HandleFunc("GET /users/avatar", h.GetAvatar)

	protectedMux.HandleFunc("PUT /users/updateUserById/{id}", h.UpdateUserByID)
	protectedMux.HandleFunc("DELETE /users/deleteUserById/{id}", h.DeleteUserByID)
	protectedMux.HandleFunc("GET /admin/users", h.ListUsers)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			auth.Middleware(verifier)(protectedMux),
		),
	)

	logrus.Info("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
