// Package handlers contains the HTTP layer of the account service. Handlers
// decode the request, call the service, and map service errors to the wire
// contract.
package handlers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sdas-dev/accountly/internal/config"
	"github.com/sdas-dev/accountly/internal/service"
)

// BlobStore is what the avatar handlers need from the object store.
type BlobStore interface {
	PresignPut(ctx context.Context, key string, expires time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	PublicURL(key string) string
}

type Handler struct {
	svc         *service.AccountService
	blob        BlobStore
	oauth       *oauth2.Config
	frontendURL string
	log         logrus.FieldLogger
}

func New(svc *service.AccountService, blobStore BlobStore, cfg config.Config, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		svc:  svc,
		blob: blobStore,
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		frontendURL: cfg.FrontendURL,
		log:         log,
	}
}
