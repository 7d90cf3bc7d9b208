// Package francetravail is a thin client for the France Travail
// (ex Pole Emploi) job offers API v2.
package francetravail

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL   = "https://api.francetravail.io/partenaire/offresdemploi/v2"
	tokenURL = "https://entreprise.francetravail.fr/connexion/oauth2/access_token?realm=%2Fpartenaire"
	scope    = "api_offresdemploiv2 o2dsoffre"

	// Max offers per page allowed by the API.
	maxPerPage = 150
)

type Client struct {
	clientID     string
	clientSecret string
	logger       *zap.Logger

	HTTPClient *http.Client
	APIURL     string
	TokenURL   string

	// tokenMu guards the cached token; searches may run concurrently.
	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

func New(logger *zap.Logger, clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		APIURL:       apiURL,
		TokenURL:     tokenURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}
