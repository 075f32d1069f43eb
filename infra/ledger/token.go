package ledger

import (
	"context"
	"net/http"
	"strings"

	"github.com/radhian/ledger-reconciler/consts"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenConfig selects between a static bearer token and the client-credentials flow.
type TokenConfig struct {
	StaticToken  string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

// NewTokenSource returns the token source shared by every cycle scope.
// Client-credentials tokens are cached until TokenExpirySkew before they expire.
func NewTokenSource(cfg TokenConfig, httpClient *http.Client) oauth2.TokenSource {
	if cfg.TokenURL == "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.StaticToken, TokenType: "Bearer"})
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: consts.DefaultSourceTimeout}
	}

	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       strings.Fields(cfg.Scope),
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	// credentials.Token fetches on every call; the reuse wrapper owns caching.
	fetch := tokenSourceFunc(func() (*oauth2.Token, error) {
		return credentials.Token(ctx)
	})
	return oauth2.ReuseTokenSourceWithExpiry(nil, fetch, consts.TokenExpirySkew)
}
