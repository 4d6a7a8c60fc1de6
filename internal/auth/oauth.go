package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthProvider enveloppe une config oauth2 pour le flux mobile
// (l'app échange le code d'autorisation directement contre l'API).
type OAuthProvider struct {
	Name   string
	Config *oauth2.Config
}

func (p *OAuthProvider) GetAuthURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.Config.Exchange(ctx, code)
}
