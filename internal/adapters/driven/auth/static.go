package auth

import "context"

// staticProvider returns a fixed token. The zero value yields empty
// tokens for sources that need no auth.
type staticProvider struct {
	token string
}

// Static returns a provider that always yields the given token. Used in
// tests and for pre-acquired tokens.
func Static(token string) *staticProvider {
	return &staticProvider{token: token}
}

func (p *staticProvider) GetToken(ctx context.Context) (string, error) {
	return p.token, nil
}
