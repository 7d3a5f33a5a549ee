package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourview/driftsync/internal/core/domain"
)

func TestCreateTokenProvider_Filesystem(t *testing.T) {
	f := NewFactory(nil)

	provider, err := f.CreateTokenProvider(context.Background(), &domain.Source{
		ID:   "src-1",
		Type: "filesystem",
	})

	require.NoError(t, err)
	token, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token, "local sources need no token")
}

func TestCreateTokenProvider_UnsupportedType(t *testing.T) {
	f := NewFactory(nil)

	_, err := f.CreateTokenProvider(context.Background(), &domain.Source{Type: "gopher"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestCreateTokenProvider_MissingCredentials(t *testing.T) {
	f := NewFactory(nil)

	_, err := f.CreateTokenProvider(context.Background(), &domain.Source{
		ID:   "src-1",
		Type: "sharepoint",
		Config: map[string]string{
			"tenant_id": "tenant-1",
			// client_id and client_secret missing
		},
	})
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestCreateTokenProvider_ClientCredentials(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(tokenServer.Close)

	f := NewFactory(nil)
	source := &domain.Source{
		ID:   "src-1",
		Type: "adls",
		Config: map[string]string{
			"tenant_id":     "tenant-1",
			"client_id":     "client-1",
			"client_secret": "secret-1",
			"token_url":     tokenServer.URL,
		},
	}

	provider, err := f.CreateTokenProvider(context.Background(), source)
	require.NoError(t, err)

	token, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestCreateTokenProvider_InvalidCredentials(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	t.Cleanup(tokenServer.Close)

	f := NewFactory(nil)
	source := &domain.Source{
		ID:   "src-1",
		Type: "sharepoint",
		Config: map[string]string{
			"tenant_id":     "tenant-1",
			"client_id":     "client-1",
			"client_secret": "wrong",
			"token_url":     tokenServer.URL,
		},
	}

	provider, err := f.CreateTokenProvider(context.Background(), source)
	require.NoError(t, err)

	_, err = provider.GetToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestStatic(t *testing.T) {
	token, err := Static("fixed").GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)
}
