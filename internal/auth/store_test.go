package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonbound/moonbound/pkg/api"
)

// fakeAPI serves /login, /register and /me. A request to /me succeeds only
// with the bearer token the fake handed out.
func fakeAPI(t *testing.T, validToken string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "bad credentials"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": validToken}) //nolint:errcheck
	})
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": validToken}) //nolint:errcheck
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "not authenticated"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"email": "luna@example.com", "nombre": "Luna"}) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestStore(t *testing.T, baseURL string) (*Store, *api.Client, *TokenFile) {
	t.Helper()
	client := api.New(baseURL, nil)
	tokens := NewTokenFile(t.TempDir())
	return NewStore(client, tokens, nil), client, tokens
}

func TestStoreStartsHydrating(t *testing.T) {
	store, _, _ := newTestStore(t, "http://127.0.0.1:1")
	assert.Equal(t, StateHydrating, store.State())
	assert.False(t, store.IsAuthenticated())
}

func TestHydrateWithoutToken(t *testing.T) {
	store, _, _ := newTestStore(t, "http://127.0.0.1:1")
	assert.Equal(t, StateAnonymous, store.Hydrate(context.Background()))
	assert.Nil(t, store.User())
}

func TestHydrateWithValidToken(t *testing.T) {
	srv := fakeAPI(t, "tok-good")
	store, client, tokens := newTestStore(t, srv.URL)
	require.NoError(t, tokens.Save("tok-good"))

	assert.Equal(t, StateAuthenticated, store.Hydrate(context.Background()))
	require.NotNil(t, store.User())
	assert.Equal(t, "luna@example.com", store.User().Email)
	assert.Equal(t, "tok-good", client.Token())
	assert.True(t, store.IsAuthenticated())
}

func TestHydrateRejectedTokenIsDropped(t *testing.T) {
	srv := fakeAPI(t, "tok-good")
	store, client, tokens := newTestStore(t, srv.URL)
	require.NoError(t, tokens.Save("tok-stale"))

	assert.Equal(t, StateAnonymous, store.Hydrate(context.Background()))
	assert.Empty(t, client.Token())
	assert.Empty(t, tokens.Load())
	assert.Nil(t, store.User())
}

func TestHydrateNetworkFailureIsConservativeLogout(t *testing.T) {
	// Unreachable API: the persisted token is dropped rather than retried.
	store, client, tokens := newTestStore(t, "http://127.0.0.1:1")
	require.NoError(t, tokens.Save("tok-any"))

	assert.Equal(t, StateAnonymous, store.Hydrate(context.Background()))
	assert.Empty(t, client.Token())
	assert.Empty(t, tokens.Load())
}

func TestLoginSuccess(t *testing.T) {
	srv := fakeAPI(t, "tok-good")
	store, client, tokens := newTestStore(t, srv.URL)

	require.NoError(t, store.Login(context.Background(), "luna@example.com", "secret1"))
	assert.Equal(t, StateAuthenticated, store.State())
	assert.Equal(t, "tok-good", tokens.Load())
	assert.Equal(t, "tok-good", client.Token())
	require.NotNil(t, store.User())
	assert.Equal(t, "Luna", store.User().Nombre)
}

func TestLoginFailureLeavesNoState(t *testing.T) {
	srv := fakeAPI(t, "tok-good")
	store, client, tokens := newTestStore(t, srv.URL)

	err := store.Login(context.Background(), "luna@example.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad credentials")
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, tokens.Load())
	assert.Empty(t, client.Token())
	assert.Nil(t, store.User())
}

func TestLoginValidationFailure(t *testing.T) {
	store, _, tokens := newTestStore(t, "http://127.0.0.1:1")
	err := store.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Empty(t, tokens.Load())
}

func TestRegisterSuccess(t *testing.T) {
	srv := fakeAPI(t, "tok-good")
	store, _, _ := newTestStore(t, srv.URL)

	require.NoError(t, store.Register(context.Background(), "luna@example.com", "secret1", "Luna"))
	assert.True(t, store.IsAuthenticated())
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	srv := fakeAPI(t, "tok-good")
	store, client, tokens := newTestStore(t, srv.URL)
	require.NoError(t, store.Login(context.Background(), "luna@example.com", "secret1"))

	store.Logout()
	assert.Equal(t, StateAnonymous, store.State())
	assert.Empty(t, client.Token())
	assert.Empty(t, tokens.Load())
	assert.Nil(t, store.User())

	// A second logout with nothing to clear is still fine.
	store.Logout()
	assert.Equal(t, StateAnonymous, store.State())
}
