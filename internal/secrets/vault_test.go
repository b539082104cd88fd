package secrets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVaultServer(t *testing.T, token string, secrets map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("X-Vault-Token") != token {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		value, ok := secrets[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"data":     map[string]interface{}{"value": value},
				"metadata": map[string]interface{}{"version": 1},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVaultStoreReadsKVv2Value(t *testing.T) {
	t.Parallel()

	srv := newVaultServer(t, "root-token", map[string]string{
		"/v1/secret/data/tutorchain/account/signer": " 0xabc\n",
	})
	store, err := NewVaultStore(VaultConfig{Address: srv.URL, Token: "root-token", Prefix: "tutorchain"})
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "account/signer")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", got)
}

func TestVaultStoreMissingIsNotFound(t *testing.T) {
	t.Parallel()

	srv := newVaultServer(t, "root-token", nil)
	store, err := NewVaultStore(VaultConfig{Address: srv.URL, Token: "root-token"})
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "account/signer")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVaultStoreDeniedIsNotNotFound(t *testing.T) {
	t.Parallel()

	srv := newVaultServer(t, "root-token", map[string]string{"/v1/secret/data/signer": "x"})
	store, err := NewVaultStore(VaultConfig{Address: srv.URL, Token: "wrong"})
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "signer")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestVaultStoreFallsBackThroughChain(t *testing.T) {
	t.Parallel()

	srv := newVaultServer(t, "root-token", nil)
	vault, err := NewVaultStore(VaultConfig{Address: srv.URL, Token: "root-token"})
	require.NoError(t, err)
	env := &EnvStore{lookup: func(string) (string, bool) { return "0xenv", true }}

	store, err := NewChainStore(vault, env)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "account/signer")
	require.NoError(t, err)
	assert.Equal(t, "0xenv", got)
}

func TestNewVaultStoreRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewVaultStore(VaultConfig{Address: "http://127.0.0.1:8200"})
	assert.Error(t, err)
}
