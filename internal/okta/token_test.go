package okta

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oktaexport/pkg/errs"
)

func testKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	return key, pemStr
}

func TestTokenProvider_Fetch(t *testing.T) {
	key, pemStr := testKey(t)

	var gotAssertion, gotScope, gotGrant, gotAssertionType string
	r := chi.NewRouter()
	r.Post("/oauth2/v1/token", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseForm())
		gotGrant = req.PostFormValue("grant_type")
		gotScope = req.PostFormValue("scope")
		gotAssertionType = req.PostFormValue("client_assertion_type")
		gotAssertion = req.PostFormValue("client_assertion")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	tp := &TokenProvider{
		HTTP:     srv.Client(),
		Domain:   srv.URL,
		ClientID: "client-abc",
		KeyPEM:   pemStr,
		Scope:    "okta.users.read okta.groups.read",
	}
	tok, err := tp.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.Equal(t, "client_credentials", gotGrant)
	assert.Equal(t, "okta.users.read okta.groups.read", gotScope)
	assert.Equal(t, assertionType, gotAssertionType)

	// The assertion must be a valid RS256 JWT self-issued by the client
	// with the token endpoint as audience and a short expiry.
	parsed, err := jwt.Parse([]byte(gotAssertion),
		jwt.WithKey(jwa.RS256, key.Public()),
		jwt.WithAudience(srv.URL+"/oauth2/v1/token"),
		jwt.WithValidate(true),
	)
	require.NoError(t, err)
	assert.Equal(t, "client-abc", parsed.Issuer())
	assert.Equal(t, "client-abc", parsed.Subject())
	assert.WithinDuration(t, time.Now().Add(assertionTTL), parsed.Expiration(), time.Minute)
}

func TestTokenProvider_Fetch_Rejected(t *testing.T) {
	_, pemStr := testKey(t)
	r := chi.NewRouter()
	r.Post("/oauth2/v1/token", func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	tp := &TokenProvider{HTTP: srv.Client(), Domain: srv.URL, ClientID: "c", KeyPEM: pemStr, Scope: "s"}
	_, err := tp.Fetch(context.Background())
	require.Error(t, err)
	var ae *errs.AuthenticationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "okta", ae.System)
}

func TestTokenProvider_Fetch_MalformedKey(t *testing.T) {
	tp := &TokenProvider{
		HTTP:     http.DefaultClient,
		Domain:   "https://unused.example.com",
		ClientID: "c",
		KeyPEM:   "not a pem key",
		Scope:    "s",
	}
	_, err := tp.Fetch(context.Background())
	require.Error(t, err)
	var ae *errs.AuthenticationError
	assert.ErrorAs(t, err, &ae)
}
