// internal/okta/token.go
package okta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"oktaexport/pkg/errs"
)

const assertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// assertionTTL bounds the client assertion's validity, not the access
// token's; Okta decides the latter.
const assertionTTL = 5 * time.Minute

// TokenProvider exchanges a signed client assertion for a bearer token
// via the org's client-credentials token endpoint.
type TokenProvider struct {
	HTTP     *http.Client
	Domain   string // org base URL, e.g. https://example.okta.com
	ClientID string
	KeyPEM   string // PEM-encoded RSA private key
	Scope    string // space-separated scope list
}

// Fetch obtains an access token for the rest of the run. Any failure
// here is fatal to the pipeline: a bad key, a rejected assertion or a
// non-200 from the token endpoint all surface as AuthenticationError.
func (p *TokenProvider) Fetch(ctx context.Context) (string, error) {
	tokenURL := p.Domain + "/oauth2/v1/token"

	assertion, err := p.signAssertion(tokenURL)
	if err != nil {
		return "", &errs.AuthenticationError{System: "okta", Reason: err.Error()}
	}

	form := url.Values{
		"grant_type":            {"client_credentials"},
		"scope":                 {p.Scope},
		"client_assertion_type": {assertionType},
		"client_assertion":      {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &errs.AuthenticationError{System: "okta", Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return "", &errs.AuthenticationError{System: "okta", Reason: err.Error()}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &errs.AuthenticationError{
			System: "okta",
			Reason: fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, truncate(body)),
		}
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.AccessToken == "" {
		return "", &errs.AuthenticationError{System: "okta", Reason: "token endpoint returned no access_token"}
	}
	return out.AccessToken, nil
}

// signAssertion builds the self-issued RS256 JWT presented as
// client_assertion: iss=sub=client id, aud=token endpoint, short expiry.
func (p *TokenProvider) signAssertion(audience string) (string, error) {
	key, err := jwk.ParseKey([]byte(p.KeyPEM), jwk.WithPEM(true))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Issuer(p.ClientID).
		Subject(p.ClientID).
		Audience([]string{audience}).
		IssuedAt(now).
		Expiration(now.Add(assertionTTL)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build assertion: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, key))
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return string(signed), nil
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
