package integration

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testKeyID = "test-key-1"

// TestClaims describes the identity a generated token asserts.
type TestClaims struct {
	SubjectID string
	Roles     []string
	Extra     map[string]any
}

// tokenIssuer mints signed JWTs and serves the matching JWKS document over
// an httptest server so the real JWKS client can fetch it.
type tokenIssuer struct {
	t          *testing.T
	privateKey *rsa.PrivateKey
	jwksServer *httptest.Server
	issuer     string
	audience   string
}

func newTokenIssuer(t *testing.T) *tokenIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}

	ti := &tokenIssuer{
		t:          t,
		privateKey: key,
		issuer:     "https://auth.test.invalid",
		audience:   "ksbridge",
	}

	ti.jwksServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]any{
				{
					"kty": "RSA",
					"kid": testKeyID,
					"use": "sig",
					"alg": "RS256",
					"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
				},
			},
		})
	}))
	t.Cleanup(ti.jwksServer.Close)

	return ti
}

// GenerateToken signs a token valid for one hour.
func (ti *tokenIssuer) GenerateToken(claims TestClaims) string {
	return ti.sign(claims, time.Now().Add(time.Hour))
}

// GenerateExpiredToken signs a token that expired an hour ago.
func (ti *tokenIssuer) GenerateExpiredToken(claims TestClaims) string {
	return ti.sign(claims, time.Now().Add(-time.Hour))
}

func (ti *tokenIssuer) sign(claims TestClaims, expiry time.Time) string {
	ti.t.Helper()

	mapClaims := jwt.MapClaims{
		"iss": ti.issuer,
		"aud": ti.audience,
		"sub": claims.SubjectID,
		"iat": time.Now().Add(-time.Minute).Unix(),
		"exp": expiry.Unix(),
	}
	if len(claims.Roles) > 0 {
		mapClaims["roles"] = claims.Roles
	}
	for k, v := range claims.Extra {
		mapClaims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, mapClaims)
	token.Header["kid"] = testKeyID

	signed, err := token.SignedString(ti.privateKey)
	if err != nil {
		ti.t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (ti *tokenIssuer) JWKSURL() string  { return ti.jwksServer.URL }
func (ti *tokenIssuer) Issuer() string   { return ti.issuer }
func (ti *tokenIssuer) Audience() string { return ti.audience }
