package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sidebet/internal/config"
	"sidebet/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwksDoc(kid string, pub *rsa.PublicKey) string {
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())
	return fmt.Sprintf(`{"keys":[{"kty":"RSA","kid":%q,"use":"sig","alg":"RS256","n":%q,"e":%q}]}`, kid, n, e)
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newVerifyingResolver(url, audience, issuer string) *Resolver {
	return NewResolver(&config.Config{
		JWKSURL:     url,
		JWTAudience: audience,
		JWTIssuer:   issuer,
	})
}

func TestResolveVerifiedToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jwksDoc("k1", &key.PublicKey))
	}))
	defer srv.Close()

	resolver := newVerifyingResolver(srv.URL, "", "")
	credential := signToken(t, key, "k1", jwt.MapClaims{
		"sub":   "7f9c34b1-1111-4a4a-8b8b-000000000001",
		"email": "alice@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := resolver.Resolve(context.Background(), credential)
	require.NoError(t, err)
	assert.Equal(t, "7f9c34b1-1111-4a4a-8b8b-000000000001", identity.Subject)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestResolveUnknownKeyID(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jwksDoc("k1", &key.PublicKey))
	}))
	defer srv.Close()

	resolver := newVerifyingResolver(srv.URL, "", "")
	credential := signToken(t, key, "other-kid", jwt.MapClaims{"sub": "u1"})

	_, err = resolver.Resolve(context.Background(), credential)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}

func TestResolveBadSignature(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jwksDoc("k1", &key.PublicKey))
	}))
	defer srv.Close()

	resolver := newVerifyingResolver(srv.URL, "", "")
	// Signed with a different key but claiming kid k1.
	credential := signToken(t, otherKey, "k1", jwt.MapClaims{"sub": "u1"})

	_, err = resolver.Resolve(context.Background(), credential)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}

func TestResolveExpiredToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jwksDoc("k1", &key.PublicKey))
	}))
	defer srv.Close()

	resolver := newVerifyingResolver(srv.URL, "", "")
	credential := signToken(t, key, "k1", jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err = resolver.Resolve(context.Background(), credential)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}

func TestResolveAudienceAndIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jwksDoc("k1", &key.PublicKey))
	}))
	defer srv.Close()

	resolver := newVerifyingResolver(srv.URL, "sidebet", "https://issuer.example.com")

	t.Run("matching claims accepted", func(t *testing.T) {
		credential := signToken(t, key, "k1", jwt.MapClaims{
			"sub": "u1",
			"aud": "sidebet",
			"iss": "https://issuer.example.com",
		})
		identity, err := resolver.Resolve(context.Background(), credential)
		require.NoError(t, err)
		assert.Equal(t, "u1", identity.Subject)
	})

	t.Run("audience mismatch rejected", func(t *testing.T) {
		credential := signToken(t, key, "k1", jwt.MapClaims{
			"sub": "u1",
			"aud": "someone-else",
			"iss": "https://issuer.example.com",
		})
		_, err := resolver.Resolve(context.Background(), credential)
		assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
	})

	t.Run("issuer mismatch rejected", func(t *testing.T) {
		credential := signToken(t, key, "k1", jwt.MapClaims{
			"sub": "u1",
			"aud": "sidebet",
			"iss": "https://rogue.example.com",
		})
		_, err := resolver.Resolve(context.Background(), credential)
		assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
	})
}

func TestResolveMissingSubject(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jwksDoc("k1", &key.PublicKey))
	}))
	defer srv.Close()

	resolver := newVerifyingResolver(srv.URL, "", "")
	credential := signToken(t, key, "k1", jwt.MapClaims{"email": "nobody@example.com"})

	_, err = resolver.Resolve(context.Background(), credential)
	assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
}

func TestResolveKeySetUnavailable(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // fetch will fail with connection refused

	resolver := newVerifyingResolver(srv.URL, "", "")
	credential := signToken(t, key, "k1", jwt.MapClaims{"sub": "u1"})

	_, err = resolver.Resolve(context.Background(), credential)
	assert.True(t, models.HasCode(err, models.CodeUnavailable),
		"fetch failure must not be reported as a bad credential")
}

func TestResolveMalformedCredential(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jwksDoc("k1", &key.PublicKey))
	}))
	defer srv.Close()

	resolver := newVerifyingResolver(srv.URL, "", "")

	for _, credential := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := resolver.Resolve(context.Background(), credential)
		assert.True(t, models.HasCode(err, models.CodeUnauthenticated), "credential %q", credential)
	}
}

func TestResolveDevelopmentMode(t *testing.T) {
	resolver := NewResolver(&config.Config{})
	require.False(t, resolver.Verifying())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "dev-subject",
		"email": "dev@example.com",
	})
	credential, err := token.SignedString([]byte("any-secret-at-all"))
	require.NoError(t, err)

	identity, err := resolver.Resolve(context.Background(), credential)
	require.NoError(t, err)
	assert.Equal(t, "dev-subject", identity.Subject)
	assert.Equal(t, "dev@example.com", identity.Email)

	t.Run("still rejects garbage", func(t *testing.T) {
		_, err := resolver.Resolve(context.Background(), "garbage")
		assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
	})

	t.Run("still requires a subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x@y.z"})
		credential, err := token.SignedString([]byte("any-secret-at-all"))
		require.NoError(t, err)
		_, err = resolver.Resolve(context.Background(), credential)
		assert.True(t, models.HasCode(err, models.CodeUnauthenticated))
	})
}
