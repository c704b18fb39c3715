// Package auth resolves bearer credentials issued by an external identity
// provider into stable subject identities.
package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"sidebet/internal/models"
)

const keySetFetchTimeout = 5 * time.Second

// jsonWebKey is one entry of the provider's published key set.
type jsonWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	K   string `json:"k"`
}

type keySetDocument struct {
	Keys []jsonWebKey `json:"keys"`
}

// KeySetClient fetches the identity provider's published key set and caches
// the decoded verification keys. Entries are cached for the configured TTL;
// a TTL of zero caches for the process lifetime. Invalidate drops the cache
// so rotated keys are picked up without a restart.
type KeySetClient struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client

	mu        sync.Mutex
	keys      map[string]interface{}
	fetchedAt time.Time
}

// NewKeySetClient returns a client for the given key-set URL.
func NewKeySetClient(url string, ttl time.Duration) *KeySetClient {
	return &KeySetClient{
		url:        url,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: keySetFetchTimeout},
	}
}

// Key returns the verification key matching the given key identifier,
// refreshing the cached set if it is stale. An unknown kid yields
// UNAUTHENTICATED; a fetch failure yields UNAVAILABLE.
func (c *KeySetClient) Key(ctx context.Context, kid string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale() {
		if err := c.refresh(ctx); err != nil {
			return nil, err
		}
	}

	key, ok := c.keys[kid]
	if !ok {
		return nil, models.NewUnauthenticatedError("token signed with unknown key")
	}
	return key, nil
}

// Invalidate drops the cached key set. The next Key call fetches a fresh copy.
func (c *KeySetClient) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = nil
	c.fetchedAt = time.Time{}
}

// stale must be called with the mutex held.
func (c *KeySetClient) stale() bool {
	if c.fetchedAt.IsZero() {
		return true
	}
	return c.ttl > 0 && time.Since(c.fetchedAt) >= c.ttl
}

// refresh must be called with the mutex held.
func (c *KeySetClient) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return models.NewUnavailableError("failed to build key set request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.NewUnavailableError("failed to fetch key set", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return models.NewUnavailableError("failed to fetch key set",
			fmt.Errorf("key set endpoint returned status %d", resp.StatusCode))
	}

	var doc keySetDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return models.NewUnavailableError("invalid key set document", err)
	}
	if len(doc.Keys) == 0 {
		return models.NewUnavailableError("invalid key set document",
			fmt.Errorf("key set contains no keys"))
	}

	keys := make(map[string]interface{}, len(doc.Keys))
	for _, jwk := range doc.Keys {
		key, err := decodeKey(jwk)
		if err != nil {
			slog.Warn("skipping undecodable key in key set",
				slog.String("kid", jwk.Kid),
				slog.String("kty", jwk.Kty),
				slog.String("error", err.Error()))
			continue
		}
		keys[jwk.Kid] = key
	}

	c.keys = keys
	c.fetchedAt = time.Now()
	return nil
}

// decodeKey converts a JWK entry into a verification key usable by the JWT
// library: *rsa.PublicKey, *ecdsa.PublicKey or a raw []byte secret.
func decodeKey(jwk jsonWebKey) (interface{}, error) {
	switch jwk.Kty {
	case "RSA":
		n, err := base64URLBigInt(jwk.N)
		if err != nil {
			return nil, fmt.Errorf("invalid modulus: %w", err)
		}
		e, err := base64URLBigInt(jwk.E)
		if err != nil {
			return nil, fmt.Errorf("invalid exponent: %w", err)
		}
		return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
	case "EC":
		curve, err := curveByName(jwk.Crv)
		if err != nil {
			return nil, err
		}
		x, err := base64URLBigInt(jwk.X)
		if err != nil {
			return nil, fmt.Errorf("invalid x coordinate: %w", err)
		}
		y, err := base64URLBigInt(jwk.Y)
		if err != nil {
			return nil, fmt.Errorf("invalid y coordinate: %w", err)
		}
		return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
	case "oct":
		secret, err := base64.RawURLEncoding.DecodeString(jwk.K)
		if err != nil {
			return nil, fmt.Errorf("invalid symmetric key: %w", err)
		}
		return secret, nil
	default:
		return nil, fmt.Errorf("unsupported key type %q", jwk.Kty)
	}
}

func curveByName(name string) (elliptic.Curve, error) {
	switch name {
	case "P-256":
		return elliptic.P256(), nil
	case "P-384":
		return elliptic.P384(), nil
	case "P-521":
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("unsupported curve %q", name)
	}
}

func base64URLBigInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
