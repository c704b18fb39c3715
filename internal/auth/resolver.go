package auth

import (
	"context"
	"errors"
	"log/slog"

	"sidebet/internal/config"
	"sidebet/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the stable identity asserted by the provider for a credential.
type Identity struct {
	Subject string
	Email   string
}

// Resolver validates bearer credentials against the identity provider's
// published key set. When no key-set URL is configured it falls back to
// decoding claims without signature verification; config.Validate refuses
// that mode outside development.
type Resolver struct {
	keySet   *KeySetClient
	audience string
	issuer   string
}

// NewResolver builds a Resolver from configuration.
func NewResolver(cfg *config.Config) *Resolver {
	r := &Resolver{
		audience: cfg.JWTAudience,
		issuer:   cfg.JWTIssuer,
	}
	if cfg.JWKSURL != "" {
		r.keySet = NewKeySetClient(cfg.JWKSURL, cfg.JWKSCacheTTL)
	} else {
		slog.Warn("token signature verification DISABLED: no key-set URL configured")
	}
	return r
}

// Verifying reports whether credentials are checked against the key set.
func (r *Resolver) Verifying() bool {
	return r.keySet != nil
}

// InvalidateKeySet drops the cached provider keys, forcing a re-fetch on the
// next resolution. Wired to SIGHUP in the server entrypoint so operators can
// pick up rotated keys without a restart.
func (r *Resolver) InvalidateKeySet() {
	if r.keySet != nil {
		r.keySet.Invalidate()
	}
}

// Resolve verifies the credential and extracts the subject identity.
func (r *Resolver) Resolve(ctx context.Context, credential string) (*Identity, error) {
	claims := jwt.MapClaims{}

	if r.keySet == nil {
		// Development mode: decode without verifying the signature.
		if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
			return nil, models.NewUnauthenticatedError("could not parse credentials")
		}
		return identityFromClaims(claims)
	}

	var opts []jwt.ParserOption
	if r.audience != "" {
		opts = append(opts, jwt.WithAudience(r.audience))
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	token, err := jwt.NewParser(opts...).ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, models.NewUnauthenticatedError("token header missing key id")
		}
		return r.keySet.Key(ctx, kid)
	})
	if err != nil {
		// A key-set fetch failure is an infrastructure problem, not a bad
		// credential; keep it distinguishable from UNAUTHENTICATED.
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeUnavailable {
			return nil, appErr
		}
		return nil, models.NewUnauthenticatedError("could not validate credentials")
	}
	if !token.Valid {
		return nil, models.NewUnauthenticatedError("could not validate credentials")
	}

	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewUnauthenticatedError("token is missing a subject")
	}
	email, _ := claims["email"].(string)
	return &Identity{Subject: sub, Email: email}, nil
}
