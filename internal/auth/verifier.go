// Package auth verifies identity-provider bearer tokens (RS256) against the
// provider's JWKS endpoint.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

// Verifier validates RS256 tokens using signing keys fetched from a JWKS
// endpoint. Keys are cached process-wide with an explicit TTL; an unknown kid
// forces one refetch so key rotation is picked up without waiting out the TTL.
type Verifier struct {
	jwksURL string
	issuer  string
	ttl     time.Duration
	client  *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewVerifier(jwksURL, issuer string, ttl time.Duration) *Verifier {
	return &Verifier{
		jwksURL: jwksURL,
		issuer:  issuer,
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
		keys:    map[string]*rsa.PublicKey{},
	}
}

// Verify parses and validates a bearer token, returning the subject and the
// full claim set. Every failure mode, including unreachable key material,
// maps to ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (string, jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("missing key id in token header")
		}
		return v.signingKey(ctx, kid)
	}, opts...)
	if err != nil {
		slog.Debug("token verification failed", "error", err)
		return "", nil, fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", nil, fmt.Errorf("invalid token claims: %w", ErrUnauthorized)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", nil, fmt.Errorf("token missing subject: %w", ErrUnauthorized)
	}

	return subject, claims, nil
}

// signingKey returns the cached key for kid, refreshing the JWKS cache when
// the TTL has expired or the kid is unknown.
func (v *Verifier) signingKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetchedAt) < v.ttl
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	err := v.refresh(ctx)
	if err != nil {
		// Serve a cached key if we have one; rotation is rare and a
		// transient JWKS outage should not reject every request.
		if ok {
			return key, nil
		}
		return nil, err
	}

	v.mu.RLock()
	key, ok = v.keys[kid]
	v.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("signing key %q not found", kid)
	}

	return key, nil
}

func (v *Verifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		slog.Error("failed to fetch JWKS", "error", err, "url", v.jwksURL)
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		slog.Error("unexpected JWKS response", "status", resp.StatusCode, "url", v.jwksURL)
		return fmt.Errorf("unexpected JWKS response status %d", resp.StatusCode)
	}

	var doc jwksDocument
	err = json.NewDecoder(resp.Body).Decode(&doc)
	if err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaKeyFromJWK(k)
		if err != nil {
			slog.Warn("skipping malformed JWK", "kid", k.Kid, "error", err)
			continue
		}
		keys[k.Kid] = pub
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	slog.Debug("JWKS cache refreshed", "keys", len(keys))
	return nil
}

// rsaKeyFromJWK builds an RSA public key from the JWK modulus and exponent.
func rsaKeyFromJWK(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, errors.New("invalid exponent value")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
