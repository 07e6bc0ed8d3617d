// Package auth verifies bearer tokens. Verification is delegated to the
// hosted identity provider; a local JWT mode exists for development and
// tests so the service can run without the provider.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

const defaultRequestTimeout = 10 * time.Second

// User identifies an authenticated caller.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verifier validates a bearer token and returns the user it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

// RemoteVerifier delegates token verification to the hosted provider's
// user endpoint.
type RemoteVerifier struct {
	client *resty.Client
	apiKey string
}

// RemoteOption applies a configuration option to the RemoteVerifier.
type RemoteOption func(*RemoteVerifier)

// WithRequestTimeout overrides the verification request timeout.
func WithRequestTimeout(d time.Duration) RemoteOption {
	return func(v *RemoteVerifier) {
		if d > 0 {
			v.client.SetTimeout(d)
		}
	}
}

// NewRemoteVerifier creates a verifier backed by the provider at baseURL.
// apiKey is the provider's project key, sent alongside the user's token.
func NewRemoteVerifier(baseURL, apiKey string, opts ...RemoteOption) *RemoteVerifier {
	v := &RemoteVerifier{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(defaultRequestTimeout),
		apiKey: apiKey,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify calls the provider's user endpoint with the caller's token.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrInvalidToken
	}

	var user User
	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("apikey", v.apiKey).
		SetResult(&user).
		Get("/auth/v1/user")
	if err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return User{}, ErrInvalidToken
	}
	if resp.IsError() {
		return User{}, fmt.Errorf("%w: provider returned %d", ErrVerifyUnavailable, resp.StatusCode())
	}
	if user.ID == "" {
		return User{}, ErrInvalidToken
	}
	return user, nil
}

// JWTVerifier validates HS256 tokens locally with a shared secret. Meant
// for development and tests; production delegates to the provider.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a local verifier with the given signing secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token, returning the subject and email
// claims.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return User{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return User{ID: sub, Email: email}, nil
}
