package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tiempos/internal/services"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Claims carried by dashboard tokens. The subject is the user id that keys
// the authorisation document.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Authenticator resolves the caller's identity. With a secret it accepts
// HS256 bearer tokens only; without one it trusts the identity headers set
// by an authenticating proxy.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	a := &Authenticator{}
	if secret != "" {
		a.secret = []byte(secret)
	}
	return a
}

// UsesTokens reports whether bearer tokens are required.
func (a *Authenticator) UsesTokens() bool {
	return len(a.secret) > 0
}

// Identify returns the identity of the request.
func (a *Authenticator) Identify(r *http.Request) (services.Identity, error) {
	if !a.UsesTokens() {
		id := strings.TrimSpace(r.Header.Get("X-Forwarded-User"))
		if id == "" {
			return services.Identity{}, fmt.Errorf("%w: missing X-Forwarded-User", ErrUnauthenticated)
		}
		email := strings.TrimSpace(r.Header.Get("X-Forwarded-Email"))
		if email == "" {
			email = id
		}
		return services.Identity{ID: id, Email: email}, nil
	}

	raw, ok := bearerToken(r)
	if !ok {
		return services.Identity{}, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return services.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return services.Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	email := claims.Email
	if email == "" {
		email = claims.Subject
	}
	return services.Identity{ID: claims.Subject, Email: email}, nil
}

// Issue signs a token for user valid for ttl.
func (a *Authenticator) Issue(user services.Identity, ttl time.Duration) (string, error) {
	if !a.UsesTokens() {
		return "", errors.New("no signing secret configured")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: user.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type identityKey struct{}

func withIdentity(ctx context.Context, id services.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the auth middleware.
func IdentityFromContext(ctx context.Context) (services.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(services.Identity)
	return id, ok
}
