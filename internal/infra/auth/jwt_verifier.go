// Package auth provides concrete implementations of service.IdentityVerifier.
package auth

import (
	"context"
	"time"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// jwtVerifier validates HS256 tokens signed with a shared secret. It is meant for local
// development and tests where no Firebase project is available.
type jwtVerifier struct {
	secret    []byte
	roleClaim string
}

// NewJWTVerifier creates a verifier for tokens signed with secret.
func NewJWTVerifier(secret, roleClaim string) (service.IdentityVerifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if roleClaim == "" {
		roleClaim = defaultRoleClaim
	}

	return &jwtVerifier{secret: []byte(secret), roleClaim: roleClaim}, nil
}

// Verify parses token, checks signature and expiry, and maps claims to an identity.
func (v *jwtVerifier) Verify(_ context.Context, token string) (entity.Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return entity.Identity{}, errors.Wrap(ErrInvalidToken, err.Error())
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Identity{}, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return entity.Identity{}, errors.Wrap(ErrInvalidToken, "missing subject")
	}

	return entity.NewIdentity(subject, rolesFromClaim(claims[v.roleClaim])), nil
}

// IssueToken signs a development token for userID. admin adds the administrator role.
func IssueToken(secret, userID string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if admin {
		claims[defaultRoleClaim] = entity.RoleAdmin.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signed, nil
}
