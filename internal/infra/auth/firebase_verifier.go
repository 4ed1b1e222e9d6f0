package auth

import (
	"context"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
)

// firebaseVerifier checks Firebase ID tokens and reads the role from custom claims.
type firebaseVerifier struct {
	client    *firebaseauth.Client
	roleClaim string
}

// NewFirebaseVerifier creates a verifier backed by Firebase Auth.
func NewFirebaseVerifier(ctx context.Context, app *firebase.App, roleClaim string) (service.IdentityVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get auth client")
	}
	if roleClaim == "" {
		roleClaim = defaultRoleClaim
	}

	return &firebaseVerifier{client: client, roleClaim: roleClaim}, nil
}

// Verify validates the ID token and returns the caller identity.
func (v *firebaseVerifier) Verify(ctx context.Context, token string) (entity.Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return entity.Identity{}, errors.Wrap(ErrInvalidToken, err.Error())
	}

	return entity.NewIdentity(decoded.UID, rolesFromClaim(decoded.Claims[v.roleClaim])), nil
}
