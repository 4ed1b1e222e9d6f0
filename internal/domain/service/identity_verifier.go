// Package service declares the contracts of external collaborators used by the use cases.
package service

import (
	"context"

	"refugis/internal/domain/entity"
)

// IdentityVerifier resolves a bearer token into the caller's identity.
type IdentityVerifier interface {
	// Verify validates token and returns the caller identity.
	Verify(ctx context.Context, token string) (entity.Identity, error)
}
