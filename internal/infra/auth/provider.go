package auth

import (
	"context"
	"log/slog"

	"refugis/config"
	"refugis/internal/domain/constants"
	"refugis/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// VerifierParams holds dependencies for IdentityVerifier, injected by Fx
type VerifierParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
	App    *firebase.App `optional:"true"`
}

// NewIdentityVerifier picks the identity provider from configuration
func NewIdentityVerifier(params VerifierParams) (service.IdentityVerifier, error) {
	cfg := params.Config.Auth
	if cfg == nil {
		return nil, errors.New("auth configuration is required")
	}

	switch cfg.Provider {
	case constants.AuthProviderJWT:
		params.Logger.Warn("Using shared-secret JWT verifier; do not enable in production")

		return NewJWTVerifier(cfg.JWTSecret, cfg.AdminRole)
	case constants.AuthProviderFirebase, "":
		if params.App == nil {
			return nil, errors.New("firebase app is required for firebase auth provider")
		}
		params.Logger.Info("Using Firebase Auth verifier")

		return NewFirebaseVerifier(params.Ctx, params.App, cfg.AdminRole)
	default:
		return nil, errors.Errorf("unknown auth provider: %s", cfg.Provider)
	}
}
