// Package firebase builds the shared Firebase app used by Firestore, Auth and Cloud Messaging.
package firebase

import (
	"context"
	"log/slog"

	"refugis/config"

	firebasesdk "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// NewApp initializes the Firebase app. Without a credentials path it falls back to
// application default credentials, which is what Cloud Run provides.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*firebasesdk.App, error) {
	var (
		fbConfig *firebasesdk.Config
		opts     []option.ClientOption
	)

	if cfg.Firebase != nil {
		if cfg.Firebase.ProjectID != "" {
			fbConfig = &firebasesdk.Config{ProjectID: cfg.Firebase.ProjectID}
		}
		if cfg.Firebase.CredentialsPath != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsPath))
		}
	}

	app, err := firebasesdk.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	logger.Info("Firebase app initialized", slog.Bool("explicit_credentials", len(opts) > 0))

	return app, nil
}
