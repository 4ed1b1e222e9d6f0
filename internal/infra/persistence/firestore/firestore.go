// Package firestore contains the Firestore implementation of the persistence layer.
package firestore

import (
	"context"
	"log/slog"

	"refugis/internal/domain/lifecycle"
	"refugis/internal/errors"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/fx"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection and document names.
const (
	collectionShelters        = "shelters"
	collectionProposals       = "proposals"
	collectionDoubts          = "doubts"
	collectionAnswers         = "answers"
	collectionExperiences     = "experiences"
	collectionRenovations     = "renovations"
	collectionCoordinateIndex = "coordinates_index"
	documentCoordinateIndex   = "shelters"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	App    *firebase.App
	Logger *slog.Logger
}

// New creates the Firestore client and ties it to the application lifecycle
func New(params Params) (*firestore.Client, error) {
	client, err := params.App.Firestore(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Firestore client")
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			iter := client.Collection(collectionShelters).Limit(1).Documents(ctx)
			defer iter.Stop()
			if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
				return errors.Wrap(err, "failed to reach Firestore")
			}

			params.Logger.Info("Firestore client ready")

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// collectDocs drains iter, decoding each document into a fresh T.
func collectDocs[T any, E any](iter *firestore.DocumentIterator, toDomain func(doc *T, id string) E) ([]E, error) {
	defer iter.Stop()

	out := make([]E, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate documents")
		}

		doc := new(T)
		if err := snap.DataTo(doc); err != nil {
			return nil, errors.Wrapf(err, "failed to decode document %s", snap.Ref.ID)
		}
		out = append(out, toDomain(doc, snap.Ref.ID))
	}
}
