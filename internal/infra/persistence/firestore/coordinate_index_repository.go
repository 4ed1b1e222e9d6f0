package firestore

import (
	"context"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/repository"
	"refugis/internal/errors"

	"cloud.google.com/go/firestore"
)

type coordinateIndexRepository struct {
	client *firestore.Client
}

// NewCoordinateIndexRepository returns the repository of the single coordinates aggregate.
func NewCoordinateIndexRepository(client *firestore.Client) repository.CoordinateIndexRepository {
	return &coordinateIndexRepository{client: client}
}

func (repo *coordinateIndexRepository) doc() *firestore.DocumentRef {
	return repo.client.Collection(collectionCoordinateIndex).Doc(documentCoordinateIndex)
}

func (repo *coordinateIndexRepository) Get(ctx context.Context) (*entity.CoordinateIndex, error) {
	snap, err := repo.doc().Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrCoordinateIndexNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read coordinate index")
	}

	var index entity.CoordinateIndex
	if err := snap.DataTo(&index); err != nil {
		return nil, errors.Wrap(err, "failed to decode coordinate index")
	}

	return &index, nil
}

func (repo *coordinateIndexRepository) Save(ctx context.Context, index *entity.CoordinateIndex) error {
	if _, err := repo.doc().Set(ctx, index); err != nil {
		return errors.Wrap(err, "failed to save coordinate index")
	}

	return nil
}
