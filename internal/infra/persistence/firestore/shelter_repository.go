package firestore

import (
	"context"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/repository"
	"refugis/internal/errors"
	"refugis/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
)

type shelterRepository struct {
	client *firestore.Client
}

// NewShelterRepository returns a ShelterRepository backed by the 'shelters' collection.
func NewShelterRepository(client *firestore.Client) repository.ShelterRepository {
	return &shelterRepository{client: client}
}

func (repo *shelterRepository) FindByID(ctx context.Context, id string) (*entity.Shelter, error) {
	snap, err := repo.client.Collection(collectionShelters).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrShelterNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find shelter by id")
	}

	var doc model.ShelterDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode shelter")
	}

	return doc.ToDomain(snap.Ref.ID), nil
}

func (repo *shelterRepository) Save(ctx context.Context, shelter *entity.Shelter) error {
	if _, err := repo.client.Collection(collectionShelters).Doc(shelter.ID).Set(ctx, model.ShelterToDoc(shelter)); err != nil {
		return errors.Wrap(err, "failed to save shelter")
	}

	return nil
}

func (repo *shelterRepository) Delete(ctx context.Context, id string) error {
	if _, err := repo.client.Collection(collectionShelters).Doc(id).Delete(ctx); err != nil && !isNotFound(err) {
		return errors.Wrap(err, "failed to delete shelter")
	}

	return nil
}
