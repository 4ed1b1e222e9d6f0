package memory

import (
	"context"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/repository"
)

type shelterRepository struct {
	store *Store
}

// NewShelterRepository returns the shelters collection of store.
func NewShelterRepository(store *Store) repository.ShelterRepository {
	return &shelterRepository{store: store}
}

func (r *shelterRepository) FindByID(_ context.Context, id string) (*entity.Shelter, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	shelter, ok := r.store.shelters[id]
	if !ok {
		return nil, repository.ErrShelterNotFound
	}

	return shelter.Clone(), nil
}

func (r *shelterRepository) Save(_ context.Context, shelter *entity.Shelter) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.shelters[shelter.ID] = shelter.Clone()

	return nil
}

func (r *shelterRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.shelters, id)

	return nil
}
