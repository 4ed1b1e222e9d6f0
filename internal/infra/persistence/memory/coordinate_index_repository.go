package memory

import (
	"context"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/repository"
)

type coordinateIndexRepository struct {
	store *Store
}

// NewCoordinateIndexRepository returns the coordinates aggregate of store.
func NewCoordinateIndexRepository(store *Store) repository.CoordinateIndexRepository {
	return &coordinateIndexRepository{store: store}
}

func (r *coordinateIndexRepository) Get(_ context.Context) (*entity.CoordinateIndex, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if r.store.index == nil {
		return nil, repository.ErrCoordinateIndexNotFound
	}

	return copyIndex(r.store.index), nil
}

func (r *coordinateIndexRepository) Save(_ context.Context, index *entity.CoordinateIndex) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.index = copyIndex(index)

	return nil
}
