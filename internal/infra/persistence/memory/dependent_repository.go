package memory

import (
	"context"
	"sort"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/repository"
)

type doubtRepository struct {
	store *Store
}

// NewDoubtRepository returns the doubts collection of store.
func NewDoubtRepository(store *Store) repository.DoubtRepository {
	return &doubtRepository{store: store}
}

func (r *doubtRepository) FindByShelter(_ context.Context, shelterID string) ([]*entity.Doubt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.Doubt, 0)
	for _, doubt := range r.store.doubts {
		if doubt.ShelterID == shelterID {
			copied := *doubt
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *doubtRepository) DeleteAnswers(_ context.Context, doubtID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.answers, doubtID)

	return nil
}

func (r *doubtRepository) Delete(_ context.Context, doubtID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.doubts, doubtID)

	return nil
}

type experienceRepository struct {
	store *Store
}

// NewExperienceRepository returns the experiences collection of store.
func NewExperienceRepository(store *Store) repository.ExperienceRepository {
	return &experienceRepository{store: store}
}

func (r *experienceRepository) FindByShelter(_ context.Context, shelterID string) ([]*entity.Experience, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.Experience, 0)
	for _, experience := range r.store.experiences {
		if experience.ShelterID == shelterID {
			out = append(out, copyExperience(experience))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *experienceRepository) Delete(_ context.Context, experienceID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.experiences, experienceID)

	return nil
}

type renovationRepository struct {
	store *Store
}

// NewRenovationRepository returns the renovations collection of store.
func NewRenovationRepository(store *Store) repository.RenovationRepository {
	return &renovationRepository{store: store}
}

func (r *renovationRepository) FindByShelter(_ context.Context, shelterID string) ([]*entity.Renovation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.Renovation, 0)
	for _, renovation := range r.store.renovations {
		if renovation.ShelterID == shelterID {
			out = append(out, copyRenovation(renovation))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *renovationRepository) Delete(_ context.Context, renovationID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.renovations, renovationID)

	return nil
}
