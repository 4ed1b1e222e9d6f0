package repository

import (
	"context"

	"refugis/internal/domain/entity"
)

// DoubtRepository covers the doubts collection and its answers sub-collection.
type DoubtRepository interface {
	// FindByShelter lists doubts posted on a shelter.
	FindByShelter(ctx context.Context, shelterID string) ([]*entity.Doubt, error)

	// DeleteAnswers removes every answer of a doubt.
	DeleteAnswers(ctx context.Context, doubtID string) error

	// Delete removes a doubt record. Deleting a missing doubt is not an error.
	Delete(ctx context.Context, doubtID string) error
}

// ExperienceRepository covers the experiences collection.
type ExperienceRepository interface {
	// FindByShelter lists experiences recorded on a shelter.
	FindByShelter(ctx context.Context, shelterID string) ([]*entity.Experience, error)

	// Delete removes an experience record. Deleting a missing experience is not an error.
	Delete(ctx context.Context, experienceID string) error
}

// RenovationRepository covers the renovations collection.
type RenovationRepository interface {
	// FindByShelter lists renovations planned on a shelter.
	FindByShelter(ctx context.Context, shelterID string) ([]*entity.Renovation, error)

	// Delete removes a renovation record. Deleting a missing renovation is not an error.
	Delete(ctx context.Context, renovationID string) error
}
