// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"refugis/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for shelter persistence.
var (
	// ErrShelterNotFound is returned when a shelter is not found.
	ErrShelterNotFound = errors.New("shelter not found")
)

// ShelterRepository defines the document operations on the shelters collection.
type ShelterRepository interface {
	// FindByID retrieves a shelter by its id.
	FindByID(ctx context.Context, id string) (*entity.Shelter, error)

	// Save writes the full shelter document, creating or overwriting it.
	Save(ctx context.Context, shelter *entity.Shelter) error

	// Delete removes a shelter. Deleting a missing shelter is not an error.
	Delete(ctx context.Context, id string) error
}
