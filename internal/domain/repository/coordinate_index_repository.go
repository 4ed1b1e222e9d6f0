package repository

import (
	"context"

	"refugis/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrCoordinateIndexNotFound is returned when the aggregate document does not exist yet.
var ErrCoordinateIndexNotFound = errors.New("coordinate index not found")

// CoordinateIndexRepository stores the single coordinates aggregate document.
type CoordinateIndexRepository interface {
	// Get loads the aggregate.
	Get(ctx context.Context) (*entity.CoordinateIndex, error)

	// Save overwrites the aggregate.
	Save(ctx context.Context, index *entity.CoordinateIndex) error
}
