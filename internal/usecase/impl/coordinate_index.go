package impl

import (
	"context"
	"time"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/geo"
	"refugis/internal/domain/repository"

	"github.com/pkg/errors"
)

// coordinateFields carries the optional values for UpdateEntry.
type coordinateFields struct {
	Name       *string
	Coord      *entity.Coordinate
	Surname    *string
	SetSurname bool
}

// coordinateIndexMirror keeps the coordinates aggregate in sync with shelter records.
type coordinateIndexMirror struct {
	repo      repository.CoordinateIndexRepository
	precision int
	now       func() time.Time
}

func newCoordinateIndexMirror(repo repository.CoordinateIndexRepository, precision int, now func() time.Time) *coordinateIndexMirror {
	if precision <= 0 {
		precision = geo.DefaultPrecision
	}

	return &coordinateIndexMirror{repo: repo, precision: precision, now: now}
}

func (m *coordinateIndexMirror) load(ctx context.Context) (*entity.CoordinateIndex, error) {
	index, err := m.repo.Get(ctx)
	if errors.Is(err, repository.ErrCoordinateIndexNotFound) {
		return &entity.CoordinateIndex{CreatedAt: m.now()}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load coordinate index")
	}

	return index, nil
}

func (m *coordinateIndexMirror) save(ctx context.Context, index *entity.CoordinateIndex) error {
	index.Total = len(index.Entries)
	index.LastUpdated = m.now()

	return errors.Wrap(m.repo.Save(ctx, index), "failed to save coordinate index")
}

// AddEntry appends the shelter unless an entry with the same id already exists.
func (m *coordinateIndexMirror) AddEntry(ctx context.Context, shelterID, name string, coord entity.Coordinate, surname *string) error {
	index, err := m.load(ctx)
	if err != nil {
		return err
	}

	if index.Find(shelterID) >= 0 {
		return nil
	}

	index.Entries = append(index.Entries, entity.CoordinateEntry{
		ShelterID: shelterID,
		Name:      name,
		Surname:   surname,
		Coord:     coord,
		Geohash:   geo.Encode(coord, m.precision),
	})

	return m.save(ctx, index)
}

// UpdateEntry mutates the matching entry, recomputing the geohash when coord changes.
// A missing entry is added so the index heals from earlier partial failures.
func (m *coordinateIndexMirror) UpdateEntry(ctx context.Context, shelterID string, fields coordinateFields) error {
	index, err := m.load(ctx)
	if err != nil {
		return err
	}

	pos := index.Find(shelterID)
	if pos < 0 {
		if fields.Name == nil || fields.Coord == nil {
			return nil
		}
		index.Entries = append(index.Entries, entity.CoordinateEntry{ShelterID: shelterID})
		pos = len(index.Entries) - 1
	}

	entry := &index.Entries[pos]
	if fields.Name != nil {
		entry.Name = *fields.Name
	}
	if fields.SetSurname {
		entry.Surname = fields.Surname
	}
	if fields.Coord != nil {
		entry.Coord = *fields.Coord
	}
	entry.Geohash = geo.Encode(entry.Coord, m.precision)

	return m.save(ctx, index)
}

// RemoveEntry drops the matching entry. Removing an absent entry is a no-op.
func (m *coordinateIndexMirror) RemoveEntry(ctx context.Context, shelterID string) error {
	index, err := m.load(ctx)
	if err != nil {
		return err
	}

	pos := index.Find(shelterID)
	if pos < 0 {
		return nil
	}

	index.Entries = append(index.Entries[:pos], index.Entries[pos+1:]...)

	return m.save(ctx, index)
}
