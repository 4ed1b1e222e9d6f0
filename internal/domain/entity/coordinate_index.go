package entity

import "time"

// CoordinateEntry is the map-view projection of one shelter.
type CoordinateEntry struct {
	ShelterID string     `json:"id" firestore:"id"`
	Name      string     `json:"name" firestore:"name"`
	Surname   *string    `json:"surname,omitempty" firestore:"surname,omitempty"`
	Coord     Coordinate `json:"coord" firestore:"coord"`
	Geohash   string     `json:"geohash" firestore:"geohash"`
}

// CoordinateIndex is the single aggregate listing every shelter's position.
type CoordinateIndex struct {
	Entries     []CoordinateEntry `json:"entries" firestore:"refugis"`
	Total       int               `json:"total" firestore:"total_refugis"`
	CreatedAt   time.Time         `json:"created_at" firestore:"created_at"`
	LastUpdated time.Time         `json:"last_updated" firestore:"last_updated"`
}

// Find returns the position of the entry for shelterID or -1.
func (idx *CoordinateIndex) Find(shelterID string) int {
	for i := range idx.Entries {
		if idx.Entries[i].ShelterID == shelterID {
			return i
		}
	}

	return -1
}
