// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the shelter catalog.
package entity

import (
	"time"
)

// ShelterType classifies an unguarded mountain shelter.
type ShelterType string

const (
	ShelterTypeNonGuarded     ShelterType = "non_guarded"
	ShelterTypeClosed         ShelterType = "closed"
	ShelterTypeShepherdSummer ShelterType = "shepherd_summer"
	ShelterTypeOrri           ShelterType = "orri"
)

// IsValid checks if the ShelterType is a known value.
func (t ShelterType) IsValid() bool {
	switch t {
	case ShelterTypeNonGuarded, ShelterTypeClosed, ShelterTypeShepherdSummer, ShelterTypeOrri:
		return true
	default:
		return false
	}
}

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat  float64 `json:"lat" firestore:"lat"`
	Long float64 `json:"long" firestore:"long"`
}

// IsValid reports whether both components are inside their geographic ranges.
func (c Coordinate) IsValid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Long >= -180 && c.Long <= 180
}

// MediaMetadata describes one object stored for a shelter.
type MediaMetadata struct {
	CreatorID    string    `json:"creator_id" firestore:"creator_id"`
	UploadedAt   time.Time `json:"uploaded_at" firestore:"uploaded_at"`
	ExperienceID *string   `json:"experience_id,omitempty" firestore:"experience_id,omitempty"`
}

// Shelter is the central record of the catalog.
type Shelter struct {
	ID                       string                   `json:"id"`
	Name                     string                   `json:"name"`
	Surname                  *string                  `json:"surname,omitempty"`
	Coord                    Coordinate               `json:"coord"`
	Altitude                 *float64                 `json:"altitude,omitempty"`
	Places                   *int                     `json:"places,omitempty"`
	Type                     ShelterType              `json:"type,omitempty"`
	Description              string                   `json:"description,omitempty"`
	Remarks                  string                   `json:"remarks,omitempty"`
	InfoComplementaria       map[string]bool          `json:"info_complementaria,omitempty"`
	Links                    []string                 `json:"links,omitempty"`
	Region                   string                   `json:"region,omitempty"`
	Departement              string                   `json:"departement,omitempty"`
	Condition                *float64                 `json:"condition,omitempty"`
	NumContributedConditions int                      `json:"num_contributed_conditions"`
	MediaMetadata            map[string]MediaMetadata `json:"media_metadata,omitempty"`
	Visitors                 []string                 `json:"visitors,omitempty"`
	ModifiedAt               time.Time                `json:"modified_at"`
}

// Clone returns a deep copy so snapshots never alias live data.
func (s *Shelter) Clone() *Shelter {
	if s == nil {
		return nil
	}

	out := *s
	if s.Surname != nil {
		surname := *s.Surname
		out.Surname = &surname
	}
	if s.Altitude != nil {
		altitude := *s.Altitude
		out.Altitude = &altitude
	}
	if s.Places != nil {
		places := *s.Places
		out.Places = &places
	}
	if s.Condition != nil {
		condition := *s.Condition
		out.Condition = &condition
	}
	if s.InfoComplementaria != nil {
		out.InfoComplementaria = make(map[string]bool, len(s.InfoComplementaria))
		for k, v := range s.InfoComplementaria {
			out.InfoComplementaria[k] = v
		}
	}
	if s.MediaMetadata != nil {
		out.MediaMetadata = make(map[string]MediaMetadata, len(s.MediaMetadata))
		for k, v := range s.MediaMetadata {
			out.MediaMetadata[k] = v
		}
	}
	out.Links = append([]string(nil), s.Links...)
	out.Visitors = append([]string(nil), s.Visitors...)

	return &out
}

// MediaKeys lists the storage keys referenced by the shelter's media metadata.
func (s *Shelter) MediaKeys() []string {
	keys := make([]string, 0, len(s.MediaMetadata))
	for key := range s.MediaMetadata {
		keys = append(keys, key)
	}

	return keys
}
