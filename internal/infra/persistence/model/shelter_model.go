// Package model holds the Firestore document shapes. Field names match the stored documents.
package model

import (
	"time"

	"refugis/internal/domain/entity"
)

// ShelterDoc mirrors a document of the 'shelters' collection. The id is the document id.
type ShelterDoc struct {
	Name                     string                          `firestore:"name"`
	Surname                  *string                         `firestore:"surname"`
	Coord                    entity.Coordinate               `firestore:"coord"`
	Altitude                 *float64                        `firestore:"altitude"`
	Places                   *int                            `firestore:"places"`
	Type                     string                          `firestore:"type,omitempty"`
	Description              string                          `firestore:"description,omitempty"`
	Remarks                  string                          `firestore:"remarks,omitempty"`
	InfoComplementaria       map[string]bool                 `firestore:"info_complementaria,omitempty"`
	Links                    []string                        `firestore:"links,omitempty"`
	Region                   string                          `firestore:"region,omitempty"`
	Departement              string                          `firestore:"departement,omitempty"`
	Condition                *float64                        `firestore:"condition"`
	NumContributedConditions int                             `firestore:"num_contributed_conditions"`
	MediaMetadata            map[string]entity.MediaMetadata `firestore:"media_metadata,omitempty"`
	Visitors                 []string                        `firestore:"visitors,omitempty"`
	ModifiedAt               time.Time                       `firestore:"modified_at"`
}

// ShelterToDoc maps a domain shelter to its document.
func ShelterToDoc(s *entity.Shelter) *ShelterDoc {
	c := s.Clone()

	return &ShelterDoc{
		Name:                     c.Name,
		Surname:                  c.Surname,
		Coord:                    c.Coord,
		Altitude:                 c.Altitude,
		Places:                   c.Places,
		Type:                     string(c.Type),
		Description:              c.Description,
		Remarks:                  c.Remarks,
		InfoComplementaria:       c.InfoComplementaria,
		Links:                    c.Links,
		Region:                   c.Region,
		Departement:              c.Departement,
		Condition:                c.Condition,
		NumContributedConditions: c.NumContributedConditions,
		MediaMetadata:            c.MediaMetadata,
		Visitors:                 c.Visitors,
		ModifiedAt:               c.ModifiedAt,
	}
}

// ToDomain maps the document back to a shelter with the given id.
func (d *ShelterDoc) ToDomain(id string) *entity.Shelter {
	return &entity.Shelter{
		ID:                       id,
		Name:                     d.Name,
		Surname:                  d.Surname,
		Coord:                    d.Coord,
		Altitude:                 d.Altitude,
		Places:                   d.Places,
		Type:                     entity.ShelterType(d.Type),
		Description:              d.Description,
		Remarks:                  d.Remarks,
		InfoComplementaria:       d.InfoComplementaria,
		Links:                    d.Links,
		Region:                   d.Region,
		Departement:              d.Departement,
		Condition:                d.Condition,
		NumContributedConditions: d.NumContributedConditions,
		MediaMetadata:            d.MediaMetadata,
		Visitors:                 d.Visitors,
		ModifiedAt:               d.ModifiedAt,
	}
}
