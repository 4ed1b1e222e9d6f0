package model

import (
	"time"

	"refugis/internal/domain/entity"
)

// Shared field path for the shelter foreign key of dependent collections.
const FieldShelterID = "shelter_id"

// DoubtDoc mirrors a document of the 'doubts' collection.
type DoubtDoc struct {
	ShelterID    string    `firestore:"shelter_id"`
	CreatorID    string    `firestore:"creator_id"`
	Message      string    `firestore:"message"`
	CreatedAt    time.Time `firestore:"created_at"`
	AnswersCount int       `firestore:"answers_count"`
}

// ToDomain maps the document to a doubt.
func (d *DoubtDoc) ToDomain(id string) *entity.Doubt {
	return &entity.Doubt{
		ID:           id,
		ShelterID:    d.ShelterID,
		CreatorID:    d.CreatorID,
		Message:      d.Message,
		CreatedAt:    d.CreatedAt,
		AnswersCount: d.AnswersCount,
	}
}

// ExperienceDoc mirrors a document of the 'experiences' collection.
type ExperienceDoc struct {
	ShelterID  string    `firestore:"shelter_id"`
	CreatorID  string    `firestore:"creator_id"`
	Comment    string    `firestore:"comment"`
	ModifiedAt time.Time `firestore:"modified_at"`
	MediaKeys  []string  `firestore:"media_keys"`
}

// ToDomain maps the document to an experience.
func (d *ExperienceDoc) ToDomain(id string) *entity.Experience {
	return &entity.Experience{
		ID:         id,
		ShelterID:  d.ShelterID,
		CreatorID:  d.CreatorID,
		Comment:    d.Comment,
		ModifiedAt: d.ModifiedAt,
		MediaKeys:  d.MediaKeys,
	}
}

// RenovationDoc mirrors a document of the 'renovations' collection.
type RenovationDoc struct {
	ShelterID    string    `firestore:"shelter_id"`
	CreatorID    string    `firestore:"creator_id"`
	IniDate      time.Time `firestore:"ini_date"`
	FinDate      time.Time `firestore:"fin_date"`
	Participants []string  `firestore:"participants"`
}

// ToDomain maps the document to a renovation.
func (d *RenovationDoc) ToDomain(id string) *entity.Renovation {
	return &entity.Renovation{
		ID:           id,
		ShelterID:    d.ShelterID,
		CreatorID:    d.CreatorID,
		DateRange:    entity.DateRange{Start: d.IniDate, End: d.FinDate},
		Participants: d.Participants,
	}
}
