package entity

import "time"

// Doubt is a question posted by a user about a shelter.
type Doubt struct {
	ID           string    `json:"id"`
	ShelterID    string    `json:"shelter_id"`
	CreatorID    string    `json:"creator_id"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	AnswersCount int       `json:"answers_count"`
}

// Answer replies to a doubt or to another answer.
type Answer struct {
	ID             string    `json:"id"`
	CreatorID      string    `json:"creator_id"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	ParentAnswerID *string   `json:"parent_answer_id,omitempty"`
}

// Experience records a user's visit, optionally with photos.
type Experience struct {
	ID         string    `json:"id"`
	ShelterID  string    `json:"shelter_id"`
	CreatorID  string    `json:"creator_id"`
	Comment    string    `json:"comment"`
	ModifiedAt time.Time `json:"modified_at"`
	MediaKeys  []string  `json:"media_keys"`
}

// DateRange is an inclusive pair of dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Renovation is a volunteer work session planned on a shelter.
type Renovation struct {
	ID           string    `json:"id"`
	ShelterID    string    `json:"shelter_id"`
	CreatorID    string    `json:"creator_id"`
	DateRange    DateRange `json:"date_range"`
	Participants []string  `json:"participants"`
}
