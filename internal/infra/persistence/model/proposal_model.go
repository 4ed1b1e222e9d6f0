package model

import (
	"time"

	"refugis/internal/domain/entity"
)

// Proposal document field paths used in queries and updates.
const (
	ProposalFieldStatus          = "status"
	ProposalFieldShelterID       = "shelter_id"
	ProposalFieldCreatorID       = "creator_id"
	ProposalFieldCreatedAt       = "created_at"
	ProposalFieldReviewerID      = "reviewer_id"
	ProposalFieldReviewedAt      = "reviewed_at"
	ProposalFieldRejectionReason = "rejection_reason"
)

// ProposalDoc mirrors a document of the 'proposals' collection.
type ProposalDoc struct {
	Action          string         `firestore:"action"`
	ShelterID       *string        `firestore:"shelter_id"`
	Payload         map[string]any `firestore:"payload"`
	Comment         *string        `firestore:"comment"`
	Status          string         `firestore:"status"`
	CreatorID       string         `firestore:"creator_id"`
	CreatedAt       time.Time      `firestore:"created_at"`
	ReviewerID      *string        `firestore:"reviewer_id"`
	ReviewedAt      *time.Time     `firestore:"reviewed_at"`
	RejectionReason *string        `firestore:"rejection_reason"`
	ShelterSnapshot *ShelterDoc    `firestore:"shelter_snapshot,omitempty"`
	ShelterName     string         `firestore:"shelter_name"`
}

// ProposalToDoc maps a domain proposal to its document.
func ProposalToDoc(p *entity.Proposal) *ProposalDoc {
	doc := &ProposalDoc{
		Action:          string(p.Action),
		ShelterID:       p.ShelterID,
		Payload:         p.Payload,
		Comment:         p.Comment,
		Status:          string(p.Status),
		CreatorID:       p.CreatorID,
		CreatedAt:       p.CreatedAt,
		ReviewerID:      p.ReviewerID,
		ReviewedAt:      p.ReviewedAt,
		RejectionReason: p.RejectionReason,
		ShelterName:     p.ShelterName,
	}
	if p.ShelterSnapshot != nil {
		doc.ShelterSnapshot = ShelterToDoc(p.ShelterSnapshot)
	}

	return doc
}

// ToDomain maps the document back to a proposal with the given id.
func (d *ProposalDoc) ToDomain(id string) *entity.Proposal {
	p := &entity.Proposal{
		ID:              id,
		Action:          entity.ProposalAction(d.Action),
		ShelterID:       d.ShelterID,
		Payload:         d.Payload,
		Comment:         d.Comment,
		Status:          entity.ProposalStatus(d.Status),
		CreatorID:       d.CreatorID,
		CreatedAt:       d.CreatedAt,
		ReviewerID:      d.ReviewerID,
		ReviewedAt:      d.ReviewedAt,
		RejectionReason: d.RejectionReason,
		ShelterName:     d.ShelterName,
	}
	if d.ShelterSnapshot != nil && p.ShelterID != nil {
		p.ShelterSnapshot = d.ShelterSnapshot.ToDomain(*p.ShelterID)
	}

	return p
}
