package repository

import (
	"context"
	"time"

	"refugis/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for proposal persistence.
var (
	// ErrProposalNotFound is returned when a proposal is not found.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrProposalAlreadyReviewed is returned when a conditional review finds a non-pending proposal.
	ErrProposalAlreadyReviewed = errors.New("proposal already reviewed")
)

// ProposalQuery filters proposals by equality. Nil fields are ignored.
type ProposalQuery struct {
	Status    *entity.ProposalStatus
	ShelterID *string
	CreatorID *string
}

// ReviewUpdate is the terminal transition applied by MarkReviewed.
type ReviewUpdate struct {
	ProposalID      string
	Status          entity.ProposalStatus
	ReviewerID      string
	ReviewedAt      time.Time
	RejectionReason *string
}

// ProposalRepository defines the durable operations over the proposals collection.
type ProposalRepository interface {
	// Create persists a new proposal, assigning an id when empty.
	Create(ctx context.Context, proposal *entity.Proposal) error

	// FindByID retrieves a proposal by its id.
	FindByID(ctx context.Context, id string) (*entity.Proposal, error)

	// List returns proposals matching every supplied filter, newest first.
	List(ctx context.Context, query ProposalQuery) ([]*entity.Proposal, error)

	// MarkReviewed moves a pending proposal to a terminal status.
	// It returns ErrProposalAlreadyReviewed when the stored status is not pending.
	MarkReviewed(ctx context.Context, update ReviewUpdate) error

	// FindPendingByShelter lists pending proposals targeting a shelter.
	FindPendingByShelter(ctx context.Context, shelterID string) ([]*entity.Proposal, error)

	// AnonymizeByCreator rewrites creator_id to entity.UnknownCreator on every proposal by userID.
	AnonymizeByCreator(ctx context.Context, userID string) (int, error)
}
