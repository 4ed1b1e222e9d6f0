// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"refugis/internal/domain/entity"
)

// --- Input DTOs ---

// SubmitProposalInput defines the data a user sends to propose a change.
type SubmitProposalInput struct {
	Action    entity.ProposalAction
	ShelterID *string
	Payload   map[string]any
	Comment   *string
}

// ProposalFilter narrows a proposal listing. Nil fields are ignored.
type ProposalFilter struct {
	Status    *entity.ProposalStatus
	ShelterID *string
	CreatorID *string
}

// ModerationUsecase defines the proposal moderation workflow.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type ModerationUsecase interface {
	// Submit validates and stores a new pending proposal authored by the caller.
	Submit(ctx context.Context, caller entity.Identity, input SubmitProposalInput) (*entity.Proposal, error)

	// List returns proposals matching filter, newest first.
	List(ctx context.Context, caller entity.Identity, filter ProposalFilter) ([]*entity.Proposal, error)

	// Get returns a single proposal visible to the caller.
	Get(ctx context.Context, caller entity.Identity, proposalID string) (*entity.Proposal, error)

	// Approve applies a pending proposal to the catalog and marks it approved.
	Approve(ctx context.Context, proposalID, reviewerID string) error

	// Reject marks a pending proposal rejected without touching the catalog.
	Reject(ctx context.Context, proposalID, reviewerID string, reason *string) error

	// AnonymizeCreator detaches every proposal from a deleted user.
	AnonymizeCreator(ctx context.Context, userID string) (int, error)
}
