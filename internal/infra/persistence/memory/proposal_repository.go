package memory

import (
	"context"
	"sort"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/repository"

	"github.com/google/uuid"
)

type proposalRepository struct {
	store *Store
}

// NewProposalRepository returns the proposals collection of store.
func NewProposalRepository(store *Store) repository.ProposalRepository {
	return &proposalRepository{store: store}
}

func (r *proposalRepository) Create(_ context.Context, proposal *entity.Proposal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if proposal.ID == "" {
		proposal.ID = uuid.NewString()
	}
	r.store.proposals[proposal.ID] = copyProposal(proposal)

	return nil
}

func (r *proposalRepository) FindByID(_ context.Context, id string) (*entity.Proposal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	proposal, ok := r.store.proposals[id]
	if !ok {
		return nil, repository.ErrProposalNotFound
	}

	return copyProposal(proposal), nil
}

func (r *proposalRepository) List(_ context.Context, query repository.ProposalQuery) ([]*entity.Proposal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.Proposal, 0)
	for _, proposal := range r.store.proposals {
		if query.Status != nil && proposal.Status != *query.Status {
			continue
		}
		if query.ShelterID != nil && proposal.TargetShelterID() != *query.ShelterID {
			continue
		}
		if query.CreatorID != nil && proposal.CreatorID != *query.CreatorID {
			continue
		}
		out = append(out, copyProposal(proposal))
	}

	sortNewestFirst(out)

	return out, nil
}

func (r *proposalRepository) MarkReviewed(_ context.Context, update repository.ReviewUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	proposal, ok := r.store.proposals[update.ProposalID]
	if !ok {
		return repository.ErrProposalNotFound
	}
	if proposal.Status != entity.ProposalStatusPending {
		return repository.ErrProposalAlreadyReviewed
	}

	reviewer := update.ReviewerID
	reviewedAt := update.ReviewedAt
	proposal.Status = update.Status
	proposal.ReviewerID = &reviewer
	proposal.ReviewedAt = &reviewedAt
	proposal.RejectionReason = copyString(update.RejectionReason)

	return nil
}

func (r *proposalRepository) FindPendingByShelter(ctx context.Context, shelterID string) ([]*entity.Proposal, error) {
	pending := entity.ProposalStatusPending

	return r.List(ctx, repository.ProposalQuery{Status: &pending, ShelterID: &shelterID})
}

func (r *proposalRepository) AnonymizeByCreator(_ context.Context, userID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for _, proposal := range r.store.proposals {
		if proposal.CreatorID == userID {
			proposal.CreatorID = entity.UnknownCreator
			count++
		}
	}

	return count, nil
}

func sortNewestFirst(proposals []*entity.Proposal) {
	sort.SliceStable(proposals, func(i, j int) bool {
		if proposals[i].CreatedAt.Equal(proposals[j].CreatedAt) {
			return proposals[i].ID < proposals[j].ID
		}

		return proposals[i].CreatedAt.After(proposals[j].CreatedAt)
	})
}
