package firestore

import (
	"context"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/repository"
	"refugis/internal/errors"
	"refugis/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
)

type proposalRepository struct {
	client *firestore.Client
}

// NewProposalRepository returns a ProposalRepository backed by the 'proposals' collection.
func NewProposalRepository(client *firestore.Client) repository.ProposalRepository {
	return &proposalRepository{client: client}
}

func (repo *proposalRepository) collection() *firestore.CollectionRef {
	return repo.client.Collection(collectionProposals)
}

func (repo *proposalRepository) Create(ctx context.Context, proposal *entity.Proposal) error {
	ref := repo.collection().NewDoc()
	if proposal.ID != "" {
		ref = repo.collection().Doc(proposal.ID)
	}

	if _, err := ref.Create(ctx, model.ProposalToDoc(proposal)); err != nil {
		return errors.Wrap(err, "failed to create proposal")
	}
	proposal.ID = ref.ID

	return nil
}

func (repo *proposalRepository) FindByID(ctx context.Context, id string) (*entity.Proposal, error) {
	snap, err := repo.collection().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrProposalNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find proposal by id")
	}

	var doc model.ProposalDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode proposal")
	}

	return doc.ToDomain(snap.Ref.ID), nil
}

func (repo *proposalRepository) List(ctx context.Context, query repository.ProposalQuery) ([]*entity.Proposal, error) {
	q := repo.collection().Query
	if query.Status != nil {
		q = q.Where(model.ProposalFieldStatus, "==", string(*query.Status))
	}
	if query.ShelterID != nil {
		q = q.Where(model.ProposalFieldShelterID, "==", *query.ShelterID)
	}
	if query.CreatorID != nil {
		q = q.Where(model.ProposalFieldCreatorID, "==", *query.CreatorID)
	}
	q = q.OrderBy(model.ProposalFieldCreatedAt, firestore.Desc)

	return collectDocs(q.Documents(ctx), (*model.ProposalDoc).ToDomain)
}

// MarkReviewed reads and writes inside one transaction so concurrent reviews of the same
// proposal serialize and only the first one succeeds.
func (repo *proposalRepository) MarkReviewed(ctx context.Context, update repository.ReviewUpdate) error {
	ref := repo.collection().Doc(update.ProposalID)

	err := repo.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return repository.ErrProposalNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to read proposal")
		}

		current, err := snap.DataAt(model.ProposalFieldStatus)
		if err != nil {
			return errors.Wrap(err, "failed to read proposal status")
		}
		if current != string(entity.ProposalStatusPending) {
			return repository.ErrProposalAlreadyReviewed
		}

		return tx.Update(ref, []firestore.Update{
			{Path: model.ProposalFieldStatus, Value: string(update.Status)},
			{Path: model.ProposalFieldReviewerID, Value: update.ReviewerID},
			{Path: model.ProposalFieldReviewedAt, Value: update.ReviewedAt},
			{Path: model.ProposalFieldRejectionReason, Value: update.RejectionReason},
		})
	})
	if errors.Is(err, repository.ErrProposalNotFound) || errors.Is(err, repository.ErrProposalAlreadyReviewed) {
		return err
	}
	if err != nil {
		return errors.Wrap(err, "failed to mark proposal reviewed")
	}

	return nil
}

func (repo *proposalRepository) FindPendingByShelter(ctx context.Context, shelterID string) ([]*entity.Proposal, error) {
	pending := entity.ProposalStatusPending

	return repo.List(ctx, repository.ProposalQuery{Status: &pending, ShelterID: &shelterID})
}

func (repo *proposalRepository) AnonymizeByCreator(ctx context.Context, userID string) (int, error) {
	iter := repo.collection().Where(model.ProposalFieldCreatorID, "==", userID).Documents(ctx)
	snaps, err := iter.GetAll()
	if err != nil {
		return 0, errors.Wrap(err, "failed to find proposals by creator")
	}
	if len(snaps) == 0 {
		return 0, nil
	}

	writer := repo.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(snaps))
	for _, snap := range snaps {
		job, err := writer.Update(snap.Ref, []firestore.Update{
			{Path: model.ProposalFieldCreatorID, Value: entity.UnknownCreator},
		})
		if err != nil {
			writer.End()

			return 0, errors.Wrap(err, "failed to queue proposal anonymization")
		}
		jobs = append(jobs, job)
	}
	writer.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return 0, errors.Wrap(err, "failed to anonymize proposal")
		}
	}

	return len(snaps), nil
}
