package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "refugis/internal/delivery/context"
	"refugis/internal/domain/condition"
	"refugis/internal/domain/entity"
	domainerrors "refugis/internal/domain/errors"
	"refugis/internal/domain/geo"
	"refugis/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// shelterNamespace seeds the deterministic shelter ids derived from create proposals.
var shelterNamespace = uuid.MustParse("6f1c3a52-8d0e-4b7a-9c55-2a7e4e0b9d31")

// ShelterIDForProposal returns the id a create proposal materializes into.
func ShelterIDForProposal(proposalID string) string {
	return uuid.NewSHA1(shelterNamespace, []byte(proposalID)).String()
}

// actionStrategy applies one approved proposal to the live shelter data.
type actionStrategy func(ctx context.Context, proposal *entity.Proposal, reviewerID string) error

// shelterStrategies holds the collaborators shared by the create, update and delete executors.
type shelterStrategies struct {
	shelterRepo repository.ShelterRepository
	mirror      *coordinateIndexMirror
	cascade     *cascadeCleaner
	invalidator *cacheInvalidator
	rules       payloadRules
	now         func() time.Time
	logger      *slog.Logger
}

// dispatch maps each action to its executor.
func (s *shelterStrategies) dispatch() map[entity.ProposalAction]actionStrategy {
	return map[entity.ProposalAction]actionStrategy{
		entity.ProposalActionCreate: s.create,
		entity.ProposalActionUpdate: s.update,
		entity.ProposalActionDelete: s.delete,
	}
}

func (s *shelterStrategies) create(ctx context.Context, proposal *entity.Proposal, _ string) error {
	shelter := &entity.Shelter{
		ID:         ShelterIDForProposal(proposal.ID),
		ModifiedAt: proposal.CreatedAt,
	}

	if _, err := applyPayload(shelter, proposal.Payload); err != nil {
		return err
	}

	if raw, ok := proposal.Payload[fieldCondition]; ok {
		score, err := s.rules.parseCondition(raw)
		if err != nil {
			return err
		}
		agg := condition.Initialize(score)
		shelter.Condition = &agg.Condition
		shelter.NumContributedConditions = agg.NumContributedConditions
	}

	if err := s.shelterRepo.Save(ctx, shelter); err != nil {
		return errors.Wrap(err, "failed to write new shelter")
	}

	if err := s.mirror.AddEntry(ctx, shelter.ID, shelter.Name, shelter.Coord, shelter.Surname); err != nil {
		return err
	}

	s.invalidator.InvalidateShelter(ctx, shelter.ID)

	return nil
}

func (s *shelterStrategies) update(ctx context.Context, proposal *entity.Proposal, _ string) error {
	current, err := s.loadTarget(ctx, proposal)
	if err != nil {
		return err
	}

	merged := current.Clone()
	changes, err := applyPayload(merged, proposal.Payload)
	if err != nil {
		return err
	}

	if raw, ok := proposal.Payload[fieldCondition]; ok {
		score, err := s.rules.parseCondition(raw)
		if err != nil {
			return err
		}
		agg := condition.Accumulate(current.Condition, current.NumContributedConditions, score)
		merged.Condition = &agg.Condition
		merged.NumContributedConditions = agg.NumContributedConditions
	}

	merged.ModifiedAt = s.now()

	if err := s.shelterRepo.Save(ctx, merged); err != nil {
		return errors.Wrap(err, "failed to write merged shelter")
	}

	if changes.coord {
		deliverycontext.GetLoggerOrDefault(ctx, s.logger).Info("Shelter coordinates moved",
			slog.String("shelter_id", merged.ID),
			slog.String("proposal_id", proposal.ID),
			slog.Float64("distance_m", geo.DistanceMeters(current.Coord, merged.Coord)),
		)
	}

	if changes.touched() {
		fields := coordinateFields{Name: &merged.Name, Coord: &merged.Coord}
		if changes.surname {
			fields.SetSurname = true
			fields.Surname = merged.Surname
		}
		if err := s.mirror.UpdateEntry(ctx, merged.ID, fields); err != nil {
			return err
		}
	}

	s.invalidator.InvalidateShelter(ctx, merged.ID)

	return nil
}

func (s *shelterStrategies) delete(ctx context.Context, proposal *entity.Proposal, reviewerID string) error {
	shelter, err := s.loadTarget(ctx, proposal)
	if err != nil {
		return err
	}

	if err := s.cascade.Clean(ctx, shelter, proposal.ID, reviewerID); err != nil {
		return err
	}

	if err := s.shelterRepo.Delete(ctx, shelter.ID); err != nil {
		return errors.Wrap(err, "failed to delete shelter")
	}

	if err := s.mirror.RemoveEntry(ctx, shelter.ID); err != nil {
		return err
	}

	s.invalidator.InvalidateShelter(ctx, shelter.ID)

	return nil
}

func (s *shelterStrategies) loadTarget(ctx context.Context, proposal *entity.Proposal) (*entity.Shelter, error) {
	shelter, err := s.shelterRepo.FindByID(ctx, proposal.TargetShelterID())
	if errors.Is(err, repository.ErrShelterNotFound) {
		return nil, domainerrors.ErrTargetMissing.WithDetails(proposal.TargetShelterID())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load target shelter")
	}

	return shelter, nil
}
