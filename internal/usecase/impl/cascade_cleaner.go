package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "refugis/internal/delivery/context"
	"refugis/internal/domain/entity"
	domainerrors "refugis/internal/domain/errors"
	"refugis/internal/domain/repository"
	"refugis/internal/domain/service"

	"github.com/pkg/errors"
)

// TargetDeletedReason is recorded on proposals auto-rejected by a shelter deletion.
const TargetDeletedReason = "target shelter deleted"

// cascadeCleaner removes everything a shelter owns. Every step is idempotent and
// the sequence stops at the first error so an operator can rerun the approval.
type cascadeCleaner struct {
	doubtRepo      repository.DoubtRepository
	experienceRepo repository.ExperienceRepository
	renovationRepo repository.RenovationRepository
	proposalRepo   repository.ProposalRepository
	storage        service.MediaStorage
	invalidator    *cacheInvalidator
	now            func() time.Time
	logger         *slog.Logger
}

func (c *cascadeCleaner) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, c.logger)
}

// Clean runs the cascade for shelter. excludeProposalID is the delete proposal being approved.
func (c *cascadeCleaner) Clean(ctx context.Context, shelter *entity.Shelter, excludeProposalID, reviewerID string) error {
	if err := c.deleteDoubts(ctx, shelter.ID); err != nil {
		return err
	}

	experienceKeys, err := c.deleteExperiences(ctx, shelter.ID)
	if err != nil {
		return err
	}

	if err := c.deleteMedia(ctx, shelter, experienceKeys); err != nil {
		return err
	}

	if err := c.deleteRenovations(ctx, shelter.ID); err != nil {
		return err
	}

	return c.rejectPendingProposals(ctx, shelter.ID, excludeProposalID, reviewerID)
}

func (c *cascadeCleaner) deleteDoubts(ctx context.Context, shelterID string) error {
	doubts, err := c.doubtRepo.FindByShelter(ctx, shelterID)
	if err != nil {
		return errors.Wrap(err, "failed to list doubts")
	}

	for _, doubt := range doubts {
		if err := c.doubtRepo.DeleteAnswers(ctx, doubt.ID); err != nil {
			return errors.Wrapf(err, "failed to delete answers of doubt %s", doubt.ID)
		}
		if err := c.doubtRepo.Delete(ctx, doubt.ID); err != nil {
			return errors.Wrapf(err, "failed to delete doubt %s", doubt.ID)
		}
		c.invalidator.InvalidateDoubt(ctx, doubt.ID)
	}

	c.log(ctx).Debug("Deleted shelter doubts", slog.String("shelter_id", shelterID), slog.Int("count", len(doubts)))

	return nil
}

func (c *cascadeCleaner) deleteExperiences(ctx context.Context, shelterID string) ([]string, error) {
	experiences, err := c.experienceRepo.FindByShelter(ctx, shelterID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list experiences")
	}

	var keys []string
	for _, experience := range experiences {
		keys = append(keys, experience.MediaKeys...)
		if err := c.experienceRepo.Delete(ctx, experience.ID); err != nil {
			return nil, errors.Wrapf(err, "failed to delete experience %s", experience.ID)
		}
	}

	c.log(ctx).Debug("Deleted shelter experiences", slog.String("shelter_id", shelterID), slog.Int("count", len(experiences)))

	return keys, nil
}

func (c *cascadeCleaner) deleteMedia(ctx context.Context, shelter *entity.Shelter, extra []string) error {
	seen := make(map[string]struct{}, len(shelter.MediaMetadata)+len(extra))
	keys := make([]string, 0, len(shelter.MediaMetadata)+len(extra))
	for _, key := range append(shelter.MediaKeys(), extra...) {
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.storage.DeleteBatch(ctx, keys); err != nil {
		c.log(ctx).Error("Failed to delete shelter media",
			slog.String("shelter_id", shelter.ID),
			slog.Int("keys", len(keys)),
			slog.Any("error", err),
		)

		return domainerrors.ErrMediaCleanupFailed.WithDetails(err.Error())
	}

	return nil
}

func (c *cascadeCleaner) deleteRenovations(ctx context.Context, shelterID string) error {
	renovations, err := c.renovationRepo.FindByShelter(ctx, shelterID)
	if err != nil {
		return errors.Wrap(err, "failed to list renovations")
	}

	for _, renovation := range renovations {
		if err := c.renovationRepo.Delete(ctx, renovation.ID); err != nil {
			return errors.Wrapf(err, "failed to delete renovation %s", renovation.ID)
		}
	}

	return nil
}

func (c *cascadeCleaner) rejectPendingProposals(ctx context.Context, shelterID, excludeProposalID, reviewerID string) error {
	pending, err := c.proposalRepo.FindPendingByShelter(ctx, shelterID)
	if err != nil {
		return errors.Wrap(err, "failed to list pending proposals")
	}

	reason := TargetDeletedReason
	rejected := 0
	for _, proposal := range pending {
		if proposal.ID == excludeProposalID {
			continue
		}

		err := c.proposalRepo.MarkReviewed(ctx, repository.ReviewUpdate{
			ProposalID:      proposal.ID,
			Status:          entity.ProposalStatusRejected,
			ReviewerID:      reviewerID,
			ReviewedAt:      c.now(),
			RejectionReason: &reason,
		})
		if errors.Is(err, repository.ErrProposalAlreadyReviewed) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "failed to reject proposal %s", proposal.ID)
		}

		c.invalidator.InvalidateProposal(ctx, proposal.ID)
		rejected++
	}

	if rejected > 0 {
		c.log(ctx).Info("Rejected proposals targeting deleted shelter",
			slog.String("shelter_id", shelterID),
			slog.Int("count", rejected),
		)
	}

	return nil
}
