// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"refugis/config"
	deliverycontext "refugis/internal/delivery/context"
	"refugis/internal/domain/entity"
	domainerrors "refugis/internal/domain/errors"
	"refugis/internal/domain/repository"
	"refugis/internal/domain/service"
	"refugis/internal/usecase"
	"refugis/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// moderationService implements the ModerationUsecase interface.
type moderationService struct {
	proposalRepo repository.ProposalRepository
	shelterRepo  repository.ShelterRepository
	cache        service.Cache
	publisher    service.EventPublisher
	invalidator  *cacheInvalidator
	strategies   map[entity.ProposalAction]actionStrategy
	rules        payloadRules
	proposalTTL  time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// ModerationServiceParams holds dependencies for ModerationService, injected by Fx.
type ModerationServiceParams struct {
	fx.In

	ProposalRepo    repository.ProposalRepository
	ShelterRepo     repository.ShelterRepository
	CoordinateRepo  repository.CoordinateIndexRepository
	DoubtRepo       repository.DoubtRepository
	ExperienceRepo  repository.ExperienceRepository
	RenovationRepo  repository.RenovationRepository
	Storage         service.MediaStorage
	Cache           service.Cache
	Publisher       service.EventPublisher `optional:"true"`
	Config          *config.Config
	Logger          *slog.Logger
	Clock           util.Clock `optional:"true"`
}

// NewModerationService is the constructor for moderationService. It receives all dependencies as interfaces.
func NewModerationService(params ModerationServiceParams) usecase.ModerationUsecase {
	modCfg := config.DefaultModerationConfig()
	if params.Config != nil && params.Config.Moderation != nil {
		modCfg = params.Config.Moderation
	}

	now := params.Clock
	if now == nil {
		now = util.Now
	}

	invalidator := newCacheInvalidator(params.Cache, params.Logger)
	rules := newPayloadRules(modCfg)

	strategies := &shelterStrategies{
		shelterRepo: params.ShelterRepo,
		mirror:      newCoordinateIndexMirror(params.CoordinateRepo, modCfg.GeohashPrecision, now),
		cascade: &cascadeCleaner{
			doubtRepo:      params.DoubtRepo,
			experienceRepo: params.ExperienceRepo,
			renovationRepo: params.RenovationRepo,
			proposalRepo:   params.ProposalRepo,
			storage:        params.Storage,
			invalidator:    invalidator,
			now:            now,
			logger:         params.Logger,
		},
		invalidator: invalidator,
		rules:       rules,
		now:         now,
		logger:      params.Logger,
	}

	return &moderationService{
		proposalRepo: params.ProposalRepo,
		shelterRepo:  params.ShelterRepo,
		cache:        params.Cache,
		publisher:    params.Publisher,
		invalidator:  invalidator,
		strategies:   strategies.dispatch(),
		rules:        rules,
		proposalTTL:  modCfg.CacheTTLProposal,
		now:          now,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *moderationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Submit validates the request shape, snapshots the target and stores a pending proposal.
func (srv *moderationService) Submit(ctx context.Context, caller entity.Identity, input usecase.SubmitProposalInput) (*entity.Proposal, error) {
	if caller.UserID == "" {
		return nil, domainerrors.ErrUnauthorized
	}

	if err := srv.validateShape(input); err != nil {
		return nil, err
	}

	proposal := &entity.Proposal{
		ID:        uuid.NewString(),
		Action:    input.Action,
		ShelterID: input.ShelterID,
		Payload:   input.Payload,
		Comment:   input.Comment,
		Status:    entity.ProposalStatusPending,
		CreatorID: caller.UserID,
		CreatedAt: srv.now(),
	}

	switch input.Action {
	case entity.ProposalActionCreate:
		proposal.ShelterName = shelterNameFromPayload(input.Payload)
	case entity.ProposalActionUpdate, entity.ProposalActionDelete:
		shelter, err := srv.shelterRepo.FindByID(ctx, *input.ShelterID)
		if errors.Is(err, repository.ErrShelterNotFound) {
			return nil, domainerrors.ErrTargetMissing.WithDetails(*input.ShelterID)
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to load target shelter")
		}
		proposal.ShelterSnapshot = shelter.Clone()
		proposal.ShelterName = shelter.Name
	}

	if err := proposal.Validate(); err != nil {
		return nil, invalidRequest("%s", err.Error())
	}

	if err := srv.proposalRepo.Create(ctx, proposal); err != nil {
		srv.log(ctx).Error("Failed to store proposal", slog.String("action", string(proposal.Action)), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store proposal")
	}

	srv.invalidator.InvalidateProposal(ctx, proposal.ID)

	srv.log(ctx).Info("Proposal submitted",
		slog.String("proposal_id", proposal.ID),
		slog.String("action", string(proposal.Action)),
		slog.String("creator_id", proposal.CreatorID),
	)

	return proposal, nil
}

func (srv *moderationService) validateShape(input usecase.SubmitProposalInput) error {
	if !input.Action.IsValid() {
		return invalidRequest("action must be one of create, update, delete")
	}

	hasShelter := input.ShelterID != nil
	if hasShelter && strings.TrimSpace(*input.ShelterID) == "" {
		return invalidRequest("shelter_id must not be empty")
	}

	switch input.Action {
	case entity.ProposalActionCreate:
		if hasShelter {
			return invalidRequest("create proposals must not set shelter_id")
		}
		if input.Payload == nil {
			return invalidRequest("create proposals require a payload")
		}
	case entity.ProposalActionUpdate:
		if !hasShelter {
			return invalidRequest("update proposals require shelter_id")
		}
		if input.Payload == nil {
			return invalidRequest("update proposals require a payload")
		}
	case entity.ProposalActionDelete:
		if !hasShelter {
			return invalidRequest("delete proposals require shelter_id")
		}
		if input.Payload != nil {
			return invalidRequest("delete proposals must not carry a payload")
		}

		return nil
	}

	return srv.rules.validate(input.Action, input.Payload)
}

// List enforces the filter rules and returns matching proposals newest first.
func (srv *moderationService) List(ctx context.Context, caller entity.Identity, filter usecase.ProposalFilter) ([]*entity.Proposal, error) {
	if caller.UserID == "" {
		return nil, domainerrors.ErrUnauthorized
	}

	if filter.ShelterID != nil && filter.CreatorID != nil {
		return nil, domainerrors.ErrInvalidFilter
	}

	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, invalidRequest("unknown status %q", *filter.Status)
	}

	if !caller.IsAdmin {
		if filter.ShelterID != nil {
			return nil, domainerrors.ErrForbidden.WithDetails("only administrators can filter by shelter")
		}
		if filter.CreatorID == nil {
			own := caller.UserID
			filter.CreatorID = &own
		} else if *filter.CreatorID != caller.UserID {
			return nil, domainerrors.ErrForbidden.WithDetails("cannot list another user's proposals")
		}
	}

	cacheKey := proposalListCacheKey(filter)
	var cached []*entity.Proposal
	if srv.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	proposals, err := srv.proposalRepo.List(ctx, repository.ProposalQuery{
		Status:    filter.Status,
		ShelterID: filter.ShelterID,
		CreatorID: filter.CreatorID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list proposals")
	}

	srv.writeCache(ctx, cacheKey, proposals)

	return proposals, nil
}

// Get returns one proposal; non-administrators only see their own.
func (srv *moderationService) Get(ctx context.Context, caller entity.Identity, proposalID string) (*entity.Proposal, error) {
	if caller.UserID == "" {
		return nil, domainerrors.ErrUnauthorized
	}

	var proposal *entity.Proposal
	if !srv.readCache(ctx, cacheKeyProposalDetail+proposalID, &proposal) || proposal == nil {
		var err error
		proposal, err = srv.loadProposal(ctx, proposalID)
		if err != nil {
			return nil, err
		}
		srv.writeCache(ctx, cacheKeyProposalDetail+proposalID, proposal)
	}

	if !caller.IsAdmin && proposal.CreatorID != caller.UserID {
		return nil, domainerrors.ErrForbidden.WithDetails("cannot read another user's proposal")
	}

	return proposal, nil
}

// Approve runs the action strategy first and records the terminal state only after it succeeds.
func (srv *moderationService) Approve(ctx context.Context, proposalID, reviewerID string) error {
	proposal, err := srv.loadPending(ctx, proposalID)
	if err != nil {
		return err
	}

	execute, ok := srv.strategies[proposal.Action]
	if !ok {
		return invalidRequest("no strategy for action %q", proposal.Action)
	}

	if err := execute(ctx, proposal, reviewerID); err != nil {
		srv.log(ctx).Warn("Proposal strategy failed, proposal stays pending",
			slog.String("proposal_id", proposal.ID),
			slog.String("action", string(proposal.Action)),
			slog.Any("error", err),
		)

		return err
	}

	return srv.finishReview(ctx, proposal, entity.ProposalStatusApproved, reviewerID, nil)
}

// Reject marks a pending proposal rejected with an optional reason.
func (srv *moderationService) Reject(ctx context.Context, proposalID, reviewerID string, reason *string) error {
	proposal, err := srv.loadPending(ctx, proposalID)
	if err != nil {
		return err
	}

	return srv.finishReview(ctx, proposal, entity.ProposalStatusRejected, reviewerID, reason)
}

// AnonymizeCreator rewrites the creator of every proposal by userID to the unknown sentinel.
func (srv *moderationService) AnonymizeCreator(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" || userID == entity.UnknownCreator {
		return 0, invalidRequest("a real user id is required")
	}

	count, err := srv.proposalRepo.AnonymizeByCreator(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to anonymize proposals")
	}

	if srv.cache != nil {
		srv.cache.DeletePattern(ctx, cacheKeyProposalDetail+"*")
		srv.cache.DeletePattern(ctx, cacheKeyProposalList+"*")
	}

	srv.log(ctx).Info("Anonymized proposals", slog.String("user_id", userID), slog.Int("count", count))

	return count, nil
}

func (srv *moderationService) loadProposal(ctx context.Context, proposalID string) (*entity.Proposal, error) {
	proposal, err := srv.proposalRepo.FindByID(ctx, proposalID)
	if errors.Is(err, repository.ErrProposalNotFound) {
		return nil, domainerrors.ErrProposalNotFound.WithDetails(proposalID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load proposal")
	}

	return proposal, nil
}

func (srv *moderationService) loadPending(ctx context.Context, proposalID string) (*entity.Proposal, error) {
	proposal, err := srv.loadProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if proposal.Status != entity.ProposalStatusPending {
		return nil, domainerrors.ErrAlreadyReviewed.WithDetails(string(proposal.Status))
	}

	return proposal, nil
}

func (srv *moderationService) finishReview(ctx context.Context, proposal *entity.Proposal, status entity.ProposalStatus, reviewerID string, reason *string) error {
	reviewedAt := srv.now()

	err := srv.proposalRepo.MarkReviewed(ctx, repository.ReviewUpdate{
		ProposalID:      proposal.ID,
		Status:          status,
		ReviewerID:      reviewerID,
		ReviewedAt:      reviewedAt,
		RejectionReason: reason,
	})
	if errors.Is(err, repository.ErrProposalAlreadyReviewed) {
		return domainerrors.ErrAlreadyReviewed
	}
	if errors.Is(err, repository.ErrProposalNotFound) {
		return domainerrors.ErrProposalNotFound.WithDetails(proposal.ID)
	}
	if err != nil {
		return errors.Wrap(err, "failed to record review")
	}

	srv.invalidator.InvalidateProposal(ctx, proposal.ID)

	srv.log(ctx).Info("Proposal reviewed",
		slog.String("proposal_id", proposal.ID),
		slog.String("status", string(status)),
		slog.String("reviewer_id", reviewerID),
	)

	srv.publishReview(ctx, proposal, status, reviewerID, reason, reviewedAt)

	return nil
}

// publishReview is best effort; the review is already durable.
func (srv *moderationService) publishReview(ctx context.Context, proposal *entity.Proposal, status entity.ProposalStatus, reviewerID string, reason *string, reviewedAt time.Time) {
	if srv.publisher == nil {
		return
	}

	event := &service.ModerationEvent{
		RequestID:   deliverycontext.GetRequestIDFromContext(ctx),
		ProposalID:  proposal.ID,
		Action:      string(proposal.Action),
		Status:      string(status),
		ShelterID:   proposal.TargetShelterID(),
		ShelterName: proposal.ShelterName,
		CreatorID:   proposal.CreatorID,
		ReviewerID:  reviewerID,
		ReviewedAt:  reviewedAt,
	}
	if proposal.Action == entity.ProposalActionCreate && status == entity.ProposalStatusApproved {
		event.ShelterID = ShelterIDForProposal(proposal.ID)
	}
	if reason != nil {
		event.RejectionReason = *reason
	}

	if err := srv.publisher.PublishModerationEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish moderation event",
			slog.String("proposal_id", proposal.ID),
			slog.Any("error", err),
		)
	}
}

func proposalListCacheKey(filter usecase.ProposalFilter) string {
	part := func(s *string) string {
		if s == nil {
			return "-"
		}

		return *s
	}

	status := "-"
	if filter.Status != nil {
		status = string(*filter.Status)
	}

	return cacheKeyProposalList + status + "|" + part(filter.ShelterID) + "|" + part(filter.CreatorID)
}

func (srv *moderationService) readCache(ctx context.Context, key string, dst any) bool {
	if srv.cache == nil {
		return false
	}

	raw, ok := srv.cache.Get(ctx, key)
	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		srv.cache.Delete(ctx, key)

		return false
	}

	return true
}

func (srv *moderationService) writeCache(ctx context.Context, key string, value any) {
	if srv.cache == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		srv.log(ctx).Debug("Skipping cache write", slog.String("key", key), slog.Any("error", err))

		return
	}

	srv.cache.Set(ctx, key, raw, srv.proposalTTL)
}
