package impl

import (
	"context"
	"log/slog"

	"refugis/internal/domain/service"
)

// Cache keys and prefixes shared with the read paths.
const (
	cacheKeyShelterDetail   = "shelter_detail:"
	cacheKeyShelterSearch   = "shelter_search:*"
	cacheKeyCoordinateIndex = "coordinates_index"
	cacheKeyProposalDetail  = "proposal_detail:"
	cacheKeyProposalList    = "proposal_list:"
	cacheKeyDoubtDetail     = "doubt_detail:"
)

// cacheInvalidator drops cache entries affected by a mutation.
type cacheInvalidator struct {
	cache  service.Cache
	logger *slog.Logger
}

func newCacheInvalidator(cache service.Cache, logger *slog.Logger) *cacheInvalidator {
	return &cacheInvalidator{cache: cache, logger: logger}
}

// InvalidateShelter drops the shelter detail, the coordinate index and every search page.
func (i *cacheInvalidator) InvalidateShelter(ctx context.Context, shelterID string) {
	if i.cache == nil {
		return
	}

	i.cache.Delete(ctx, cacheKeyShelterDetail+shelterID)
	i.cache.Delete(ctx, cacheKeyCoordinateIndex)
	dropped := i.cache.DeletePattern(ctx, cacheKeyShelterSearch)

	i.logger.DebugContext(ctx, "Invalidated shelter cache",
		slog.String("shelter_id", shelterID),
		slog.Int("search_entries", dropped),
	)
}

// InvalidateProposal drops the proposal detail and every proposal listing.
func (i *cacheInvalidator) InvalidateProposal(ctx context.Context, proposalID string) {
	if i.cache == nil {
		return
	}

	i.cache.Delete(ctx, cacheKeyProposalDetail+proposalID)
	i.cache.DeletePattern(ctx, cacheKeyProposalList+"*")
}

// InvalidateDoubt drops a doubt detail entry.
func (i *cacheInvalidator) InvalidateDoubt(ctx context.Context, doubtID string) {
	if i.cache == nil {
		return
	}

	i.cache.Delete(ctx, cacheKeyDoubtDetail+doubtID)
}
