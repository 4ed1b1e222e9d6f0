package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"refugis/config"
	"refugis/internal/domain/entity"
	domainerrors "refugis/internal/domain/errors"
	"refugis/internal/domain/geo"
	"refugis/internal/domain/repository"
	"refugis/internal/domain/service"
	"refugis/internal/infra/cache"
	"refugis/internal/infra/persistence/memory"
	"refugis/internal/infra/storage"
	"refugis/internal/usecase"
	"refugis/internal/util"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

var (
	userOne   = entity.Identity{UserID: "u1"}
	userTwo   = entity.Identity{UserID: "u2"}
	adminOne  = entity.Identity{UserID: "a1", IsAdmin: true}
	fixedTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
)

// recordingPublisher keeps every published event for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []service.ModerationEvent
	err    error
}

func (p *recordingPublisher) PublishModerationEvent(_ context.Context, event *service.ModerationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, *event)

	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// mockMediaStorage lets a test force object store failures.
type mockMediaStorage struct {
	mock.Mock
}

func (m *mockMediaStorage) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	return m.Called(ctx, key, contentType, body).Error(0)
}

func (m *mockMediaStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockMediaStorage) DeleteBatch(ctx context.Context, keys []string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockMediaStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)

	return args.String(0), args.Error(1)
}

// moderationFixtures holds all test dependencies for moderation service tests.
type moderationFixtures struct {
	service     usecase.ModerationUsecase
	store       *memory.Store
	bucket      *blob.Bucket
	cache       *cache.MemoryCache
	publisher   *recordingPublisher
	shelters    repository.ShelterRepository
	proposals   repository.ProposalRepository
	coordinates repository.CoordinateIndexRepository
	doubts      repository.DoubtRepository
	experiences repository.ExperienceRepository
	renovations repository.RenovationRepository
	media       service.MediaStorage
}

func createTestModerationService(t *testing.T, media service.MediaStorage) moderationFixtures {
	t.Helper()

	logger := slog.Default()
	store := memory.NewStore()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	if media == nil {
		media = storage.NewBlobStorage(bucket, logger)
	}

	fx := moderationFixtures{
		store:       store,
		bucket:      bucket,
		cache:       cache.NewMemoryCache(logger),
		publisher:   &recordingPublisher{},
		shelters:    memory.NewShelterRepository(store),
		proposals:   memory.NewProposalRepository(store),
		coordinates: memory.NewCoordinateIndexRepository(store),
		doubts:      memory.NewDoubtRepository(store),
		experiences: memory.NewExperienceRepository(store),
		renovations: memory.NewRenovationRepository(store),
		media:       media,
	}

	fx.service = NewModerationService(ModerationServiceParams{
		ProposalRepo:   fx.proposals,
		ShelterRepo:    fx.shelters,
		CoordinateRepo: fx.coordinates,
		DoubtRepo:      fx.doubts,
		ExperienceRepo: fx.experiences,
		RenovationRepo: fx.renovations,
		Storage:        media,
		Cache:          fx.cache,
		Publisher:      fx.publisher,
		Config:         &config.Config{Moderation: config.DefaultModerationConfig()},
		Logger:         logger,
		Clock:          func() time.Time { return fixedTime },
	})

	return fx
}

func refugeAPayload() map[string]any {
	return map[string]any{
		"name":      "Refuge A",
		"coord":     map[string]any{"lat": 42.5, "long": 1.5},
		"altitude":  2000.0,
		"condition": 2.0,
	}
}

func strPtr(s string) *string { return &s }

// seedShelter stores a shelter through the same path an approved create takes.
func (fx moderationFixtures) seedShelter(t *testing.T, payload map[string]any) *entity.Shelter {
	t.Helper()
	ctx := context.Background()

	proposal, err := fx.service.Submit(ctx, userOne, usecase.SubmitProposalInput{
		Action:  entity.ProposalActionCreate,
		Payload: payload,
	})
	require.NoError(t, err)
	require.NoError(t, fx.service.Approve(ctx, proposal.ID, adminOne.UserID))

	shelter, err := fx.shelters.FindByID(ctx, ShelterIDForProposal(proposal.ID))
	require.NoError(t, err)

	return shelter
}

func (fx moderationFixtures) submitUpdate(t *testing.T, shelterID string, payload map[string]any) *entity.Proposal {
	t.Helper()

	proposal, err := fx.service.Submit(context.Background(), userOne, usecase.SubmitProposalInput{
		Action:    entity.ProposalActionUpdate,
		ShelterID: strPtr(shelterID),
		Payload:   payload,
	})
	require.NoError(t, err)

	return proposal
}

func TestModerationService_SubmitApproveCreate(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	proposal, err := fx.service.Submit(ctx, userOne, usecase.SubmitProposalInput{
		Action:  entity.ProposalActionCreate,
		Payload: refugeAPayload(),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusPending, proposal.Status)
	assert.Equal(t, "u1", proposal.CreatorID)
	assert.Equal(t, "Refuge A", proposal.ShelterName)
	assert.Equal(t, fixedTime, proposal.CreatedAt)

	require.NoError(t, fx.service.Approve(ctx, proposal.ID, adminOne.UserID))

	shelter, err := fx.shelters.FindByID(ctx, ShelterIDForProposal(proposal.ID))
	require.NoError(t, err)
	require.NotNil(t, shelter.Condition)
	assert.InDelta(t, 2.0, *shelter.Condition, 1e-9)
	assert.Equal(t, 1, shelter.NumContributedConditions)
	assert.Equal(t, "Refuge A", shelter.Name)
	require.NotNil(t, shelter.Altitude)
	assert.InDelta(t, 2000.0, *shelter.Altitude, 1e-9)

	index, err := fx.coordinates.Get(ctx)
	require.NoError(t, err)
	require.Len(t, index.Entries, 1)
	assert.Equal(t, "Refuge A", index.Entries[0].Name)
	assert.Equal(t, shelter.ID, index.Entries[0].ShelterID)
	assert.Equal(t, geo.Encode(entity.Coordinate{Lat: 42.5, Long: 1.5}, geo.DefaultPrecision), index.Entries[0].Geohash)
	assert.Equal(t, 1, index.Total)

	stored, err := fx.proposals.FindByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewerID)
	assert.Equal(t, "a1", *stored.ReviewerID)
	require.NotNil(t, stored.ReviewedAt)
	assert.Equal(t, fixedTime, *stored.ReviewedAt)

	require.Len(t, fx.publisher.events, 1)
	assert.Equal(t, "approved", fx.publisher.events[0].Status)
	assert.Equal(t, shelter.ID, fx.publisher.events[0].ShelterID)
	assert.Equal(t, "u1", fx.publisher.events[0].CreatorID)
}

func TestModerationService_UpdateMergesCondition(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())
	update := fx.submitUpdate(t, shelter.ID, map[string]any{"condition": 3.0})
	require.NotNil(t, update.ShelterSnapshot)
	assert.Equal(t, shelter.ID, update.ShelterSnapshot.ID)

	require.NoError(t, fx.service.Approve(ctx, update.ID, adminOne.UserID))

	merged, err := fx.shelters.FindByID(ctx, shelter.ID)
	require.NoError(t, err)
	require.NotNil(t, merged.Condition)
	assert.InDelta(t, 2.5, *merged.Condition, 1e-9)
	assert.Equal(t, 2, merged.NumContributedConditions)
	assert.Equal(t, "Refuge A", merged.Name)
	assert.Equal(t, fixedTime, merged.ModifiedAt)
}

func TestModerationService_RejectWithReason(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	proposal, err := fx.service.Submit(ctx, userOne, usecase.SubmitProposalInput{
		Action:  entity.ProposalActionCreate,
		Payload: refugeAPayload(),
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.Reject(ctx, proposal.ID, adminOne.UserID, strPtr("insufficient detail")))

	stored, err := fx.proposals.FindByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "insufficient detail", *stored.RejectionReason)

	_, err = fx.shelters.FindByID(ctx, ShelterIDForProposal(proposal.ID))
	assert.ErrorIs(t, err, repository.ErrShelterNotFound)

	_, err = fx.coordinates.Get(ctx)
	assert.ErrorIs(t, err, repository.ErrCoordinateIndexNotFound)

	require.Len(t, fx.publisher.events, 1)
	assert.Equal(t, "rejected", fx.publisher.events[0].Status)
	assert.Equal(t, "insufficient detail", fx.publisher.events[0].RejectionReason)
}

func TestModerationService_DoubleApprove(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	proposal, err := fx.service.Submit(ctx, userOne, usecase.SubmitProposalInput{
		Action:  entity.ProposalActionCreate,
		Payload: refugeAPayload(),
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.Approve(ctx, proposal.ID, adminOne.UserID))

	err = fx.service.Approve(ctx, proposal.ID, adminOne.UserID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyReviewed)

	err = fx.service.Reject(ctx, proposal.ID, adminOne.UserID, nil)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyReviewed)

	index, err := fx.coordinates.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, index.Total)
	assert.Len(t, fx.publisher.events, 1)
}

func TestModerationService_ApproveUnknownProposal(t *testing.T) {
	fx := createTestModerationService(t, nil)

	err := fx.service.Approve(context.Background(), "missing", adminOne.UserID)
	assert.ErrorIs(t, err, domainerrors.ErrProposalNotFound)
}

func TestModerationService_DeleteWithDependents(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())

	shelterKey := util.ShelterMediaKey(shelter.ID, "jpg")
	experienceKey := util.ShelterMediaKey(shelter.ID, "png")
	require.NoError(t, fx.bucket.WriteAll(ctx, shelterKey, []byte("photo"), nil))
	require.NoError(t, fx.bucket.WriteAll(ctx, experienceKey, []byte("photo"), nil))

	shelter.MediaMetadata = map[string]entity.MediaMetadata{
		shelterKey: {CreatorID: "u1", UploadedAt: fixedTime},
	}
	require.NoError(t, fx.shelters.Save(ctx, shelter))

	fx.store.PutDoubt(&entity.Doubt{ID: "d1", ShelterID: shelter.ID, CreatorID: "u2", Message: "Is there water?"})
	fx.store.PutAnswer("d1", &entity.Answer{ID: "a1", CreatorID: "u1", Message: "Yes"})
	fx.store.PutExperience(&entity.Experience{ID: "e1", ShelterID: shelter.ID, CreatorID: "u2", MediaKeys: []string{experienceKey}})
	fx.store.PutRenovation(&entity.Renovation{ID: "r1", ShelterID: shelter.ID, CreatorID: "u2"})

	pendingOne := fx.submitUpdate(t, shelter.ID, map[string]any{"remarks": "roof leaks"})
	pendingTwo := fx.submitUpdate(t, shelter.ID, map[string]any{"places": 6.0})

	deletion, err := fx.service.Submit(ctx, userTwo, usecase.SubmitProposalInput{
		Action:    entity.ProposalActionDelete,
		ShelterID: strPtr(shelter.ID),
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.Approve(ctx, deletion.ID, adminOne.UserID))

	_, err = fx.shelters.FindByID(ctx, shelter.ID)
	assert.ErrorIs(t, err, repository.ErrShelterNotFound)

	doubts, err := fx.doubts.FindByShelter(ctx, shelter.ID)
	require.NoError(t, err)
	assert.Empty(t, doubts)
	assert.Zero(t, fx.store.AnswerCount("d1"))

	experiences, err := fx.experiences.FindByShelter(ctx, shelter.ID)
	require.NoError(t, err)
	assert.Empty(t, experiences)

	renovations, err := fx.renovations.FindByShelter(ctx, shelter.ID)
	require.NoError(t, err)
	assert.Empty(t, renovations)

	for _, key := range []string{shelterKey, experienceKey} {
		exists, err := fx.bucket.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists, key)
	}

	index, err := fx.coordinates.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, index.Find(shelter.ID))
	assert.Zero(t, index.Total)

	for _, id := range []string{pendingOne.ID, pendingTwo.ID} {
		stored, err := fx.proposals.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.ProposalStatusRejected, stored.Status)
		require.NotNil(t, stored.RejectionReason)
		assert.Equal(t, TargetDeletedReason, *stored.RejectionReason)
		require.NotNil(t, stored.ReviewerID)
		assert.Equal(t, adminOne.UserID, *stored.ReviewerID)
		require.NotNil(t, stored.ReviewedAt)
		assert.Equal(t, fixedTime, *stored.ReviewedAt)
	}

	stored, err := fx.proposals.FindByID(ctx, deletion.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusApproved, stored.Status)
}

func TestModerationService_DeleteOfMissingShelter(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())

	first, err := fx.service.Submit(ctx, userOne, usecase.SubmitProposalInput{Action: entity.ProposalActionDelete, ShelterID: strPtr(shelter.ID)})
	require.NoError(t, err)
	second, err := fx.service.Submit(ctx, userTwo, usecase.SubmitProposalInput{Action: entity.ProposalActionDelete, ShelterID: strPtr(shelter.ID)})
	require.NoError(t, err)

	require.NoError(t, fx.service.Approve(ctx, first.ID, adminOne.UserID))

	// The cascade already rejected the competing delete.
	err = fx.service.Approve(ctx, second.ID, adminOne.UserID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyReviewed)

	_, err = fx.service.Submit(ctx, userOne, usecase.SubmitProposalInput{Action: entity.ProposalActionDelete, ShelterID: strPtr(shelter.ID)})
	assert.ErrorIs(t, err, domainerrors.ErrTargetMissing)
}

func TestModerationService_UpdateTargetVanished(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())
	update := fx.submitUpdate(t, shelter.ID, map[string]any{"remarks": "new roof"})

	require.NoError(t, fx.shelters.Delete(ctx, shelter.ID))

	err := fx.service.Approve(ctx, update.ID, adminOne.UserID)
	assert.ErrorIs(t, err, domainerrors.ErrTargetMissing)

	stored, err := fx.proposals.FindByID(ctx, update.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusPending, stored.Status)
}

func TestModerationService_CoordinateEditPropagates(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())
	update := fx.submitUpdate(t, shelter.ID, map[string]any{
		"coord":   map[string]any{"lat": 42.7, "long": 1.6},
		"surname": "Cabana",
	})

	require.NoError(t, fx.service.Approve(ctx, update.ID, adminOne.UserID))

	index, err := fx.coordinates.Get(ctx)
	require.NoError(t, err)
	pos := index.Find(shelter.ID)
	require.GreaterOrEqual(t, pos, 0)

	entry := index.Entries[pos]
	assert.Equal(t, entity.Coordinate{Lat: 42.7, Long: 1.6}, entry.Coord)
	assert.Equal(t, geo.Encode(entity.Coordinate{Lat: 42.7, Long: 1.6}, geo.DefaultPrecision), entry.Geohash)
	require.NotNil(t, entry.Surname)
	assert.Equal(t, "Cabana", *entry.Surname)
	assert.Equal(t, 1, index.Total)
}

func TestModerationService_MediaFailureKeepsProposalPending(t *testing.T) {
	media := new(mockMediaStorage)
	media.On("DeleteBatch", mock.Anything, mock.Anything).Return(errors.New("bucket unavailable")).Once()

	fx := createTestModerationService(t, media)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())
	shelter.MediaMetadata = map[string]entity.MediaMetadata{
		util.ShelterMediaKey(shelter.ID, "jpg"): {CreatorID: "u1", UploadedAt: fixedTime},
	}
	require.NoError(t, fx.shelters.Save(ctx, shelter))

	deletion, err := fx.service.Submit(ctx, userOne, usecase.SubmitProposalInput{
		Action:    entity.ProposalActionDelete,
		ShelterID: strPtr(shelter.ID),
	})
	require.NoError(t, err)

	err = fx.service.Approve(ctx, deletion.ID, adminOne.UserID)
	assert.ErrorIs(t, err, domainerrors.ErrMediaCleanupFailed)

	stored, err := fx.proposals.FindByID(ctx, deletion.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusPending, stored.Status)

	_, err = fx.shelters.FindByID(ctx, shelter.ID)
	assert.NoError(t, err)

	// The bucket recovers and the same approval goes through.
	media.On("DeleteBatch", mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, fx.service.Approve(ctx, deletion.ID, adminOne.UserID))

	stored, err = fx.proposals.FindByID(ctx, deletion.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusApproved, stored.Status)

	_, err = fx.shelters.FindByID(ctx, shelter.ID)
	assert.ErrorIs(t, err, repository.ErrShelterNotFound)

	index, err := fx.coordinates.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, index.Find(shelter.ID))
	media.AssertExpectations(t)
}

func TestModerationService_PublishFailureIsIgnored(t *testing.T) {
	fx := createTestModerationService(t, nil)
	fx.publisher.err = errors.New("topic gone")
	ctx := context.Background()

	proposal, err := fx.service.Submit(ctx, userOne, usecase.SubmitProposalInput{
		Action:  entity.ProposalActionCreate,
		Payload: refugeAPayload(),
	})
	require.NoError(t, err)

	assert.NoError(t, fx.service.Approve(ctx, proposal.ID, adminOne.UserID))
}

func TestModerationService_SubmitValidation(t *testing.T) {
	fx := createTestModerationService(t, nil)
	shelter := fx.seedShelter(t, refugeAPayload())

	testCases := []struct {
		name    string
		caller  entity.Identity
		input   usecase.SubmitProposalInput
		wantErr error
	}{
		{
			name:    "anonymous caller",
			caller:  entity.Identity{},
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionCreate, Payload: refugeAPayload()},
			wantErr: domainerrors.ErrUnauthorized,
		},
		{
			name:    "unknown action",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: "merge", Payload: refugeAPayload()},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "create with shelter id",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionCreate, ShelterID: strPtr(shelter.ID), Payload: refugeAPayload()},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "create without coord",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionCreate, Payload: map[string]any{"name": "No coord"}},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "update without shelter id",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionUpdate, Payload: map[string]any{"remarks": "x"}},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "update with empty payload",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionUpdate, ShelterID: strPtr(shelter.ID), Payload: map[string]any{}},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "update of missing shelter",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionUpdate, ShelterID: strPtr("nope"), Payload: map[string]any{"remarks": "x"}},
			wantErr: domainerrors.ErrTargetMissing,
		},
		{
			name:    "delete with payload",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionDelete, ShelterID: strPtr(shelter.ID), Payload: map[string]any{"name": "x"}},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "blank shelter id",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionDelete, ShelterID: strPtr("  ")},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "condition out of range",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionUpdate, ShelterID: strPtr(shelter.ID), Payload: map[string]any{"condition": 4.5}},
			wantErr: domainerrors.ErrInvalidCondition,
		},
		{
			name:    "unknown field",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionUpdate, ShelterID: strPtr(shelter.ID), Payload: map[string]any{"owner": "me"}},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "places beyond int range",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionUpdate, ShelterID: strPtr(shelter.ID), Payload: map[string]any{"places": 1e300}},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:    "negative places",
			caller:  userOne,
			input:   usecase.SubmitProposalInput{Action: entity.ProposalActionUpdate, ShelterID: strPtr(shelter.ID), Payload: map[string]any{"places": -1.0}},
			wantErr: domainerrors.ErrInvalidRequest,
		},
		{
			name:   "coord out of range",
			caller: userOne,
			input: usecase.SubmitProposalInput{Action: entity.ProposalActionCreate, Payload: map[string]any{
				"name": "Far", "coord": map[string]any{"lat": 95.0, "long": 1.0},
			}},
			wantErr: domainerrors.ErrInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.service.Submit(context.Background(), tc.caller, tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestModerationService_ListFiltersAndPermissions(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())
	mine := fx.submitUpdate(t, shelter.ID, map[string]any{"remarks": "mine"})
	theirs, err := fx.service.Submit(ctx, userTwo, usecase.SubmitProposalInput{
		Action:    entity.ProposalActionUpdate,
		ShelterID: strPtr(shelter.ID),
		Payload:   map[string]any{"remarks": "theirs"},
	})
	require.NoError(t, err)

	pending := entity.ProposalStatusPending

	t.Run("admin by shelter", func(t *testing.T) {
		got, err := fx.service.List(ctx, adminOne, usecase.ProposalFilter{ShelterID: strPtr(shelter.ID), Status: &pending})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("user defaults to own proposals", func(t *testing.T) {
		got, err := fx.service.List(ctx, userTwo, usecase.ProposalFilter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, theirs.ID, got[0].ID)
	})

	t.Run("user cannot read others", func(t *testing.T) {
		_, err := fx.service.List(ctx, userTwo, usecase.ProposalFilter{CreatorID: strPtr("u1")})
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)

		_, err = fx.service.List(ctx, userTwo, usecase.ProposalFilter{ShelterID: strPtr(shelter.ID)})
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)

		_, err = fx.service.Get(ctx, userTwo, mine.ID)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("shelter and creator together", func(t *testing.T) {
		_, err := fx.service.List(ctx, adminOne, usecase.ProposalFilter{ShelterID: strPtr(shelter.ID), CreatorID: strPtr("u1")})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidFilter)
	})

	t.Run("unknown status", func(t *testing.T) {
		bogus := entity.ProposalStatus("archived")
		_, err := fx.service.List(ctx, adminOne, usecase.ProposalFilter{Status: &bogus})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := fx.service.List(ctx, entity.Identity{}, usecase.ProposalFilter{})
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})

	t.Run("listing reflects reviews", func(t *testing.T) {
		before, err := fx.service.List(ctx, adminOne, usecase.ProposalFilter{Status: &pending})
		require.NoError(t, err)
		require.Len(t, before, 2)

		require.NoError(t, fx.service.Reject(ctx, mine.ID, adminOne.UserID, nil))

		after, err := fx.service.List(ctx, adminOne, usecase.ProposalFilter{Status: &pending})
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, theirs.ID, after[0].ID)

		got, err := fx.service.Get(ctx, userOne, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ProposalStatusRejected, got.Status)
	})
}

func TestModerationService_AnonymizeCreator(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())
	update := fx.submitUpdate(t, shelter.ID, map[string]any{"remarks": "x"})

	// Warm the cache so anonymization has to evict it.
	_, err := fx.service.Get(ctx, adminOne, update.ID)
	require.NoError(t, err)

	count, err := fx.service.AnonymizeCreator(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := fx.service.Get(ctx, adminOne, update.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnknownCreator, got.CreatorID)

	_, err = fx.service.AnonymizeCreator(ctx, entity.UnknownCreator)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)

	_, err = fx.service.AnonymizeCreator(ctx, " ")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestModerationService_CacheInvalidatedOnApprove(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())
	fx.cache.Set(ctx, cacheKeyShelterDetail+shelter.ID, []byte("stale"), time.Hour)
	fx.cache.Set(ctx, cacheKeyCoordinateIndex, []byte("stale"), time.Hour)
	fx.cache.Set(ctx, "shelter_search:pyrenees", []byte("stale"), time.Hour)

	update := fx.submitUpdate(t, shelter.ID, map[string]any{"name": "Refuge B"})
	require.NoError(t, fx.service.Approve(ctx, update.ID, adminOne.UserID))

	for _, key := range []string{cacheKeyShelterDetail + shelter.ID, cacheKeyCoordinateIndex, "shelter_search:pyrenees"} {
		_, ok := fx.cache.Get(ctx, key)
		assert.False(t, ok, key)
	}

	index, err := fx.coordinates.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Refuge B", index.Entries[index.Find(shelter.ID)].Name)
}

func TestModerationService_UpdateMergesAmenities(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	payload := refugeAPayload()
	payload["info_complementaria"] = map[string]any{"eau": true, "bois": true}
	shelter := fx.seedShelter(t, payload)
	require.Equal(t, map[string]bool{"eau": true, "bois": true}, shelter.InfoComplementaria)

	update := fx.submitUpdate(t, shelter.ID, map[string]any{
		"info_complementaria": map[string]any{"eau": false},
	})
	require.NoError(t, fx.service.Approve(ctx, update.ID, adminOne.UserID))

	merged, err := fx.shelters.FindByID(ctx, shelter.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"bois": true, "eau": false}, merged.InfoComplementaria)
}

func TestCascadeCleaner_CleanIsIdempotent(t *testing.T) {
	fx := createTestModerationService(t, nil)
	ctx := context.Background()

	shelter := fx.seedShelter(t, refugeAPayload())
	mediaKey := util.ShelterMediaKey(shelter.ID, "jpg")
	require.NoError(t, fx.bucket.WriteAll(ctx, mediaKey, []byte("photo"), nil))
	shelter.MediaMetadata = map[string]entity.MediaMetadata{mediaKey: {CreatorID: "u1", UploadedAt: fixedTime}}

	fx.store.PutDoubt(&entity.Doubt{ID: "d1", ShelterID: shelter.ID, CreatorID: "u2"})
	fx.store.PutAnswer("d1", &entity.Answer{ID: "a1", CreatorID: "u1"})
	fx.store.PutExperience(&entity.Experience{ID: "e1", ShelterID: shelter.ID, CreatorID: "u2"})
	fx.store.PutRenovation(&entity.Renovation{ID: "r1", ShelterID: shelter.ID, CreatorID: "u2"})
	pending := fx.submitUpdate(t, shelter.ID, map[string]any{"remarks": "x"})

	cleaner := &cascadeCleaner{
		doubtRepo:      fx.doubts,
		experienceRepo: fx.experiences,
		renovationRepo: fx.renovations,
		proposalRepo:   fx.proposals,
		storage:        fx.media,
		invalidator:    newCacheInvalidator(fx.cache, slog.Default()),
		now:            func() time.Time { return fixedTime },
		logger:         slog.Default(),
	}

	require.NoError(t, cleaner.Clean(ctx, shelter, "", adminOne.UserID))
	require.NoError(t, cleaner.Clean(ctx, shelter, "", adminOne.UserID))

	doubts, err := fx.doubts.FindByShelter(ctx, shelter.ID)
	require.NoError(t, err)
	assert.Empty(t, doubts)
	assert.Zero(t, fx.store.AnswerCount("d1"))

	renovations, err := fx.renovations.FindByShelter(ctx, shelter.ID)
	require.NoError(t, err)
	assert.Empty(t, renovations)

	exists, err := fx.bucket.Exists(ctx, mediaKey)
	require.NoError(t, err)
	assert.False(t, exists)

	stored, err := fx.proposals.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusRejected, stored.Status)
	require.NotNil(t, stored.ReviewerID)
	assert.Equal(t, adminOne.UserID, *stored.ReviewerID)
}
