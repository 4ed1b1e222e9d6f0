package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"refugis/config"
	"refugis/internal/domain/constants"
	"refugis/internal/domain/service"
	"refugis/internal/infra/notification"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

type mockNotificationService struct {
	mock.Mock
}

func (m *mockNotificationService) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	args := m.Called(ctx, topic, title, body, data)

	return args.Error(0)
}

func newTestHandler(svc service.NotificationService) *PushHandler {
	return NewPushHandler(PushHandlerParams{
		Config:          &config.Config{},
		Logger:          slog.Default(),
		NotificationSvc: svc,
	})
}

func pushRequest(t *testing.T, event service.ModerationEvent) *http.Request {
	t.Helper()

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var msg PubSubMessage
	msg.Message.Data = base64.StdEncoding.EncodeToString(raw)
	msg.Message.Attributes = map[string]string{"request_id": "req-42"}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return req
}

func serve(h *PushHandler, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	_ = h.HandlePush(e.NewContext(req, rec))

	return rec
}

func TestHandlePush_NotifiesCreatorTopic(t *testing.T) {
	svc := new(mockNotificationService)
	svc.On("SendToTopic", mock.Anything, "user_u1", "Proposta rebutjada",
		"La teva proposta sobre Refugi de Prat ha estat rebutjada. Motiu: duplicate",
		mock.MatchedBy(func(data map[string]string) bool {
			return data["proposal_id"] == "p1" && data["status"] == "rejected"
		}),
	).Return(nil).Once()

	rec := serve(newTestHandler(svc), pushRequest(t, service.ModerationEvent{
		ProposalID:      "p1",
		Action:          "update",
		Status:          "rejected",
		ShelterID:       "s1",
		ShelterName:     "Refugi de Prat",
		CreatorID:       "u1",
		RejectionReason: "duplicate",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandlePush_SkipsUnknownCreator(t *testing.T) {
	svc := new(mockNotificationService)

	rec := serve(newTestHandler(svc), pushRequest(t, service.ModerationEvent{
		ProposalID: "p1",
		Status:     "approved",
		CreatorID:  "unknown",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertNotCalled(t, "SendToTopic", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePush_RetryableFailure(t *testing.T) {
	svc := new(mockNotificationService)
	svc.On("SendToTopic", mock.Anything, "user_u1", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("fcm unavailable")).Once()

	rec := serve(newTestHandler(svc), pushRequest(t, service.ModerationEvent{
		ProposalID: "p1", Status: "approved", CreatorID: "u1",
	}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlePush_PermanentFailure(t *testing.T) {
	svc := new(mockNotificationService)
	svc.On("SendToTopic", mock.Anything, "user_u1", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.Wrap(notification.ErrTopicRejected, "bad topic")).Once()

	rec := serve(newTestHandler(svc), pushRequest(t, service.ModerationEvent{
		ProposalID: "p1", Status: "approved", CreatorID: "u1",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_BadPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader([]byte(`{"message":{"data":"!!"}}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := serve(newTestHandler(new(mockNotificationService)), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePush_VerifiesToken(t *testing.T) {
	cfg := &config.Config{PubSub: &config.PubSubConfig{Provider: constants.PubSubProviderGoogle}}
	cfg.Env.Env = constants.EnvProduction

	svc := new(mockNotificationService)
	svc.On("SendToTopic", mock.Anything, "user_u1", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := NewPushHandler(PushHandlerParams{Config: cfg, Logger: slog.Default(), NotificationSvc: svc})
	h.validateToken = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "good" {
			return nil, errors.New("bad token")
		}
		assert.Equal(t, "http://example.com/push", audience)

		return &idtoken.Payload{Issuer: "https://accounts.google.com"}, nil
	}

	event := service.ModerationEvent{ProposalID: "p1", Status: "approved", CreatorID: "u1"}

	req := pushRequest(t, event)
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	req = pushRequest(t, event)
	req.Header.Set("Authorization", "Bearer good")
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
}
