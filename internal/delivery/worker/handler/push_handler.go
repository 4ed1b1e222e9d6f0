package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"refugis/config"
	deliverycontext "refugis/internal/delivery/context"
	"refugis/internal/domain/constants"
	"refugis/internal/domain/entity"
	"refugis/internal/domain/service"
	"refugis/internal/errors"
	"refugis/internal/infra/notification"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// TokenValidator checks the OIDC token Pub/Sub attaches to push requests.
type TokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler turns moderation events into push notifications for the proposal author
type PushHandler struct {
	verifyPushAuth  bool
	validateToken   TokenValidator
	logger          *slog.Logger
	notificationSvc service.NotificationService
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config          *config.Config
	Logger          *slog.Logger
	NotificationSvc service.NotificationService
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Only real Pub/Sub push requests carry an OIDC token.
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth:  verifyPushAuth,
		validateToken:   idtoken.Validate,
		logger:          params.Logger,
		notificationSvc: params.NotificationSvc,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.ModerationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse moderation event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing moderation event",
		slog.String("proposal_id", event.ProposalID),
		slog.String("status", event.Status),
	)

	if err := h.notifyCreator(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Failed to notify proposal author",
			slog.String("proposal_id", event.ProposalID),
			slog.Any("error", err),
			slog.Bool("retryable", errors.IsRetryable(err)),
		)
		// 503 makes Pub/Sub redeliver; 200 drops messages that can never succeed.
		if errors.IsRetryable(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	return c.NoContent(http.StatusOK)
}

// extractRequestID prefers message attributes, then the event, then the incoming header
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.ModerationEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// notifyCreator sends the review outcome to the author's topic
func (h *PushHandler) notifyCreator(ctx context.Context, event *service.ModerationEvent) error {
	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)

	if event.CreatorID == "" || event.CreatorID == entity.UnknownCreator {
		logger.Info("[Worker] Proposal author is gone, skipping notification",
			slog.String("proposal_id", event.ProposalID),
		)

		return nil
	}

	title, body, ok := notificationContent(event)
	if !ok {
		return errors.Errorf("unexpected proposal status %q", event.Status)
	}

	data := map[string]string{
		"type":        "proposal_reviewed",
		"proposal_id": event.ProposalID,
		"status":      event.Status,
		"action":      event.Action,
	}
	if event.ShelterID != "" {
		data["shelter_id"] = event.ShelterID
	}

	topic := CreatorTopic(event.CreatorID)
	if err := h.notificationSvc.SendToTopic(ctx, topic, title, body, data); err != nil {
		if errors.Is(err, notification.ErrTopicRejected) {
			return errors.WithStack(err)
		}

		return errors.Retryable(err)
	}

	logger.Info("[Worker] Proposal author notified",
		slog.String("proposal_id", event.ProposalID),
		slog.String("topic", topic),
	)

	return nil
}

// CreatorTopic is the FCM topic every device of a user subscribes to.
func CreatorTopic(userID string) string {
	return "user_" + userID
}

func notificationContent(event *service.ModerationEvent) (title, body string, ok bool) {
	name := event.ShelterName
	if name == "" {
		name = "un refugi"
	}

	switch entity.ProposalStatus(event.Status) {
	case entity.ProposalStatusApproved:
		return "Proposta aprovada", fmt.Sprintf("La teva proposta sobre %s ha estat aprovada.", name), true
	case entity.ProposalStatusRejected:
		body = fmt.Sprintf("La teva proposta sobre %s ha estat rebutjada.", name)
		if reason := strings.TrimSpace(event.RejectionReason); reason != "" {
			body = fmt.Sprintf("%s Motiu: %s", body, reason)
		}

		return "Proposta rebutjada", body, true
	default:
		return "", "", false
	}
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is the URL of this endpoint.
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := h.validateToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
