// Package handler contains the echo handlers of the public API.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"refugis/internal/delivery/api/middleware"
	"refugis/internal/delivery/api/response"
	"refugis/internal/domain/entity"
	"refugis/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ProposalHandlerParams holds dependencies for ProposalHandler, injected by Fx.
type ProposalHandlerParams struct {
	fx.In

	ModerationUC usecase.ModerationUsecase
	Logger       *slog.Logger
}

// ProposalHandler exposes the proposal moderation workflow.
type ProposalHandler struct {
	moderationUC usecase.ModerationUsecase
	logger       *slog.Logger
}

// NewProposalHandler is the constructor for ProposalHandler
func NewProposalHandler(params ProposalHandlerParams) *ProposalHandler {
	return &ProposalHandler{
		moderationUC: params.ModerationUC,
		logger:       params.Logger,
	}
}

// SubmitProposalRequest is the body of POST /proposals
type SubmitProposalRequest struct {
	Action    string         `json:"action" validate:"required,proposal_action"`
	ShelterID *string        `json:"shelter_id"`
	Payload   map[string]any `json:"payload"`
	Comment   *string        `json:"comment" validate:"omitempty,max=2000"`
}

// RejectProposalRequest is the optional body of POST /proposals/:id/reject
type RejectProposalRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=2000"`
}

// ListProposalsQuery holds the query string of GET /proposals
type ListProposalsQuery struct {
	Status    string `query:"status" validate:"omitempty,proposal_status"`
	ShelterID string `query:"shelter_id"`
	CreatorID string `query:"creator_id"`
}

// MessageResponse is returned by review endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// SubmitProposal handles proposal creation by any authenticated user
func (h *ProposalHandler) SubmitProposal(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Caller identity is missing")
	}

	var req SubmitProposalRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_REQUEST", "Invalid proposal input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequestWithDetails(c, "INVALID_REQUEST", "The request is not valid", err.Error())
	}

	proposal, err := h.moderationUC.Submit(c.Request().Context(), identity, usecase.SubmitProposalInput{
		Action:    entity.ProposalAction(req.Action),
		ShelterID: req.ShelterID,
		Payload:   req.Payload,
		Comment:   req.Comment,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, proposal)
}

// ListProposals handles filtered proposal listing
func (h *ProposalHandler) ListProposals(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Caller identity is missing")
	}

	var query ListProposalsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return response.BindingError(c, "INVALID_REQUEST", "Invalid query parameters")
	}

	if err := c.Validate(&query); err != nil {
		return response.BadRequestWithDetails(c, "INVALID_REQUEST", "The request is not valid", err.Error())
	}

	filter := usecase.ProposalFilter{
		ShelterID: optionalParam(query.ShelterID),
		CreatorID: optionalParam(query.CreatorID),
	}
	if query.Status != "" {
		status := entity.ProposalStatus(query.Status)
		filter.Status = &status
	}

	proposals, err := h.moderationUC.List(c.Request().Context(), identity, filter)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, proposals)
}

// GetProposal handles reading a single proposal
func (h *ProposalHandler) GetProposal(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Caller identity is missing")
	}

	proposal, err := h.moderationUC.Get(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, proposal)
}

// ApproveProposal applies a pending proposal. Administrators only.
func (h *ProposalHandler) ApproveProposal(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Caller identity is missing")
	}

	if err := h.moderationUC.Approve(c.Request().Context(), c.Param("id"), identity.UserID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, MessageResponse{Message: "Proposal approved"})
}

// RejectProposal rejects a pending proposal with an optional reason. Administrators only.
func (h *ProposalHandler) RejectProposal(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Caller identity is missing")
	}

	var req RejectProposalRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_REQUEST", "Invalid rejection input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequestWithDetails(c, "INVALID_REQUEST", "The request is not valid", err.Error())
	}

	if req.Reason != nil && strings.TrimSpace(*req.Reason) == "" {
		req.Reason = nil
	}

	if err := h.moderationUC.Reject(c.Request().Context(), c.Param("id"), identity.UserID, req.Reason); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, MessageResponse{Message: "Proposal rejected"})
}

func optionalParam(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}
