package handler

import (
	"log/slog"
	"net/http"

	"refugis/internal/delivery/api/response"
	"refugis/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AdminHandlerParams holds dependencies for AdminHandler, injected by Fx.
type AdminHandlerParams struct {
	fx.In

	ModerationUC usecase.ModerationUsecase
	Logger       *slog.Logger
}

// AdminHandler serves maintenance endpoints for administrators.
type AdminHandler struct {
	moderationUC usecase.ModerationUsecase
	logger       *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler
func NewAdminHandler(params AdminHandlerParams) *AdminHandler {
	return &AdminHandler{
		moderationUC: params.ModerationUC,
		logger:       params.Logger,
	}
}

// AnonymizeResponse reports how many proposals were detached from the user
type AnonymizeResponse struct {
	Anonymized int `json:"anonymized"`
}

// AnonymizeUserProposals is called when a user account is deleted.
func (h *AdminHandler) AnonymizeUserProposals(c echo.Context) error {
	count, err := h.moderationUC.AnonymizeCreator(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, AnonymizeResponse{Anonymized: count})
}
