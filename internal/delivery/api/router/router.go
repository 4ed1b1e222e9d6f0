// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"refugis/config"
	"refugis/internal/delivery/api/middleware"
	"refugis/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ProposalHandler *handler.ProposalHandler
	AdminHandler    *handler.AdminHandler
	AuthMiddleware  *middleware.AuthMiddleware
	Config          *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	proposalHandler *handler.ProposalHandler
	adminHandler    *handler.AdminHandler
	authMiddleware  *middleware.AuthMiddleware
	config          *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		proposalHandler: params.ProposalHandler,
		adminHandler:    params.AdminHandler,
		authMiddleware:  params.AuthMiddleware,
		config:          params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.authMiddleware.Authenticate)

	proposalsGroup := apiV1.Group("/proposals")
	{
		proposalsGroup.POST("", r.proposalHandler.SubmitProposal)
		proposalsGroup.GET("", r.proposalHandler.ListProposals)
		proposalsGroup.GET("/:id", r.proposalHandler.GetProposal)
		proposalsGroup.POST("/:id/approve", r.proposalHandler.ApproveProposal, r.authMiddleware.RequireAdmin)
		proposalsGroup.POST("/:id/reject", r.proposalHandler.RejectProposal, r.authMiddleware.RequireAdmin)
	}

	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(r.authMiddleware.RequireAdmin)
	{
		adminGroup.POST("/users/:id/anonymize-proposals", r.adminHandler.AnonymizeUserProposals)
	}
}
