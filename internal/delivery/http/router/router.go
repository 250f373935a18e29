// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"accounts/internal/delivery/http/middleware"
	"accounts/internal/delivery/http/router/handler"
	"accounts/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	ProfileHandler *handler.ProfileHandler
	SessionHandler *handler.SessionHandler
	AuthMiddleware *middleware.AuthMiddleware
	Registry       *prometheus.Registry
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	profileHandler *handler.ProfileHandler
	sessionHandler *handler.SessionHandler
	authMiddleware *middleware.AuthMiddleware
	registry       *prometheus.Registry
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		profileHandler: params.ProfileHandler,
		sessionHandler: params.SessionHandler,
		authMiddleware: params.AuthMiddleware,
		registry:       params.Registry,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(r.registry)))

	apiV1 := e.Group("/api/v1")

	// Token-gated flows reached from emailed links
	accountsGroup := apiV1.Group("/accounts")
	{
		accountsGroup.POST("/register", r.accountHandler.Register)
		accountsGroup.POST("/verify-email", r.accountHandler.VerifyEmail)
		accountsGroup.POST("/resend-verification", r.accountHandler.ResendVerification)
		accountsGroup.POST("/password-reset", r.accountHandler.RequestPasswordReset)
		accountsGroup.POST("/password-reset/confirm", r.accountHandler.ConfirmPasswordReset)
		accountsGroup.POST("/email-change/confirm", r.accountHandler.ConfirmEmailChange)
		accountsGroup.POST("/email-change/cancel", r.accountHandler.CancelEmailChange)
	}

	meGroup := accountsGroup.Group("/me")
	meGroup.Use(r.authMiddleware.Authenticate)
	{
		meGroup.GET("", r.profileHandler.GetProfile)
		meGroup.PATCH("", r.profileHandler.UpdateProfile)
		meGroup.DELETE("", r.profileHandler.DeleteAccount)
		meGroup.POST("/deactivate", r.profileHandler.DeactivateAccount)
		meGroup.POST("/password", r.profileHandler.ChangePassword)
		meGroup.POST("/email", r.profileHandler.RequestEmailChange)
	}

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/login", r.sessionHandler.Login)
		authGroup.POST("/refresh", r.sessionHandler.Refresh)
		authGroup.POST("/logout", r.sessionHandler.Logout, r.authMiddleware.Authenticate)
		authGroup.POST("/logout-all", r.sessionHandler.LogoutAll, r.authMiddleware.Authenticate)
	}
}
