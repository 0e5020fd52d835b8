// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"piquante/internal/delivery/http/middleware"
	"piquante/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler          *handler.UserHandler
	SauceHandler         *handler.SauceHandler
	ImageHandler         *handler.ImageHandler
	AuthMiddleware       *middleware.AuthMiddleware
	LoginLimitMiddleware *middleware.LoginLimitMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler          *handler.UserHandler
	sauceHandler         *handler.SauceHandler
	imageHandler         *handler.ImageHandler
	authMiddleware       *middleware.AuthMiddleware
	loginLimitMiddleware *middleware.LoginLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:          params.UserHandler,
		sauceHandler:         params.SauceHandler,
		imageHandler:         params.ImageHandler,
		authMiddleware:       params.AuthMiddleware,
		loginLimitMiddleware: params.LoginLimitMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Uploaded images are public, like the sauce list they belong to.
	e.GET("/images/:key", r.imageHandler.Serve)

	authGroup := e.Group("/api/auth")
	{
		authGroup.POST("/signup", r.userHandler.Signup)
		authGroup.POST("/login", r.userHandler.Login, r.loginLimitMiddleware.Limit)
	}

	sauceGroup := e.Group("/api/sauces")
	sauceGroup.Use(r.authMiddleware.Authenticate)
	{
		sauceGroup.GET("", r.sauceHandler.List)
		sauceGroup.POST("", r.sauceHandler.Create)
		sauceGroup.GET("/:id", r.sauceHandler.Get)
		sauceGroup.PUT("/:id", r.sauceHandler.Update)
		sauceGroup.DELETE("/:id", r.sauceHandler.Delete)
		sauceGroup.POST("/:id/like", r.sauceHandler.Like)
		sauceGroup.PUT("/:id/like", r.sauceHandler.Like)
	}
}
