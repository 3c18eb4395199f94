package routes

import (
	"github.com/gin-gonic/gin"

	"selfcheck/handlers"
)

func RegisterAuthRoutes(router *gin.Engine, h *handlers.AuthHandler, gate, limit gin.HandlerFunc) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", limit, h.Register)
		authRoutes.POST("/login", limit, h.Login)
		authRoutes.POST("/logout", gate, h.Logout)
	}

	// Paths used by the older front-end pages.
	router.POST("/register", limit, h.Register)
	router.POST("/login", limit, h.Login)
	router.POST("/logout", gate, h.Logout)

	router.GET("/session-user", gate, h.SessionUser)
}
