package routes

import (
	"github.com/gin-gonic/gin"

	"selfcheck/handlers"
)

func RegisterInfoRoutes(router *gin.Engine, h *handlers.ProfileHandler, gate gin.HandlerFunc) {
	infoRoutes := router.Group("/info", gate)
	{
		infoRoutes.POST("/save-info", h.SaveInfo)
		infoRoutes.GET("/user-info", h.UserInfo)
	}

	router.POST("/save-info", gate, h.SaveInfo)
	router.GET("/user-info", gate, h.UserInfo)
}
