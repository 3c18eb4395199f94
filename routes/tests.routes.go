package routes

import (
	"github.com/gin-gonic/gin"

	"selfcheck/handlers"
)

func RegisterTestRoutes(router *gin.Engine, h *handlers.TestHandler, gate gin.HandlerFunc) {
	testRoutes := router.Group("/tests", gate)
	{
		testRoutes.POST("/save-test", h.SaveTest)
		testRoutes.GET("/my-tests", h.MyTests)
		testRoutes.GET("/get-test", h.GetTest)
	}

	router.POST("/save-test", gate, h.SaveTest)
	router.GET("/my-tests", gate, h.MyTests)
	router.GET("/get-test", gate, h.GetTest)
}
