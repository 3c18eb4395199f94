package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterStatic serves the front-end pages from dir for any GET or HEAD
// request no API route matched. Everything else gets a JSON 404.
func RegisterStatic(router *gin.Engine, dir string) {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}

	router.NoRoute(func(c *gin.Context) {
		if files != nil && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})
}
