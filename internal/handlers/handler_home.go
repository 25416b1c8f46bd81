package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is the API version reported by the root endpoint. Overridden at build time with -ldflags.
var Version = "dev"

// HomeResponse is the body of the root endpoint.
type HomeResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// getHome godoc
// @Summary Show the status of server.
// @Description get the name, version and status of the server.
// @Tags root
// @Produce json
// @Success 200 {object} HomeResponse
// @Router / [get]
func getHome(c *gin.Context) {
	c.JSON(http.StatusOK, HomeResponse{
		Name:    "ExpenseFlow API",
		Version: Version,
		Status:  "running",
	})
}

// getHealth godoc
// @Summary Health check
// @Tags root
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// registerHomeRoutes registers the public status routes.
func registerHomeRoutes(r *gin.Engine) {
	r.GET("/", getHome)
	r.GET("/health", getHealth)
}
