package handlers

import (
	"net/http"

	"toltimed/utils"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health with the latest dependency snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "dependencies": status})
}
