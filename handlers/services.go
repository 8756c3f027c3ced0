package handlers

import (
	"net/http"
	"strings"

	"toltimed/services/catalog"

	"github.com/gin-gonic/gin"
)

// SearchServices handles GET /sessions/:id/services?q=. Matches are returned
// both flat and grouped by department.
func (h *BookingHandler) SearchServices(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	services, err := h.BookingSvc.SearchServices(userContext(c), c.Param("id"), query)
	if err != nil {
		h.respondError(c, "SearchServices", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"services":    services,
		"departments": catalog.GroupByCategory(services),
	})
}
