package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerlens/backend/internal/api/dto"
)

// Health responds to load-balancer health checks.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy"})
}
