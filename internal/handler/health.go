package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealth is the liveness check. It reports the process as healthy
// without touching any upstream; the service has no local state to probe.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// HandleRoot answers the bare API root.
func HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Book Tracker API"})
}
