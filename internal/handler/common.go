// Package handler contains the gin handlers for the book tracker API.
// Error bodies use a {"detail": ...} shape throughout.
package handler

import "github.com/gin-gonic/gin"

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
