package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/private-messaging-api/services"
)

// PurgeMessages handles POST /api/v1/admin/purge - runs one purge sweep.
// Route access is guarded by the admin:purge scope.
func PurgeMessages(c *gin.Context) {
	result, err := services.GetPurgeService().Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
