package admin

import (
	"net/http"

	"SMARTATTEND/models"

	"github.com/gin-gonic/gin"
)

// AdminDetailsHandler returns the admin profile card for the dashboard.
func AdminDetailsHandler(c *gin.Context) {
	var admin models.Admin
	if err := models.DB.First(&admin, 1).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Admin profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":  admin.Name,
		"email": admin.Email,
		"phone": admin.Phone,
		"photo": admin.PhotoPath,
	})
}
