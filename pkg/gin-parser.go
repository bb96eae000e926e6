package pkg

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func ParseAndValidate(c *gin.Context, dto interface{}) error {
	if err := c.ShouldBindJSON(dto); err != nil {
		return err
	}
	return validate.Struct(dto)
}

// GetUserID reads the authenticated user ID set by the auth middleware.
// Writes a 401 and returns false when it is missing.
func GetUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		c.Abort()
		return 0, false
	}
	id, ok := raw.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		c.Abort()
		return 0, false
	}
	return id, true
}

// GetOrganizationID reads the authenticated user's organization ID.
func GetOrganizationID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("organizationID")
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "No organization in context"})
		c.Abort()
		return 0, false
	}
	id, ok := raw.(uint)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "No organization in context"})
		c.Abort()
		return 0, false
	}
	return id, true
}
