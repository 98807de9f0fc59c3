package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	models "Spielhalle/models/postgres"
)

// Session key under which the authenticated user's ID is stored.
const UserIDKey = "UserID"

// AuthRequired is a simple middleware to check the session.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get(UserIDKey)
	if userID == nil {
		// Abort the request with the appropriate error code
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(UserIDKey, userID.(string))
	// Continue down the chain to handler etc
	c.Next()
}

// AdminRequired checks the session AND the user's role in the database.
// Must run after AuthRequired on the route group.
func AdminRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// SessionUserID returns the user ID placed in the context by AuthRequired.
func SessionUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
