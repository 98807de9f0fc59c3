package socketio_utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"

	"Spielhalle/middleware"
	models "Spielhalle/models/postgres"
)

// Function that verifies a socket.io client connection using JWT
// authentication. It extracts the user ID from the token and loads the
// account from the database.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (success bool, userID, displayName string) {
	// Checks if we have auth data in the connection
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		fmt.Println("No auth data provided in handshake!")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		return false, "", ""
	}

	userID, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		fmt.Println("Error decoding JWT:", err)
		client.Emit("error", gin.H{
			"error": "Authentication failed: invalid JWT. Remember to set it on the 'authorization' field.",
		})
		return false, "", ""
	}

	var user models.User
	result := db.Where("id = ?", userID).First(&user)
	if result.Error != nil {
		fmt.Println("Error fetching user from database:", result.Error)
		client.Emit("error", gin.H{"error": "Authentication failed: could not find user"})
		return false, "", ""
	}

	return true, user.ID, user.DisplayName
}
