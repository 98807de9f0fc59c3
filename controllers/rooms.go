package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Spielhalle/services/rooms"
)

// ListRooms returns summaries of all joinable public rooms. Room creation
// and joining go through the realtime connection, the REST surface is
// read-only here.
func ListRooms(manager *rooms.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries := manager.PublicRooms()

		list := make([]gin.H, len(summaries))
		for i, s := range summaries {
			list[i] = gin.H{
				"room_id":      s.ID,
				"name":         s.Name,
				"game_type":    s.GameType,
				"status":       s.Status,
				"player_count": s.PlayerCount,
				"max_players":  s.MaxPlayers,
				"is_bet_room":  s.IsBetRoom,
				"bet_amount":   s.BetAmount,
				"created_at":   s.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, list)
	}
}
