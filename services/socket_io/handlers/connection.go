package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	gameconst "Spielhalle/constants/game"
	redis_models "Spielhalle/models/redis"
	"Spielhalle/monitor"
	"Spielhalle/services/redis"
	"Spielhalle/services/rooms"
	socketio_types "Spielhalle/services/socket_io/types"
	socketio_utils "Spielhalle/services/socket_io/utils"
)

// HandleConnected runs once per fresh socket connection: presence is
// stored, any pending disconnect grace timer is cancelled and the user's
// seats are marked live again.
func HandleConnected(mgr *rooms.Manager, redisClient *redis.RedisClient,
	mon *monitor.Monitor, userID, socketID string, sio *socketio_types.SocketServer) {
	socketio_utils.DisconnectTimers.Cancel(userID)

	if err := redisClient.SavePlayerPresence(&redis_models.PlayerPresence{
		UserID:   userID,
		Status:   redis_models.StatusOnline,
		LastPing: time.Now().Unix(),
		SocketID: socketID,
	}); err != nil {
		log.Printf("[CONNECT-ERROR] could not save presence for %s: %v", userID, err)
	}

	for _, room := range mgr.MarkConnected(userID) {
		room.Lock()
		socketio_utils.BroadcastToRoom(sio, room.ID, "room:player-reconnected", gin.H{
			"room_id": room.ID,
			"user_id": userID,
		})
		socketio_utils.BroadcastRoomState(sio, room)
		room.Unlock()
	}

	mon.IncOnlinePlayers()
}

// Function to handle socket.io client disconnections. Seats are kept for a
// grace window so a flaky connection does not cost the player their game;
// only after it elapses without a reconnect are the rooms actually left.
func HandleDisconnecting(mgr *rooms.Manager, redisClient *redis.RedisClient,
	mon *monitor.Monitor, userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] user %s disconnecting", userID)

		if err := redisClient.DeletePlayerPresence(userID); err != nil {
			log.Printf("[DISCONNECT-ERROR] could not clear presence for %s: %v", userID, err)
		}

		for _, room := range mgr.MarkDisconnected(userID) {
			room.Lock()
			socketio_utils.BroadcastToRoom(sio, room.ID, "room:player-disconnected", gin.H{
				"room_id": room.ID,
				"user_id": userID,
			})
			socketio_utils.BroadcastRoomState(sio, room)
			room.Unlock()
		}

		sio.RemoveConnection(userID)
		mon.DecOnlinePlayers()

		grace := time.Duration(gameconst.DisconnectedGraceSec) * time.Second
		socketio_utils.DisconnectTimers.Schedule(userID, grace, func() {
			// Reconnected in the meantime, keep the seats.
			if _, ok := sio.GetConnection(userID); ok {
				return
			}
			updated := mgr.RemoveUserFromAllRooms(userID)
			for _, room := range updated {
				room.Lock()
				msg := room.SystemMessage("Ein Spieler hat den Raum verlassen")
				room.AddChatMessage(msg)
				socketio_utils.BroadcastToRoom(sio, room.ID, "room:player-left", gin.H{
					"room_id": room.ID,
					"user_id": userID,
					"reason":  "disconnected",
				})
				socketio_utils.BroadcastRoomState(sio, room)
				room.Unlock()
			}
			mon.SetActiveRooms(mgr.RoomCount())
			log.Printf("[DISCONNECT-DONE] user %s removed after grace period", userID)
		})
	}
}
