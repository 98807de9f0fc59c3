package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zishang520/socket.io/v2/socket"

	"Spielhalle/services/rooms"
	socketio_types "Spielhalle/services/socket_io/types"
	socketio_utils "Spielhalle/services/socket_io/utils"
)

const maxChatMessageLen = 500

// HandleChatMessage appends to the room's bounded chat history and fans the
// message out to everyone in the room, spectators included.
func HandleChatMessage(mgr *rooms.Manager, client *socket.Socket,
	userID, displayName string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing arguments"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")
		content := strings.TrimSpace(socketio_utils.GetString(payload, "content"))

		if content == "" {
			client.Emit("error", gin.H{"error": "Nachricht darf nicht leer sein"})
			return
		}
		if len(content) > maxChatMessageLen {
			content = content[:maxChatMessageLen]
		}

		room, found := mgr.GetRoom(roomID)
		if !found {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		room.Lock()
		defer room.Unlock()

		member := room.Player(userID) != nil
		if !member {
			for _, s := range room.Spectators {
				if s.UserID == userID {
					member = true
					break
				}
			}
		}
		if !member {
			client.Emit("error", gin.H{"error": "Du sitzt nicht in diesem Raum"})
			return
		}

		msg := rooms.ChatMessage{
			ID:          uuid.NewString(),
			RoomID:      roomID,
			UserID:      userID,
			DisplayName: displayName,
			Content:     content,
			Timestamp:   time.Now().UnixMilli(),
		}
		room.AddChatMessage(msg)
		socketio_utils.BroadcastToRoom(sio, roomID, "chat:message", gin.H{"message": msg})
	}
}
