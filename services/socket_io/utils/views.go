package socketio_utils

import (
	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"

	socketio_types "Spielhalle/services/socket_io/types"

	"Spielhalle/services/blackjack"
	"Spielhalle/services/rooms"
)

// SanitizedGameState strips information clients must not see: the blackjack
// shoe stays server-side, and the dealer's hole card is withheld while it
// is face down.
func SanitizedGameState(state any) any {
	switch s := state.(type) {
	case blackjack.GameState:
		view := s
		view.Deck = nil
		if view.Dealer.Hidden && len(view.Dealer.Cards) > 1 {
			view.Dealer.Cards = view.Dealer.Cards[:1]
		}
		return view
	default:
		return state
	}
}

// RoomView projects a room for clients. Caller holds the room lock.
func RoomView(room *rooms.Room) gin.H {
	return gin.H{
		"room_id":    room.ID,
		"settings":   room.Settings,
		"host_id":    room.HostID,
		"status":     room.Status,
		"players":    room.Players,
		"spectators": room.Spectators,
		"game_state": SanitizedGameState(room.GameState),
	}
}

// BroadcastToRoom emits an event to every socket joined to the room.
func BroadcastToRoom(sio *socketio_types.SocketServer, roomID string, event string, data gin.H) {
	sio.Sio_server.To(socket.Room(roomID)).Emit(event, data)
}

// BroadcastRoomState pushes the authoritative room view to all members.
// Caller holds the room lock.
func BroadcastRoomState(sio *socketio_types.SocketServer, room *rooms.Room) {
	BroadcastToRoom(sio, room.ID, "game:state-update", RoomView(room))
}

// BalancePayload is the wire shape of a balance notification: the resulting
// balance, the signed delta that caused it and a short human reason.
func BalancePayload(newBalance, change int64, description string) gin.H {
	return gin.H{
		"new_balance": newBalance,
		"change":      change,
		"description": description,
	}
}

// EmitBalance notifies one user about a Chips balance change, wherever they
// are connected. change is negative for debits.
func EmitBalance(sio *socketio_types.SocketServer, userID string, newBalance, change int64, description string) {
	if client, ok := sio.GetConnection(userID); ok {
		client.Emit("balance:updated", BalancePayload(newBalance, change, description))
	}
}
