package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"

	gameconst "Spielhalle/constants/game"
	"Spielhalle/monitor"
	"Spielhalle/services/payout"
	"Spielhalle/services/rooms"
	"Spielhalle/services/settlement"
	socketio_types "Spielhalle/services/socket_io/types"
	socketio_utils "Spielhalle/services/socket_io/utils"
)

func parseRoomSettings(payload map[string]interface{}) rooms.Settings {
	settings := rooms.Settings{
		Name:          socketio_utils.GetString(payload, "name"),
		GameType:      socketio_utils.GetString(payload, "game_type"),
		MaxPlayers:    socketio_utils.GetInt(payload, "max_players"),
		TurnTimerSec:  socketio_utils.GetInt(payload, "turn_timer_sec"),
		AFKThreshold:  socketio_utils.GetInt(payload, "afk_threshold"),
		IsPrivate:     socketio_utils.GetBool(payload, "is_private"),
		SpinTimerSec:  socketio_utils.GetInt(payload, "spin_timer_sec"),
		IsManualSpin:  socketio_utils.GetBool(payload, "is_manual_spin"),
		DeckCount:     socketio_utils.GetInt(payload, "deck_count"),
		StandOnSoft17: true,
		KniffelPreset: socketio_utils.GetString(payload, "kniffel_preset"),
	}
	if v, ok := payload["stand_on_soft17"].(bool); ok {
		settings.StandOnSoft17 = v
	}

	if bet, ok := payload["bet"].(map[string]interface{}); ok {
		settings.Bet = rooms.BetSettings{
			IsBetRoom: socketio_utils.GetBool(bet, "is_bet_room"),
			BetAmount: socketio_utils.GetInt64(bet, "bet_amount"),
		}
		if ratios, ok := bet["payout_ratios"].([]interface{}); ok {
			for _, raw := range ratios {
				if entry, ok := raw.(map[string]interface{}); ok {
					settings.Bet.PayoutRatios = append(settings.Bet.PayoutRatios, payout.PayoutRatio{
						Position:   socketio_utils.GetInt(entry, "position"),
						Percentage: socketio_utils.GetInt(entry, "percentage"),
					})
				}
			}
		}
	}
	return settings
}

// HandleCreateRoom creates a room with the requester as host and joins the
// socket to the room channel.
func HandleCreateRoom(mgr *rooms.Manager, mon *monitor.Monitor, client *socket.Socket,
	userID, displayName string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room settings"})
			return
		}

		settings := parseRoomSettings(payload)
		// The poker engine only backs hand evaluation and pot math so far,
		// there is no table flow to seat a room on yet.
		if settings.GameType == gameconst.TypePoker {
			client.Emit("error", gin.H{"error": "Poker-Tische sind noch nicht verfügbar"})
			return
		}
		if settings.Bet.IsBetRoom {
			if settings.Bet.BetAmount <= 0 {
				client.Emit("error", gin.H{"error": "Einsatz muss positiv sein"})
				return
			}
			if len(settings.Bet.PayoutRatios) > 0 && !payout.ValidatePayoutRatios(settings.Bet.PayoutRatios) {
				client.Emit("error", gin.H{"error": "Ungültige Gewinnverteilung"})
				return
			}
		}

		room, err := mgr.CreateRoom(userID, displayName, settings)
		if err != nil {
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		client.Join(socket.Room(room.ID))
		mon.SetActiveRooms(mgr.RoomCount())

		room.Lock()
		client.Emit("room:created", socketio_utils.RoomView(room))
		room.Unlock()
	}
}

// HandleJoinRoom seats the user or, in a running game, adds them as a
// spectator.
func HandleJoinRoom(mgr *rooms.Manager, client *socket.Socket,
	userID, displayName string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")

		result, err := mgr.JoinRoom(roomID, userID, displayName)
		if err != nil {
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		client.Join(socket.Room(roomID))

		room := result.Room
		room.Lock()
		defer room.Unlock()

		if !result.Rejoined {
			msg := room.SystemMessage(displayName + " ist dem Raum beigetreten")
			room.AddChatMessage(msg)
			socketio_utils.BroadcastToRoom(sio, roomID, "chat:message", gin.H{"message": msg})
		}
		socketio_utils.BroadcastToRoom(sio, roomID, "room:player-joined", gin.H{
			"room_id":   roomID,
			"user_id":   userID,
			"spectator": result.Spectator,
			"rejoined":  result.Rejoined,
		})
		client.Emit("room:joined", socketio_utils.RoomView(room))
		socketio_utils.BroadcastRoomState(sio, room)
	}
}

// HandleLeaveRoom frees the seat voluntarily.
func HandleLeaveRoom(mgr *rooms.Manager, mon *monitor.Monitor, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")

		room, err := mgr.LeaveRoom(roomID, userID)
		if err != nil {
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		client.Leave(socket.Room(roomID))
		client.Emit("room:left", gin.H{"room_id": roomID})
		mon.SetActiveRooms(mgr.RoomCount())

		if room == nil {
			socketio_utils.TurnTimers.Cancel(roomID)
			socketio_utils.SpinTimers.Cancel(roomID)
			return
		}

		room.Lock()
		msg := room.SystemMessage("Ein Spieler hat den Raum verlassen")
		room.AddChatMessage(msg)
		socketio_utils.BroadcastToRoom(sio, roomID, "room:player-left", gin.H{
			"room_id": roomID,
			"user_id": userID,
			"reason":  "left",
		})
		socketio_utils.BroadcastRoomState(sio, room)
		room.Unlock()
	}
}

// HandleKickPlayer removes a player, host only.
func HandleKickPlayer(mgr *rooms.Manager, mon *monitor.Monitor, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing arguments"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")
		targetID := socketio_utils.GetString(payload, "user_id")

		room, found := mgr.GetRoom(roomID)
		if !found {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		room.Lock()
		isHost := room.HostID == userID
		room.Unlock()
		if !isHost {
			client.Emit("error", gin.H{"error": "Nur der Host kann Spieler entfernen"})
			return
		}
		if targetID == userID {
			client.Emit("error", gin.H{"error": "Der Host kann sich nicht selbst entfernen"})
			return
		}

		updated, err := mgr.LeaveRoom(roomID, targetID)
		if err != nil {
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		if target, ok := sio.GetConnection(targetID); ok {
			target.Leave(socket.Room(roomID))
			target.Emit("room:kicked", gin.H{"room_id": roomID})
		}
		mon.SetActiveRooms(mgr.RoomCount())

		log.Printf("[ROOM-KICK] %s kicked %s from room %s", userID, targetID, roomID)
		if updated != nil {
			updated.Lock()
			msg := updated.SystemMessage("Ein Spieler wurde entfernt")
			updated.AddChatMessage(msg)
			socketio_utils.BroadcastToRoom(sio, roomID, "room:player-left", gin.H{
				"room_id": roomID,
				"user_id": targetID,
				"reason":  "kicked",
			})
			socketio_utils.BroadcastRoomState(sio, updated)
			updated.Unlock()
		}
	}
}

// HandleListRooms answers with the public room directory.
func HandleListRooms(mgr *rooms.Manager, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		client.Emit("room:list", gin.H{"rooms": mgr.PublicRooms()})
	}
}

// HandleToggleReady flips the requester's ready flag in the lobby.
func HandleToggleReady(mgr *rooms.Manager, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")

		room, found := mgr.GetRoom(roomID)
		if !found {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		room.Lock()
		defer room.Unlock()
		if room.Status != rooms.StatusWaiting {
			client.Emit("error", gin.H{"error": "Das Spiel läuft bereits"})
			return
		}
		player := room.Player(userID)
		if player == nil {
			client.Emit("error", gin.H{"error": "Du sitzt nicht in diesem Raum"})
			return
		}
		player.IsReady = !player.IsReady
		socketio_utils.BroadcastRoomState(sio, room)
	}
}

// HandleRequestState re-sends the authoritative room view, typically after
// a reconnect.
func HandleRequestState(mgr *rooms.Manager, client *socket.Socket, userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")

		room, found := mgr.GetRoom(roomID)
		if !found {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		room.Lock()
		client.Emit("room:state", socketio_utils.RoomView(room))
		room.Unlock()
	}
}

// HandleStartGame launches the room's game, host only. For bet rooms the
// stakes are escrowed before the first state broadcast; a player whose
// debit fails blocks the start and everything already debited is refunded.
func HandleStartGame(mgr *rooms.Manager, orch *settlement.Orchestrator, mon *monitor.Monitor,
	client *socket.Socket, userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")

		room, found := mgr.GetRoom(roomID)
		if !found {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		room.Lock()
		defer room.Unlock()

		if room.HostID != userID {
			client.Emit("error", gin.H{"error": "Nur der Host kann das Spiel starten"})
			return
		}
		if room.Status != rooms.StatusWaiting {
			client.Emit("error", gin.H{"error": "Das Spiel läuft bereits"})
			return
		}
		if len(room.Players) < 1 {
			client.Emit("error", gin.H{"error": "Nicht genug Spieler"})
			return
		}
		if !room.AllPlayersReady() {
			client.Emit("error", gin.H{"error": "Nicht alle Spieler sind bereit"})
			return
		}

		if err := startGameLocked(mgr, orch, sio, room); err != nil {
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		log.Printf("[GAME-START] room %s (%s) with %d players",
			room.ID, room.Settings.GameType, len(room.Players))
		socketio_utils.BroadcastToRoom(sio, roomID, "game:started", gin.H{"room_id": roomID})
		socketio_utils.BroadcastRoomState(sio, room)
	}
}
