package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"

	gameconst "Spielhalle/constants/game"
	"Spielhalle/services/kniffel"
	"Spielhalle/services/payout"
	"Spielhalle/services/rooms"
	"Spielhalle/services/settlement"
	socketio_types "Spielhalle/services/socket_io/types"
	socketio_utils "Spielhalle/services/socket_io/utils"
)

// HandleRollDice rolls the unheld dice for the current player. Dice values
// come from the server CSPRNG, the client only requests the roll.
func HandleRollDice(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")

		withKniffelRoom(mgr, client, roomID, func(room *rooms.Room, state kniffel.GameState) {
			// Held dice keep their values, only the rest re-roll.
			dice, err := socketio_utils.RollDice(state.DiceToRoll())
			if err != nil {
				client.Emit("error", gin.H{"error": "Würfeln fehlgeschlagen"})
				return
			}
			applyKniffelAction(mgr, orch, sio, client, room, state,
				kniffel.Action{Type: kniffel.ActionRollDice, Dice: dice}, userID)
		})
	}
}

// HandleHoldDice updates which dice are kept between rolls.
func HandleHoldDice(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")
		held := socketio_utils.GetBoolArray5(payload, "held")

		withKniffelRoom(mgr, client, roomID, func(room *rooms.Room, state kniffel.GameState) {
			applyKniffelAction(mgr, orch, sio, client, room, state,
				kniffel.Action{Type: kniffel.ActionHoldDice, Held: held}, userID)
		})
	}
}

// HandleChooseCategory scores the current dice into a category and ends the
// turn.
func HandleChooseCategory(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")
		category := socketio_utils.GetString(payload, "category")

		withKniffelRoom(mgr, client, roomID, func(room *rooms.Room, state kniffel.GameState) {
			applyKniffelAction(mgr, orch, sio, client, room, state,
				kniffel.Action{Type: kniffel.ActionChooseCategory, Category: category}, userID)
		})
	}
}

// withKniffelRoom resolves the room, locks it and hands the typed state to
// fn. The lock is held for the whole of fn.
func withKniffelRoom(mgr *rooms.Manager, client *socket.Socket, roomID string,
	fn func(room *rooms.Room, state kniffel.GameState)) {
	room, found := mgr.GetRoom(roomID)
	if !found {
		client.Emit("error", gin.H{"error": "Room not found"})
		return
	}

	room.Lock()
	defer room.Unlock()

	if room.Status != rooms.StatusPlaying || room.Settings.GameType != gameconst.TypeKniffel {
		client.Emit("error", gin.H{"error": "Kein laufendes Kniffel-Spiel"})
		return
	}
	state, ok := room.GameState.(kniffel.GameState)
	if !ok {
		client.Emit("error", gin.H{"error": "Kein laufendes Kniffel-Spiel"})
		return
	}
	fn(room, state)
}

// applyKniffelAction runs one transition, broadcasts the result and keeps
// the turn timer in step. Caller holds the room lock.
func applyKniffelAction(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, client *socket.Socket,
	room *rooms.Room, state kniffel.GameState, action kniffel.Action, actorID string) {
	next, err := kniffel.ApplyAction(state, action, actorID)
	if err != nil {
		if client != nil {
			client.Emit("error", gin.H{"error": err.Error()})
		}
		return
	}

	room.GameState = next
	if p := room.Player(actorID); p != nil {
		p.MissedTurns = 0
	}

	if next.Finished {
		finishKniffelLocked(orch, sio, room, next)
		return
	}

	socketio_utils.BroadcastRoomState(sio, room)
	if action.Type == kniffel.ActionChooseCategory {
		scheduleKniffelTurnLocked(mgr, orch, sio, room, next)
	}
}

// scheduleKniffelTurnLocked arms the turn timer for the player whose turn
// it now is. Disconnected or kicked players get a token delay so the game
// moves on quickly. Caller holds the room lock.
func scheduleKniffelTurnLocked(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, room *rooms.Room, state kniffel.GameState) {
	current := state.CurrentPlayer()
	delay := time.Duration(room.Settings.TurnTimerSec) * time.Second
	if p := room.Player(current.UserID); p == nil || !p.IsConnected {
		delay = 2 * time.Second
	}

	roomID := room.ID
	turnPlayer := current.UserID
	round := state.Round
	socketio_utils.TurnTimers.Schedule(roomID, delay, func() {
		kniffelTurnTimeout(mgr, orch, sio, roomID, turnPlayer, round)
	})
}

// kniffelTurnTimeout auto-plays an expired turn: roll once if the player
// never rolled, then score the best still-open category. Repeated misses
// beyond the AFK threshold cost the seat.
func kniffelTurnTimeout(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, roomID, turnPlayer string, round int) {
	room, found := mgr.GetRoom(roomID)
	if !found {
		return
	}

	var kickUserID string

	room.Lock()
	state, ok := room.GameState.(kniffel.GameState)
	if !ok || room.Status != rooms.StatusPlaying || state.Finished {
		room.Unlock()
		return
	}
	current := state.CurrentPlayer()
	// The turn already moved on, this timeout is stale.
	if current.UserID != turnPlayer || state.Round != round {
		room.Unlock()
		return
	}

	log.Printf("[TURN-TIMEOUT] room %s player %s round %d", roomID, turnPlayer, round)

	if p := room.Player(turnPlayer); p != nil {
		p.MissedTurns++
		if p.MissedTurns >= room.Settings.AFKThreshold {
			kickUserID = turnPlayer
		}
	}

	if state.RollsRemaining == state.Ruleset.MaxRolls {
		dice, err := socketio_utils.RollDice(state.DiceToRoll())
		if err == nil {
			if rolled, err := kniffel.ApplyAction(state,
				kniffel.Action{Type: kniffel.ActionRollDice, Dice: dice}, turnPlayer); err == nil {
				state = rolled
			}
		}
	}

	category := kniffel.BestCategory(state.Dice, current.Scoresheet, state.Ruleset)
	if category != "" {
		next, err := kniffel.ApplyAction(state,
			kniffel.Action{Type: kniffel.ActionChooseCategory, Category: category}, turnPlayer)
		if err == nil {
			state = next
		} else {
			log.Printf("[TURN-TIMEOUT-ERROR] room %s auto-choose failed: %v", roomID, err)
		}
	}
	room.GameState = state

	if state.Finished {
		finishKniffelLocked(orch, sio, room, state)
		room.Unlock()
	} else {
		socketio_utils.BroadcastRoomState(sio, room)
		scheduleKniffelTurnLocked(mgr, orch, sio, room, state)
		room.Unlock()
	}

	// Kick outside the room lock, LeaveRoom takes the manager lock first.
	if kickUserID != "" {
		kickAFKPlayer(mgr, sio, roomID, kickUserID)
	}
}

func kickAFKPlayer(mgr *rooms.Manager, sio *socketio_types.SocketServer, roomID, userID string) {
	updated, err := mgr.LeaveRoom(roomID, userID)
	if err != nil {
		return
	}
	log.Printf("[ROOM-AFK] %s removed from room %s after missed turns", userID, roomID)

	if target, ok := sio.GetConnection(userID); ok {
		target.Leave(socket.Room(roomID))
		target.Emit("room:kicked", gin.H{"room_id": roomID, "reason": "afk"})
	}
	if updated != nil {
		updated.Lock()
		msg := updated.SystemMessage("Ein Spieler wurde wegen Inaktivität entfernt")
		updated.AddChatMessage(msg)
		socketio_utils.BroadcastToRoom(sio, roomID, "room:player-left", gin.H{
			"room_id": roomID,
			"user_id": userID,
			"reason":  "afk",
		})
		socketio_utils.BroadcastRoomState(sio, updated)
		updated.Unlock()
	}
}

// finishKniffelLocked settles a finished game and broadcasts the final
// standings. Caller holds the room lock.
func finishKniffelLocked(orch *settlement.Orchestrator, sio *socketio_types.SocketServer,
	room *rooms.Room, state kniffel.GameState) {
	rankings := state.Rankings()
	result := gin.H{
		"room_id":  room.ID,
		"rankings": rankings,
		"totals":   state.Totals(),
	}

	if room.Settings.Bet.IsBetRoom {
		ratios := room.Settings.Bet.PayoutRatios
		if len(ratios) == 0 {
			ratios = []payout.PayoutRatio{{Position: 1, Percentage: 100}}
		}
		settled, err := orch.SettleKniffel(context.Background(), room.ID, room.Settings.Name, state, ratios)
		if err != nil {
			log.Printf("[SETTLEMENT-ERROR] kniffel room %s: %v", room.ID, err)
			socketio_utils.BroadcastToRoom(sio, room.ID, "error",
				gin.H{"error": "Auszahlung fehlgeschlagen, bitte Support kontaktieren"})
		} else {
			result["pot"] = settled.Pot
			result["payouts"] = settled.Payouts
			for _, p := range settled.Payouts {
				if balance, ok := settled.Balances[p.UserID]; ok {
					socketio_utils.EmitBalance(sio, p.UserID, balance, p.Amount, p.Description)
				}
			}
		}
	}

	endRoomLocked(room)
	socketio_utils.BroadcastToRoom(sio, room.ID, "game:finished", result)
	socketio_utils.BroadcastRoomState(sio, room)
	log.Printf("[GAME-END] kniffel room %s finished", room.ID)
}
