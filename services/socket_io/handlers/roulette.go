package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"

	gameconst "Spielhalle/constants/game"
	"Spielhalle/services/rooms"
	"Spielhalle/services/roulette"
	"Spielhalle/services/settlement"
	socketio_types "Spielhalle/services/socket_io/types"
	socketio_utils "Spielhalle/services/socket_io/utils"
)

// Pause between the spin result and the next betting phase.
const rouletteRoundPauseSec = 5

// HandleRoulettePlaceBet stakes one bet on the table. Players who joined
// the room after the game started are seated in the state on their first
// bet.
func HandleRoulettePlaceBet(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID, displayName string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")
		bet := roulette.Bet{
			Type:    roulette.BetType(socketio_utils.GetString(payload, "type")),
			Numbers: socketio_utils.GetIntSlice(payload, "numbers"),
			Amount:  socketio_utils.GetInt64(payload, "amount"),
		}

		withRouletteRoom(mgr, client, roomID, func(room *rooms.Room, state roulette.GameState) {
			// Late joiners enter the state on their first bet.
			if seated, err := roulette.ApplyAction(state, roulette.Action{
				Type:        roulette.ActionAddPlayer,
				UserID:      userID,
				DisplayName: displayName,
			}, userID); err == nil {
				state = seated
			} else if !errors.Is(err, roulette.ErrPlayerAlreadyAdded) {
				client.Emit("error", gin.H{"error": err.Error()})
				return
			}

			action := roulette.Action{Type: roulette.ActionPlaceBet, Bet: bet}

			if room.Settings.Bet.IsBetRoom {
				var next roulette.GameState
				balance, err := orch.PlaceBet(context.Background(), room.ID, userID,
					bet.Amount, "Roulette Einsatz", func() error {
						var applyErr error
						next, applyErr = roulette.ApplyAction(state, action, userID)
						return applyErr
					})
				if err != nil {
					client.Emit("error", gin.H{"error": err.Error()})
					if balance > 0 {
						// Debit and compensating refund both landed.
						socketio_utils.EmitBalance(sio, userID, balance, 0, "Roulette Einsatz zurück")
					}
					return
				}
				socketio_utils.EmitBalance(sio, userID, balance, -bet.Amount, "Roulette Einsatz")
				room.GameState = next
			} else {
				next, err := roulette.ApplyAction(state, action, userID)
				if err != nil {
					client.Emit("error", gin.H{"error": err.Error()})
					return
				}
				room.GameState = next
			}

			if p := room.Player(userID); p != nil {
				p.MissedTurns = 0
			}
			socketio_utils.BroadcastRoomState(sio, room)
		})
	}
}

// HandleRouletteRemoveBet takes a bet off the table before the spin and
// refunds its stake.
func HandleRouletteRemoveBet(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")
		betIndex := socketio_utils.GetInt(payload, "bet_index")

		withRouletteRoom(mgr, client, roomID, func(room *rooms.Room, state roulette.GameState) {
			var removedAmount int64
			for _, p := range state.Players {
				if p.UserID == userID && betIndex >= 0 && betIndex < len(p.Bets) {
					removedAmount = p.Bets[betIndex].Amount
				}
			}

			next, err := roulette.ApplyAction(state,
				roulette.Action{Type: roulette.ActionRemoveBet, BetIndex: betIndex}, userID)
			if err != nil {
				client.Emit("error", gin.H{"error": err.Error()})
				return
			}
			room.GameState = next

			if room.Settings.Bet.IsBetRoom && removedAmount > 0 {
				balance, err := orch.Refund(context.Background(), room.ID, userID,
					removedAmount, "Roulette Einsatz zurück")
				if err != nil {
					log.Printf("[ROULETTE-ALERT] refund failed for %s in room %s: %v",
						userID, room.ID, err)
				} else {
					socketio_utils.EmitBalance(sio, userID, balance, removedAmount, "Roulette Einsatz zurück")
				}
			}
			socketio_utils.BroadcastRoomState(sio, room)
		})
	}
}

// HandleRouletteSpin triggers the spin by hand on manual-spin tables. Host
// only; timed tables spin on their own.
func HandleRouletteSpin(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")

		withRouletteRoom(mgr, client, roomID, func(room *rooms.Room, state roulette.GameState) {
			if room.HostID != userID {
				client.Emit("error", gin.H{"error": "Nur der Host kann das Rad drehen"})
				return
			}
			spinRouletteLocked(mgr, orch, sio, room, state)
		})
	}
}

func withRouletteRoom(mgr *rooms.Manager, client *socket.Socket, roomID string,
	fn func(room *rooms.Room, state roulette.GameState)) {
	room, found := mgr.GetRoom(roomID)
	if !found {
		client.Emit("error", gin.H{"error": "Room not found"})
		return
	}

	room.Lock()
	defer room.Unlock()

	if room.Status != rooms.StatusPlaying || room.Settings.GameType != gameconst.TypeRoulette {
		client.Emit("error", gin.H{"error": "Kein laufendes Roulette-Spiel"})
		return
	}
	state, ok := room.GameState.(roulette.GameState)
	if !ok {
		client.Emit("error", gin.H{"error": "Kein laufendes Roulette-Spiel"})
		return
	}
	fn(room, state)
}

// scheduleRouletteSpin arms the automatic spin countdown.
func scheduleRouletteSpin(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, roomID string, spinTimerSec int) {
	socketio_utils.SpinTimers.Schedule(roomID, time.Duration(spinTimerSec)*time.Second, func() {
		room, found := mgr.GetRoom(roomID)
		if !found {
			return
		}
		room.Lock()
		defer room.Unlock()

		state, ok := room.GameState.(roulette.GameState)
		if !ok || room.Status != rooms.StatusPlaying || state.Phase != roulette.PhaseBetting {
			return
		}
		spinRouletteLocked(mgr, orch, sio, room, state)
	})
}

// spinRouletteLocked draws the winning number from the CSPRNG, settles the
// round and schedules the next betting phase. Caller holds the room lock.
func spinRouletteLocked(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, room *rooms.Room, state roulette.GameState) {
	socketio_utils.SpinTimers.Cancel(room.ID)

	winningNumber, err := socketio_utils.SpinWheel()
	if err != nil {
		log.Printf("[ROULETTE-ERROR] room %s spin failed: %v", room.ID, err)
		socketio_utils.BroadcastToRoom(sio, room.ID, "error", gin.H{"error": "Drehen fehlgeschlagen"})
		return
	}

	next, err := roulette.ApplyAction(state,
		roulette.Action{Type: roulette.ActionSpin, WinningNumber: winningNumber}, "")
	if err != nil {
		log.Printf("[ROULETTE-ERROR] room %s: %v", room.ID, err)
		return
	}
	room.GameState = next

	result := gin.H{
		"room_id":        room.ID,
		"round":          next.RoundNumber,
		"winning_number": winningNumber,
		"is_red":         roulette.IsRed(winningNumber),
		"is_black":       roulette.IsBlack(winningNumber),
	}

	if room.Settings.Bet.IsBetRoom {
		settled, err := orch.SettleRoulette(context.Background(), room.ID, next, winningNumber)
		if err != nil {
			log.Printf("[SETTLEMENT-ERROR] roulette room %s: %v", room.ID, err)
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

	socketio_utils.BroadcastToRoom(sio, room.ID, "roulette:spin-result", result)
	socketio_utils.BroadcastRoomState(sio, room)
	log.Printf("[ROULETTE] room %s round %d spun %d", room.ID, next.RoundNumber, winningNumber)

	roomID := room.ID
	spinTimer := room.Settings.SpinTimerSec
	manual := room.Settings.IsManualSpin
	socketio_utils.SpinTimers.Schedule(roomID, rouletteRoundPauseSec*time.Second, func() {
		startNextRouletteRound(mgr, orch, sio, roomID, spinTimer, manual)
	})
}

// startNextRouletteRound flips the table back to betting after the result
// pause and re-arms the spin countdown on timed tables.
func startNextRouletteRound(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, roomID string, spinTimerSec int, manual bool) {
	room, found := mgr.GetRoom(roomID)
	if !found {
		return
	}

	room.Lock()
	state, ok := room.GameState.(roulette.GameState)
	if !ok || room.Status != rooms.StatusPlaying {
		room.Unlock()
		return
	}

	next, err := roulette.StartNextRound(state)
	if err != nil {
		room.Unlock()
		return
	}
	room.GameState = next
	socketio_utils.BroadcastRoomState(sio, room)
	room.Unlock()

	if !manual {
		scheduleRouletteSpin(mgr, orch, sio, roomID, spinTimerSec)
	}
}
