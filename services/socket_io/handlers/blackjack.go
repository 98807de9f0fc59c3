package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"

	gameconst "Spielhalle/constants/game"
	"Spielhalle/services/blackjack"
	"Spielhalle/services/rooms"
	"Spielhalle/services/settlement"
	socketio_types "Spielhalle/services/socket_io/types"
	socketio_utils "Spielhalle/services/socket_io/utils"
)

// Shoe penetration point: reshuffle between rounds once fewer cards remain.
const reshuffleThreshold = 52

// HandleBlackjackPlaceBet stakes the round's bet. In bet rooms the Chips
// are debited and escrowed first; a bet the table rejects is refunded.
func HandleBlackjackPlaceBet(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")
		amount := socketio_utils.GetInt64(payload, "amount")

		withBlackjackRoom(mgr, client, roomID, func(room *rooms.Room, state blackjack.GameState) {
			action := blackjack.Action{Type: blackjack.ActionPlaceBet, Amount: amount}
			applyBlackjackStake(mgr, orch, sio, client, room, state, action, userID, amount, "Blackjack Einsatz")
		})
	}
}

// HandleBlackjackAction plays HIT, STAND, DOUBLE, SPLIT, INSURANCE or
// SURRENDER on the actor's current hand. Actions that raise the stake
// (double, split, insurance) debit the difference up front.
func HandleBlackjackAction(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")
		actionType := socketio_utils.GetString(payload, "action")
		amount := socketio_utils.GetInt64(payload, "amount")

		withBlackjackRoom(mgr, client, roomID, func(room *rooms.Room, state blackjack.GameState) {
			action := blackjack.Action{Type: actionType, Amount: amount}

			stake := int64(0)
			description := ""
			switch actionType {
			case blackjack.ActionDouble, blackjack.ActionSplit:
				if hand := currentHand(state, userID); hand != nil {
					stake = hand.Bet
				}
				description = "Blackjack " + actionType
			case blackjack.ActionInsurance:
				stake = amount
				description = "Blackjack Versicherung"
			case blackjack.ActionHit, blackjack.ActionStand, blackjack.ActionSurrender:
			default:
				client.Emit("error", gin.H{"error": "Unknown action type"})
				return
			}

			if stake > 0 {
				applyBlackjackStake(mgr, orch, sio, client, room, state, action, userID, stake, description)
				return
			}
			applyBlackjackAction(mgr, orch, sio, client, room, state, action, userID)
		})
	}
}

// HandleBlackjackNextRound resets a settled round to betting, reshuffling
// the shoe when it runs low. Host only.
func HandleBlackjackNextRound(mgr *rooms.Manager, orch *settlement.Orchestrator, client *socket.Socket,
	userID string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, ok := socketio_utils.ParsePayload(args)
		if !ok {
			client.Emit("error", gin.H{"error": "Missing room id"})
			return
		}
		roomID := socketio_utils.GetString(payload, "room_id")

		withBlackjackRoom(mgr, client, roomID, func(room *rooms.Room, state blackjack.GameState) {
			if room.HostID != userID {
				client.Emit("error", gin.H{"error": "Nur der Host kann die nächste Runde starten"})
				return
			}

			next, err := blackjack.NextRound(state)
			if err != nil {
				client.Emit("error", gin.H{"error": err.Error()})
				return
			}

			if len(next.Deck) < reshuffleThreshold {
				deck, err := blackjack.ShuffledShoe(room.Settings.DeckCount)
				if err != nil {
					client.Emit("error", gin.H{"error": "Mischen fehlgeschlagen"})
					return
				}
				next.Deck = deck
				log.Printf("[BLACKJACK] room %s reshuffled the shoe", room.ID)
			}

			commitBlackjackState(mgr, orch, sio, room, next, userID)
		})
	}
}

func withBlackjackRoom(mgr *rooms.Manager, client *socket.Socket, roomID string,
	fn func(room *rooms.Room, state blackjack.GameState)) {
	room, found := mgr.GetRoom(roomID)
	if !found {
		client.Emit("error", gin.H{"error": "Room not found"})
		return
	}

	room.Lock()
	defer room.Unlock()

	if room.Status != rooms.StatusPlaying || room.Settings.GameType != gameconst.TypeBlackjack {
		client.Emit("error", gin.H{"error": "Kein laufendes Blackjack-Spiel"})
		return
	}
	state, ok := room.GameState.(blackjack.GameState)
	if !ok {
		client.Emit("error", gin.H{"error": "Kein laufendes Blackjack-Spiel"})
		return
	}
	fn(room, state)
}

func currentHand(state blackjack.GameState, userID string) *blackjack.PlayerHand {
	for i := range state.Players {
		if state.Players[i].UserID == userID {
			p := state.Players[i]
			if p.CurrentHandIndex < len(p.Hands) {
				return &p.Hands[p.CurrentHandIndex]
			}
			return nil
		}
	}
	return nil
}

// applyBlackjackStake wraps a transition that costs Chips in the
// debit-then-apply saga. Free rooms skip the ledger entirely.
func applyBlackjackStake(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, client *socket.Socket,
	room *rooms.Room, state blackjack.GameState, action blackjack.Action,
	userID string, stake int64, description string) {
	if !room.Settings.Bet.IsBetRoom {
		applyBlackjackAction(mgr, orch, sio, client, room, state, action, userID)
		return
	}

	var next blackjack.GameState
	balance, err := orch.PlaceBet(context.Background(), room.ID, userID, stake, description, func() error {
		var applyErr error
		next, applyErr = blackjack.ApplyAction(state, action, userID)
		return applyErr
	})
	if err != nil {
		client.Emit("error", gin.H{"error": err.Error()})
		if balance > 0 {
			// Debit and compensating refund both landed.
			socketio_utils.EmitBalance(sio, userID, balance, 0, description+" zurück")
		}
		return
	}

	socketio_utils.EmitBalance(sio, userID, balance, -stake, description)
	commitBlackjackState(mgr, orch, sio, room, next, userID)
}

func applyBlackjackAction(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, client *socket.Socket,
	room *rooms.Room, state blackjack.GameState, action blackjack.Action, userID string) {
	next, err := blackjack.ApplyAction(state, action, userID)
	if err != nil {
		client.Emit("error", gin.H{"error": err.Error()})
		return
	}
	commitBlackjackState(mgr, orch, sio, room, next, userID)
}

// commitBlackjackState installs the new state and reacts to the phase it
// landed in: arming the turn timer, starting the paced dealer loop or
// settling immediately. Caller holds the room lock.
func commitBlackjackState(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, room *rooms.Room, state blackjack.GameState, actorID string) {
	room.GameState = state
	if p := room.Player(actorID); p != nil {
		p.MissedTurns = 0
	}
	socketio_utils.BroadcastRoomState(sio, room)

	switch state.Phase {
	case blackjack.PhaseBetting:
		scheduleBlackjackBettingLocked(mgr, orch, sio, room, state)
	case blackjack.PhasePlayerTurn:
		scheduleBlackjackTurnLocked(mgr, orch, sio, room, state)
	case blackjack.PhaseDealerTurn:
		socketio_utils.TurnTimers.Cancel(room.ID)
		go runDealerLoop(mgr, orch, sio, room.ID)
	case blackjack.PhaseSettlement:
		socketio_utils.TurnTimers.Cancel(room.ID)
		settleBlackjackRoundLocked(orch, sio, room, state)
	}
}

// scheduleBlackjackBettingLocked arms the betting window. Players who have
// not bet when it expires sit the round out. Caller holds the room lock.
func scheduleBlackjackBettingLocked(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, room *rooms.Room, state blackjack.GameState) {
	delay := time.Duration(room.Settings.TurnTimerSec) * time.Second
	roomID := room.ID
	round := state.RoundNumber
	socketio_utils.TurnTimers.Schedule(roomID, delay, func() {
		blackjackBettingTimeout(mgr, orch, sio, roomID, round)
	})
}

// blackjackBettingTimeout closes an expired betting window so the round can
// deal without the players who never bet.
func blackjackBettingTimeout(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, roomID string, round int) {
	room, found := mgr.GetRoom(roomID)
	if !found {
		return
	}

	room.Lock()
	defer room.Unlock()

	state, ok := room.GameState.(blackjack.GameState)
	if !ok || room.Status != rooms.StatusPlaying ||
		state.Phase != blackjack.PhaseBetting || state.RoundNumber != round {
		return
	}

	next, err := blackjack.TimeOutBetting(state)
	if err != nil {
		return
	}
	log.Printf("[BETTING-TIMEOUT] blackjack room %s round %d", roomID, round)

	if next.Phase == blackjack.PhaseBetting {
		// Nobody bet, keep the table open for another window.
		room.GameState = next
		socketio_utils.BroadcastRoomState(sio, room)
		scheduleBlackjackBettingLocked(mgr, orch, sio, room, next)
		return
	}
	commitBlackjackState(mgr, orch, sio, room, next, "")
}

// scheduleBlackjackTurnLocked arms the auto-stand timeout for the current
// player. Caller holds the room lock.
func scheduleBlackjackTurnLocked(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, room *rooms.Room, state blackjack.GameState) {
	if state.CurrentPlayerIndex < 0 || state.CurrentPlayerIndex >= len(state.Players) {
		return
	}
	current := state.Players[state.CurrentPlayerIndex]

	delay := time.Duration(room.Settings.TurnTimerSec) * time.Second
	if p := room.Player(current.UserID); p == nil || !p.IsConnected {
		delay = 2 * time.Second
	}

	roomID := room.ID
	turnPlayer := current.UserID
	handIndex := current.CurrentHandIndex
	round := state.RoundNumber
	socketio_utils.TurnTimers.Schedule(roomID, delay, func() {
		blackjackTurnTimeout(mgr, orch, sio, roomID, turnPlayer, handIndex, round)
	})
}

// blackjackTurnTimeout stands the expired hand for the player.
func blackjackTurnTimeout(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, roomID, turnPlayer string, handIndex, round int) {
	room, found := mgr.GetRoom(roomID)
	if !found {
		return
	}

	room.Lock()
	defer room.Unlock()

	state, ok := room.GameState.(blackjack.GameState)
	if !ok || room.Status != rooms.StatusPlaying || state.Phase != blackjack.PhasePlayerTurn {
		return
	}
	if state.CurrentPlayerIndex < 0 || state.CurrentPlayerIndex >= len(state.Players) {
		return
	}
	current := state.Players[state.CurrentPlayerIndex]
	if current.UserID != turnPlayer || current.CurrentHandIndex != handIndex || state.RoundNumber != round {
		return
	}

	log.Printf("[TURN-TIMEOUT] blackjack room %s player %s", roomID, turnPlayer)
	if p := room.Player(turnPlayer); p != nil {
		p.MissedTurns++
	}

	next, err := blackjack.ApplyAction(state,
		blackjack.Action{Type: blackjack.ActionStand}, turnPlayer)
	if err != nil {
		log.Printf("[TURN-TIMEOUT-ERROR] blackjack room %s: %v", roomID, err)
		return
	}
	commitBlackjackState(mgr, orch, sio, room, next, "")
}

// runDealerLoop advances the dealer one visible step at a time, with the
// table pacing delay between steps, until the round settles.
func runDealerLoop(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, roomID string) {
	for {
		time.Sleep(gameconst.DealerCardDelayMs * time.Millisecond)

		room, found := mgr.GetRoom(roomID)
		if !found {
			return
		}

		room.Lock()
		state, ok := room.GameState.(blackjack.GameState)
		if !ok || state.Phase != blackjack.PhaseDealerTurn {
			room.Unlock()
			return
		}

		next, err := blackjack.DealerStep(state)
		if err != nil {
			log.Printf("[DEALER-ERROR] room %s: %v", roomID, err)
			room.Unlock()
			return
		}
		room.GameState = next
		socketio_utils.BroadcastRoomState(sio, room)

		if next.Phase == blackjack.PhaseSettlement {
			settleBlackjackRoundLocked(orch, sio, room, next)
			room.Unlock()
			return
		}
		room.Unlock()
	}
}

// settleBlackjackRoundLocked pays out the round and moves the table to
// round_end. Caller holds the room lock.
func settleBlackjackRoundLocked(orch *settlement.Orchestrator, sio *socketio_types.SocketServer,
	room *rooms.Room, state blackjack.GameState) {
	settlements := blackjack.BuildSettlement(state)

	result := gin.H{
		"room_id":     room.ID,
		"round":       state.RoundNumber,
		"settlements": settlements,
	}

	if room.Settings.Bet.IsBetRoom {
		settled, err := orch.SettleBlackjack(context.Background(), room.ID, room.Settings.Name, state)
		if err != nil {
			log.Printf("[SETTLEMENT-ERROR] blackjack room %s: %v", room.ID, err)
			socketio_utils.BroadcastToRoom(sio, room.ID, "error",
				gin.H{"error": "Auszahlung fehlgeschlagen, bitte Support kontaktieren"})
		} else {
			result["pot"] = settled.Pot
			for _, p := range settled.Payouts {
				if balance, ok := settled.Balances[p.UserID]; ok {
					socketio_utils.EmitBalance(sio, p.UserID, balance, p.Amount, p.Description)
				}
			}
		}
	}

	state.Phase = blackjack.PhaseRoundEnd
	room.GameState = state

	socketio_utils.BroadcastToRoom(sio, room.ID, "blackjack:round-settled", result)
	socketio_utils.BroadcastRoomState(sio, room)
	log.Printf("[BLACKJACK] room %s round %d settled, %d hands paid",
		room.ID, state.RoundNumber, len(settlements))
}
