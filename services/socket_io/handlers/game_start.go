package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gameconst "Spielhalle/constants/game"
	"Spielhalle/services/blackjack"
	"Spielhalle/services/kniffel"
	"Spielhalle/services/roulette"

	"Spielhalle/services/rooms"
	"Spielhalle/services/settlement"
	socketio_types "Spielhalle/services/socket_io/types"
	socketio_utils "Spielhalle/services/socket_io/utils"
)

var errUnstartableGame = errors.New("Dieser Spieltyp kann nicht gestartet werden")

// startGameLocked transitions a waiting room into a running game. Caller
// holds the room lock. For Kniffel bet rooms every player's stake is
// escrowed up front; a failed debit aborts the start and refunds whoever
// already paid.
func startGameLocked(mgr *rooms.Manager, orch *settlement.Orchestrator,
	sio *socketio_types.SocketServer, room *rooms.Room) error {
	switch room.Settings.GameType {
	case gameconst.TypeKniffel:
		if err := escrowKniffelStakes(orch, sio, room); err != nil {
			return err
		}
		players := make([]kniffel.PlayerState, len(room.Players))
		for i, p := range room.Players {
			players[i] = kniffel.PlayerState{UserID: p.UserID, DisplayName: p.DisplayName}
		}
		ruleset := kniffel.ResolveRuleset(room.Settings.KniffelPreset, nil)
		state := kniffel.NewGameState(players, ruleset, time.Now())
		room.GameState = state
		scheduleKniffelTurnLocked(mgr, orch, sio, room, state)

	case gameconst.TypeBlackjack:
		deck, err := blackjack.ShuffledShoe(room.Settings.DeckCount)
		if err != nil {
			return fmt.Errorf("could not shuffle shoe: %w", err)
		}
		players := make([]blackjack.Player, len(room.Players))
		for i, p := range room.Players {
			players[i] = blackjack.Player{UserID: p.UserID, DisplayName: p.DisplayName}
		}
		state := blackjack.NewGameState(players, blackjack.Settings{
			DeckCount:     room.Settings.DeckCount,
			TurnTimer:     room.Settings.TurnTimerSec,
			StandOnSoft17: room.Settings.StandOnSoft17,
		}, deck)
		room.GameState = state
		scheduleBlackjackBettingLocked(mgr, orch, sio, room, state)

	case gameconst.TypeRoulette:
		players := make([]roulette.Player, len(room.Players))
		for i, p := range room.Players {
			players[i] = roulette.Player{UserID: p.UserID, DisplayName: p.DisplayName}
		}
		room.GameState = roulette.NewGameState(players,
			room.Settings.SpinTimerSec, room.Settings.IsManualSpin)
		if !room.Settings.IsManualSpin {
			scheduleRouletteSpin(mgr, orch, sio, room.ID, room.Settings.SpinTimerSec)
		}

	default:
		return errUnstartableGame
	}

	room.Status = rooms.StatusPlaying
	for _, p := range room.Players {
		p.IsReady = false
		p.MissedTurns = 0
	}
	return nil
}

// escrowKniffelStakes debits every seated player's stake into the room
// escrow. On any failure the debits already made are compensated before the
// error is surfaced, so an aborted start never holds money.
func escrowKniffelStakes(orch *settlement.Orchestrator, sio *socketio_types.SocketServer, room *rooms.Room) error {
	if !room.Settings.Bet.IsBetRoom {
		return nil
	}

	ctx := context.Background()
	description := fmt.Sprintf("Einsatz %s", room.Settings.Name)

	var paid []string
	for _, p := range room.Players {
		balance, err := orch.PlaceBet(ctx, room.ID, p.UserID, room.Settings.Bet.BetAmount,
			description, func() error { return nil })
		if err != nil {
			for _, refundID := range paid {
				refunded, refundErr := orch.Refund(ctx, room.ID, refundID,
					room.Settings.Bet.BetAmount, description+" zurück (Start abgebrochen)")
				if refundErr != nil {
					log.Printf("[GAME-START-ALERT] refund failed for %s in room %s: %v",
						refundID, room.ID, refundErr)
					continue
				}
				socketio_utils.EmitBalance(sio, refundID, refunded,
					room.Settings.Bet.BetAmount, description+" zurück (Start abgebrochen)")
			}
			return fmt.Errorf("Einsatz von %s fehlgeschlagen: %w", p.DisplayName, err)
		}
		paid = append(paid, p.UserID)
		socketio_utils.EmitBalance(sio, p.UserID, balance, -room.Settings.Bet.BetAmount, description)
	}
	return nil
}

// endRoomLocked marks the room ended. Cleanup will reap it after the
// staleness window. Caller holds the room lock.
func endRoomLocked(room *rooms.Room) {
	room.Status = rooms.StatusEnded
	room.EndedAt = time.Now()
	socketio_utils.TurnTimers.Cancel(room.ID)
	socketio_utils.SpinTimers.Cancel(room.ID)
}
