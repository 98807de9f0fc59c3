// Package settlement sequences the money side of a round: stake debit with
// escrow at bet time, compensating refund when the game rejects the bet,
// and the end-of-round payout computed by the per-game settlement rules.
package settlement

import (
	"context"
	"fmt"
	"log"

	"Spielhalle/monitor"
	"Spielhalle/services/blackjack"
	"Spielhalle/services/kniffel"
	"Spielhalle/services/ledger"
	"Spielhalle/services/payout"
	"Spielhalle/services/roulette"
)

type Orchestrator struct {
	ledger *ledger.Service
	mon    *monitor.Monitor
}

// New builds the orchestrator. mon may be nil in tests, settlement counters
// are then skipped.
func New(l *ledger.Service, mon *monitor.Monitor) *Orchestrator {
	return &Orchestrator{ledger: l, mon: mon}
}

// PlaceBet runs the debit-then-apply saga: the stake is debited and
// escrowed first; if apply (the game-state transition) rejects, the debit
// is compensated with an explicit refund before the error is returned.
// A refund failure is logged as an alert, that money needs manual
// reconciliation and must never be silently dropped.
func (o *Orchestrator) PlaceBet(ctx context.Context, roomID, userID string, amount int64, description string, apply func() error) (int64, error) {
	newBalance, err := o.ledger.PlaceBetWithEscrow(ctx, roomID, userID, amount, description)
	if err != nil {
		return 0, err
	}

	if err := apply(); err != nil {
		refunded, refundErr := o.ledger.RefundBet(ctx, roomID, userID, amount, description+" zurück (ungültig)")
		if refundErr != nil {
			log.Printf("[SETTLEMENT-ALERT] refund failed for user %s room %s amount %d: %v",
				userID, roomID, amount, refundErr)
			if o.mon != nil {
				o.mon.IncSettlementError()
			}
			return newBalance, err
		}
		return refunded, err
	}
	return newBalance, nil
}

// Refund returns a stake outside the saga, for callers that batch several
// debits and need to unwind them when a later one fails.
func (o *Orchestrator) Refund(ctx context.Context, roomID, userID string, amount int64, description string) (int64, error) {
	return o.ledger.RefundBet(ctx, roomID, userID, amount, description)
}

// Result carries what a settlement paid out and the resulting balances.
type Result struct {
	Pot      int64
	Payouts  []ledger.Payout
	Balances map[string]int64
}

// SettleKniffel distributes the room pot over the final rankings using the
// room's payout ratio table, then credits winners and releases escrow.
func (o *Orchestrator) SettleKniffel(ctx context.Context, roomID, roomName string, state kniffel.GameState, ratios []payout.PayoutRatio) (*Result, error) {
	pot, err := o.ledger.RoomPot(ctx, roomID)
	if err != nil {
		return nil, err
	}

	amounts := payout.CalculatePayouts(pot, state.Rankings(), ratios)
	payouts := make([]ledger.Payout, 0, len(amounts))
	for userID, amount := range amounts {
		payouts = append(payouts, ledger.Payout{
			UserID:      userID,
			Amount:      amount,
			Description: fmt.Sprintf("%s gewonnen (Kniffel)", roomName),
		})
	}
	return o.settle(ctx, roomID, pot, payouts)
}

// SettleBlackjack credits each player's per-hand result against the dealer.
func (o *Orchestrator) SettleBlackjack(ctx context.Context, roomID, roomName string, state blackjack.GameState) (*Result, error) {
	pot, err := o.ledger.RoomPot(ctx, roomID)
	if err != nil {
		return nil, err
	}

	settlements := blackjack.BuildSettlement(state)
	payouts := make([]ledger.Payout, 0, len(settlements))
	for _, s := range settlements {
		payouts = append(payouts, ledger.Payout{
			UserID:      s.UserID,
			Amount:      s.WinAmount,
			Description: fmt.Sprintf("%s gewonnen (Blackjack)", roomName),
		})
	}
	return o.settle(ctx, roomID, pot, payouts)
}

// SettleRoulette credits every bet covering the winning number, stake
// included; uncovered stakes stay in the released escrow.
func (o *Orchestrator) SettleRoulette(ctx context.Context, roomID string, state roulette.GameState, winningNumber int) (*Result, error) {
	pot, err := o.ledger.RoomPot(ctx, roomID)
	if err != nil {
		return nil, err
	}

	payouts := make([]ledger.Payout, 0, len(state.Players))
	for _, player := range state.Players {
		amount := roulette.CalculatePlayerPayout(player, winningNumber)
		payouts = append(payouts, ledger.Payout{
			UserID:      player.UserID,
			Amount:      amount,
			Description: fmt.Sprintf("Roulette Gewinn (%d)", winningNumber),
		})
	}
	return o.settle(ctx, roomID, pot, payouts)
}

func (o *Orchestrator) settle(ctx context.Context, roomID string, pot int64, payouts []ledger.Payout) (*Result, error) {
	balances, err := o.ledger.SettleRound(ctx, roomID, payouts)
	if err != nil {
		log.Printf("[SETTLEMENT-ERROR] room %s: %v", roomID, err)
		if o.mon != nil {
			o.mon.IncSettlementError()
		}
		return nil, err
	}
	if o.mon != nil {
		o.mon.IncSettlements()
	}
	return &Result{Pot: pot, Payouts: payouts, Balances: balances}, nil
}
