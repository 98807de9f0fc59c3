package roulette

import (
	"errors"
)

type Phase string

const (
	PhaseBetting    Phase = "betting"
	PhaseSettlement Phase = "settlement"
)

const (
	ActionAddPlayer = "ADD_PLAYER"
	ActionPlaceBet  = "PLACE_BET"
	ActionRemoveBet = "REMOVE_BET"
	ActionSpin      = "SPIN"
)

var (
	ErrNotBettingPhase    = errors.New("Not in betting phase")
	ErrNotSettlementPhase = errors.New("Not in settlement phase")
	ErrPlayerUnknown      = errors.New("Player is not part of this game")
	ErrPlayerAlreadyAdded = errors.New("Player already in game")
	ErrInvalidBet         = errors.New("Invalid bet")
	ErrInvalidBetIndex    = errors.New("Invalid bet index")
	ErrInvalidNumber      = errors.New("Winning number out of range")
	ErrUnknownAction      = errors.New("Unknown action type")
)

type Bet struct {
	Type    BetType `json:"type"`
	Numbers []int   `json:"numbers"`
	Amount  int64   `json:"amount"`
}

type Player struct {
	UserID         string `json:"userId"`
	DisplayName    string `json:"displayName"`
	Bets           []Bet  `json:"bets"`
	TotalBetAmount int64  `json:"totalBetAmount"`
}

type GameState struct {
	Phase         Phase    `json:"phase"`
	Players       []Player `json:"players"`
	WinningNumber *int     `json:"winningNumber"`
	RoundNumber   int      `json:"roundNumber"`
	SpinTimerSec  int      `json:"spinTimerSec"`
	IsManualSpin  bool     `json:"isManualSpin"`
}

type Action struct {
	Type          string `json:"type"`
	UserID        string `json:"userId,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	Bet           Bet    `json:"bet,omitempty"`
	BetIndex      int    `json:"betIndex,omitempty"`
	WinningNumber int    `json:"winningNumber,omitempty"`
}

// NewGameState starts a roulette table in the betting phase.
func NewGameState(players []Player, spinTimerSec int, manualSpin bool) GameState {
	seeded := make([]Player, len(players))
	for i, p := range players {
		seeded[i] = Player{UserID: p.UserID, DisplayName: p.DisplayName, Bets: []Bet{}}
	}
	return GameState{
		Phase:        PhaseBetting,
		Players:      seeded,
		RoundNumber:  1,
		SpinTimerSec: spinTimerSec,
		IsManualSpin: manualSpin,
	}
}

func (s GameState) clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		bets := make([]Bet, len(p.Bets))
		for j, b := range p.Bets {
			bets[j] = b
			bets[j].Numbers = append([]int(nil), b.Numbers...)
		}
		out.Players[i] = p
		out.Players[i].Bets = bets
	}
	if s.WinningNumber != nil {
		n := *s.WinningNumber
		out.WinningNumber = &n
	}
	return out
}

func (s GameState) playerIndex(userID string) int {
	for i, p := range s.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// ApplyAction validates and applies one action, returning the new state.
// The winning number for SPIN is injected by the caller, which must draw it
// from a cryptographically secure source.
func ApplyAction(state GameState, action Action, actorID string) (GameState, error) {
	switch action.Type {
	case ActionAddPlayer:
		return applyAddPlayer(state, action)
	case ActionPlaceBet:
		return applyPlaceBet(state, action, actorID)
	case ActionRemoveBet:
		return applyRemoveBet(state, action, actorID)
	case ActionSpin:
		return applySpin(state, action)
	default:
		return state, ErrUnknownAction
	}
}

func applyAddPlayer(state GameState, action Action) (GameState, error) {
	if state.Phase != PhaseBetting {
		return state, ErrNotBettingPhase
	}
	if state.playerIndex(action.UserID) >= 0 {
		return state, ErrPlayerAlreadyAdded
	}
	next := state.clone()
	next.Players = append(next.Players, Player{
		UserID:      action.UserID,
		DisplayName: action.DisplayName,
		Bets:        []Bet{},
	})
	return next, nil
}

func applyPlaceBet(state GameState, action Action, actorID string) (GameState, error) {
	if state.Phase != PhaseBetting {
		return state, ErrNotBettingPhase
	}
	idx := state.playerIndex(actorID)
	if idx < 0 {
		return state, ErrPlayerUnknown
	}
	bet := action.Bet
	if bet.Amount <= 0 || !ValidateBet(bet.Type, bet.Numbers) {
		return state, ErrInvalidBet
	}

	next := state.clone()
	next.Players[idx].Bets = append(next.Players[idx].Bets, Bet{
		Type:    bet.Type,
		Numbers: append([]int(nil), bet.Numbers...),
		Amount:  bet.Amount,
	})
	next.Players[idx].TotalBetAmount += bet.Amount
	return next, nil
}

func applyRemoveBet(state GameState, action Action, actorID string) (GameState, error) {
	if state.Phase != PhaseBetting {
		return state, ErrNotBettingPhase
	}
	idx := state.playerIndex(actorID)
	if idx < 0 {
		return state, ErrPlayerUnknown
	}
	if action.BetIndex < 0 || action.BetIndex >= len(state.Players[idx].Bets) {
		return state, ErrInvalidBetIndex
	}

	next := state.clone()
	player := &next.Players[idx]
	removed := player.Bets[action.BetIndex]
	player.Bets = append(player.Bets[:action.BetIndex], player.Bets[action.BetIndex+1:]...)
	player.TotalBetAmount -= removed.Amount
	return next, nil
}

func applySpin(state GameState, action Action) (GameState, error) {
	if state.Phase != PhaseBetting {
		return state, ErrNotBettingPhase
	}
	if action.WinningNumber < 0 || action.WinningNumber > 36 {
		return state, ErrInvalidNumber
	}
	next := state.clone()
	n := action.WinningNumber
	next.WinningNumber = &n
	next.Phase = PhaseSettlement
	return next, nil
}

// CalculatePlayerPayout sums, over every bet covering the winning number,
// the winnings plus the returned stake. Bets not covering the number
// forfeit their stake and contribute nothing.
func CalculatePlayerPayout(player Player, winningNumber int) int64 {
	var payout int64
	for _, bet := range player.Bets {
		if !betCovers(bet, winningNumber) {
			continue
		}
		payout += bet.Amount*PayoutMultiplier(bet.Type) + bet.Amount
	}
	return payout
}

func betCovers(bet Bet, winningNumber int) bool {
	for _, n := range bet.Numbers {
		if n == winningNumber {
			return true
		}
	}
	return false
}

// StartNextRound clears all bets and returns the table to betting.
func StartNextRound(state GameState) (GameState, error) {
	if state.Phase != PhaseSettlement {
		return state, ErrNotSettlementPhase
	}
	next := state.clone()
	next.Phase = PhaseBetting
	next.WinningNumber = nil
	next.RoundNumber++
	for i := range next.Players {
		next.Players[i].Bets = []Bet{}
		next.Players[i].TotalBetAmount = 0
	}
	return next, nil
}

// Dozen returns the canonical number set for one of the three dozens
// (1, 2 or 3), used by clients and tests to build valid bets.
func Dozen(which int) []int {
	start := (which-1)*12 + 1
	out := make([]int, 12)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// Column returns the canonical number set for a table column (1, 2 or 3).
func Column(which int) []int {
	out := make([]int, 12)
	for i := range out {
		out[i] = which + 3*i
	}
	return out
}

// EvenMoneySet enumerates the 18 numbers of an even-money bet type.
func EvenMoneySet(betType BetType) []int {
	var member func(int) bool
	switch betType {
	case BetRed:
		member = IsRed
	case BetBlack:
		member = IsBlack
	case BetOdd:
		member = func(n int) bool { return n%2 == 1 }
	case BetEven:
		member = func(n int) bool { return n%2 == 0 }
	case BetLow:
		member = func(n int) bool { return n <= 18 }
	case BetHigh:
		member = func(n int) bool { return n >= 19 }
	default:
		return nil
	}
	var out []int
	for n := 1; n <= 36; n++ {
		if member(n) {
			out = append(out, n)
		}
	}
	return out
}
