package roulette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(ids ...string) GameState {
	players := make([]Player, len(ids))
	for i, id := range ids {
		players[i] = Player{UserID: id, DisplayName: id}
	}
	return NewGameState(players, 30, false)
}

func TestPlaceBetAddsToPlayer(t *testing.T) {
	state := newTable("alice", "bob")

	state, err := ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetStraight, Numbers: []int{17}, Amount: 50},
	}, "alice")
	require.NoError(t, err)

	require.Len(t, state.Players[0].Bets, 1)
	assert.Equal(t, int64(50), state.Players[0].TotalBetAmount)

	state, err = ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetRed, Numbers: EvenMoneySet(BetRed), Amount: 100},
	}, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(150), state.Players[0].TotalBetAmount)
}

func TestPlaceBetValidation(t *testing.T) {
	state := newTable("alice")

	_, err := ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetStraight, Numbers: []int{17}, Amount: 0},
	}, "alice")
	assert.ErrorIs(t, err, ErrInvalidBet)

	_, err = ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetDozen, Numbers: []int{1, 2, 3}, Amount: 50},
	}, "alice")
	assert.ErrorIs(t, err, ErrInvalidBet)

	_, err = ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetStraight, Numbers: []int{17}, Amount: 50},
	}, "mallory")
	assert.ErrorIs(t, err, ErrPlayerUnknown)
}

func TestRemoveBet(t *testing.T) {
	state := newTable("alice")

	state, err := ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetStraight, Numbers: []int{17}, Amount: 50},
	}, "alice")
	require.NoError(t, err)
	state, err = ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetDozen, Numbers: Dozen(2), Amount: 100},
	}, "alice")
	require.NoError(t, err)

	state, err = ApplyAction(state, Action{Type: ActionRemoveBet, BetIndex: 0}, "alice")
	require.NoError(t, err)
	require.Len(t, state.Players[0].Bets, 1)
	assert.Equal(t, BetDozen, state.Players[0].Bets[0].Type)
	assert.Equal(t, int64(100), state.Players[0].TotalBetAmount)

	_, err = ApplyAction(state, Action{Type: ActionRemoveBet, BetIndex: 5}, "alice")
	assert.ErrorIs(t, err, ErrInvalidBetIndex)
}

func TestSpinMovesToSettlement(t *testing.T) {
	state := newTable("alice")

	state, err := ApplyAction(state, Action{Type: ActionSpin, WinningNumber: 17}, "")
	require.NoError(t, err)
	assert.Equal(t, PhaseSettlement, state.Phase)
	require.NotNil(t, state.WinningNumber)
	assert.Equal(t, 17, *state.WinningNumber)

	// No second spin on the same round.
	_, err = ApplyAction(state, Action{Type: ActionSpin, WinningNumber: 3}, "")
	assert.ErrorIs(t, err, ErrNotBettingPhase)
}

func TestSpinRejectsOutOfRangeNumber(t *testing.T) {
	state := newTable("alice")

	_, err := ApplyAction(state, Action{Type: ActionSpin, WinningNumber: 37}, "")
	assert.ErrorIs(t, err, ErrInvalidNumber)
	_, err = ApplyAction(state, Action{Type: ActionSpin, WinningNumber: -1}, "")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestCalculatePlayerPayout(t *testing.T) {
	player := Player{
		UserID: "alice",
		Bets: []Bet{
			{Type: BetStraight, Numbers: []int{17}, Amount: 50},
			{Type: BetBlack, Numbers: EvenMoneySet(BetBlack), Amount: 100},
			{Type: BetDozen, Numbers: Dozen(1), Amount: 40},
		},
		TotalBetAmount: 190,
	}

	// 17 is black and in the second dozen: straight pays 50*35+50,
	// black pays 100*1+100, the first-dozen bet forfeits.
	assert.Equal(t, int64(1800+200), CalculatePlayerPayout(player, 17))

	// 1 is red, first dozen: only the dozen bet pays 40*2+40.
	assert.Equal(t, int64(120), CalculatePlayerPayout(player, 1))

	// Zero covers nothing here.
	assert.Zero(t, CalculatePlayerPayout(player, 0))
}

func TestStartNextRoundClearsBets(t *testing.T) {
	state := newTable("alice")

	state, err := ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetStraight, Numbers: []int{17}, Amount: 50},
	}, "alice")
	require.NoError(t, err)

	_, err = StartNextRound(state)
	assert.ErrorIs(t, err, ErrNotSettlementPhase)

	state, err = ApplyAction(state, Action{Type: ActionSpin, WinningNumber: 4}, "")
	require.NoError(t, err)

	state, err = StartNextRound(state)
	require.NoError(t, err)
	assert.Equal(t, PhaseBetting, state.Phase)
	assert.Nil(t, state.WinningNumber)
	assert.Equal(t, 2, state.RoundNumber)
	assert.Empty(t, state.Players[0].Bets)
	assert.Zero(t, state.Players[0].TotalBetAmount)
}

func TestAddPlayerOnlyDuringBetting(t *testing.T) {
	state := newTable("alice")

	state, err := ApplyAction(state, Action{Type: ActionAddPlayer, UserID: "bob", DisplayName: "Bob"}, "bob")
	require.NoError(t, err)
	assert.Len(t, state.Players, 2)

	_, err = ApplyAction(state, Action{Type: ActionAddPlayer, UserID: "bob", DisplayName: "Bob"}, "bob")
	assert.ErrorIs(t, err, ErrPlayerAlreadyAdded)

	state, err = ApplyAction(state, Action{Type: ActionSpin, WinningNumber: 4}, "")
	require.NoError(t, err)
	_, err = ApplyAction(state, Action{Type: ActionAddPlayer, UserID: "carol"}, "carol")
	assert.ErrorIs(t, err, ErrNotBettingPhase)
}

func TestApplyActionDoesNotMutateInput(t *testing.T) {
	state := newTable("alice")

	next, err := ApplyAction(state, Action{
		Type: ActionPlaceBet,
		Bet:  Bet{Type: BetStraight, Numbers: []int{17}, Amount: 50},
	}, "alice")
	require.NoError(t, err)

	assert.Empty(t, state.Players[0].Bets)
	assert.Len(t, next.Players[0].Bets, 1)
}
