package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatedPlayers(ids ...string) []Player {
	players := make([]Player, len(ids))
	for i, id := range ids {
		players[i] = Player{UserID: id, DisplayName: id}
	}
	return players
}

func defaultSettings() Settings {
	return Settings{DeckCount: 6, TurnTimer: 60, StandOnSoft17: true}
}

// riggedGame starts a two-player game with a deck dealing, in order:
// alice, bob, dealer, alice, bob, dealer, then the extras.
func riggedGame(t *testing.T, deck []Card) GameState {
	t.Helper()
	state := NewGameState(seatedPlayers("alice", "bob"), defaultSettings(), deck)

	state, err := ApplyAction(state, Action{Type: ActionPlaceBet, Amount: 100}, "alice")
	require.NoError(t, err)
	assert.Equal(t, PhaseBetting, state.Phase)

	state, err = ApplyAction(state, Action{Type: ActionPlaceBet, Amount: 100}, "bob")
	require.NoError(t, err)
	return state
}

func TestPlaceBetValidation(t *testing.T) {
	state := NewGameState(seatedPlayers("alice", "bob"), defaultSettings(), NewShoe(1))

	_, err := ApplyAction(state, Action{Type: ActionPlaceBet, Amount: 0}, "alice")
	assert.ErrorIs(t, err, ErrInvalidBet)

	_, err = ApplyAction(state, Action{Type: ActionPlaceBet, Amount: 100}, "mallory")
	assert.ErrorIs(t, err, ErrPlayerUnknown)

	state, err = ApplyAction(state, Action{Type: ActionPlaceBet, Amount: 100}, "alice")
	require.NoError(t, err)
	_, err = ApplyAction(state, Action{Type: ActionPlaceBet, Amount: 50}, "alice")
	assert.ErrorIs(t, err, ErrBetAlreadyPlaced)
}

func TestDealingStartsWhenAllBetsIn(t *testing.T) {
	deck := cardsOf("Ah", "10d", "Kc", "Kh", "9d", "7c", "5h", "5d")
	state := riggedGame(t, deck)

	assert.Equal(t, PhasePlayerTurn, state.Phase)
	assert.Equal(t, cardsOf("Ah", "Kh"), state.Players[0].Hands[0].Cards)
	assert.Equal(t, cardsOf("10d", "9d"), state.Players[1].Hands[0].Cards)
	assert.Equal(t, cardsOf("Kc", "7c"), state.Dealer.Cards)
	assert.True(t, state.Dealer.Hidden)

	// Alice's natural skips her turn; bob acts first.
	assert.Equal(t, HandBlackjack, state.Players[0].Hands[0].Status)
	assert.Equal(t, 1, state.CurrentPlayerIndex)
}

func TestHitUntilBust(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)
	require.Equal(t, 0, state.CurrentPlayerIndex)

	_, err := ApplyAction(state, Action{Type: ActionHit}, "bob")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	// Alice has 16, draws a king and busts; turn passes to bob.
	state, err = ApplyAction(state, Action{Type: ActionHit}, "alice")
	require.NoError(t, err)
	assert.Equal(t, HandBusted, state.Players[0].Hands[0].Status)
	assert.Equal(t, 1, state.CurrentPlayerIndex)

	state, err = ApplyAction(state, Action{Type: ActionStand}, "bob")
	require.NoError(t, err)
	assert.Equal(t, PhaseDealerTurn, state.Phase)
}

func TestAllBustedSkipsDealerTurn(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)

	state, err := ApplyAction(state, Action{Type: ActionHit}, "alice")
	require.NoError(t, err)
	state, err = ApplyAction(state, Action{Type: ActionHit}, "bob")
	require.NoError(t, err)

	assert.Equal(t, HandBusted, state.Players[1].Hands[0].Status)
	assert.Equal(t, PhaseSettlement, state.Phase)
	assert.False(t, state.Dealer.Hidden)
}

func TestDoubleDrawsOneCardAndStands(t *testing.T) {
	deck := cardsOf("6h", "2d", "Kc", "5d", "3d", "7c", "10h", "5h")
	state := riggedGame(t, deck)

	state, err := ApplyAction(state, Action{Type: ActionDouble}, "alice")
	require.NoError(t, err)

	hand := state.Players[0].Hands[0]
	assert.Equal(t, int64(200), hand.Bet)
	assert.True(t, hand.IsDoubled)
	assert.Len(t, hand.Cards, 3)
	assert.Equal(t, HandStood, hand.Status)
	assert.Equal(t, 1, state.CurrentPlayerIndex)

	// A third card on the next hand forbids doubling.
	state, err = ApplyAction(state, Action{Type: ActionHit}, "bob")
	require.NoError(t, err)
	_, err = ApplyAction(state, Action{Type: ActionDouble}, "bob")
	assert.ErrorIs(t, err, ErrHandNotUntouched)
}

func TestSplitPairIntoTwoHands(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "2h", "3h", "Kh", "Qh")
	state := riggedGame(t, deck)

	// Swap cards so alice holds the 8-8 pair.
	require.Equal(t, "8", state.Players[0].Hands[0].Cards[0].Rank)
	require.Equal(t, "8", state.Players[0].Hands[0].Cards[1].Rank)

	state, err := ApplyAction(state, Action{Type: ActionSplit}, "alice")
	require.NoError(t, err)

	require.Len(t, state.Players[0].Hands, 2)
	assert.Equal(t, cardsOf("8h", "2h"), state.Players[0].Hands[0].Cards)
	assert.Equal(t, cardsOf("8d", "3h"), state.Players[0].Hands[1].Cards)
	assert.Equal(t, int64(100), state.Players[0].Hands[1].Bet)
	assert.True(t, state.Players[0].Hands[0].IsSplit)

	// Still alice's turn, first split hand.
	assert.Equal(t, 0, state.CurrentPlayerIndex)
	assert.Equal(t, 0, state.Players[0].CurrentHandIndex)

	// Standing the first hand moves to the second split hand.
	state, err = ApplyAction(state, Action{Type: ActionStand}, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentPlayerIndex)
	assert.Equal(t, 1, state.Players[0].CurrentHandIndex)
}

func TestSplitRequiresEqualRank(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "9h", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)

	_, err := ApplyAction(state, Action{Type: ActionSplit}, "alice")
	assert.ErrorIs(t, err, ErrNotAPair)
}

func TestInsuranceRules(t *testing.T) {
	// Dealer shows an ace.
	deck := cardsOf("8h", "10d", "Ac", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)

	_, err := ApplyAction(state, Action{Type: ActionInsurance, Amount: 60}, "alice")
	assert.ErrorIs(t, err, ErrInsuranceAmount)

	state, err = ApplyAction(state, Action{Type: ActionInsurance, Amount: 50}, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(50), state.Players[0].Insurance)
	// Insurance does not consume the turn.
	assert.Equal(t, 0, state.CurrentPlayerIndex)
}

func TestInsuranceRejectedWithoutDealerAce(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)

	_, err := ApplyAction(state, Action{Type: ActionInsurance, Amount: 50}, "alice")
	assert.ErrorIs(t, err, ErrNoInsurance)
}

func TestSurrenderReturnsHalfViaSettlement(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)

	state, err := ApplyAction(state, Action{Type: ActionSurrender}, "alice")
	require.NoError(t, err)
	assert.Equal(t, HandSurrendered, state.Players[0].Hands[0].Status)
	assert.Equal(t, 1, state.CurrentPlayerIndex)
}

func TestDealerStepRevealsThenDrawsToSeventeen(t *testing.T) {
	// Dealer: K + 2 visible after reveal, draws 5 to reach 17.
	deck := cardsOf("10h", "10d", "Kc", "9h", "9d", "2c", "5s", "Kh")
	state := riggedGame(t, deck)

	var err error
	state, err = ApplyAction(state, Action{Type: ActionStand}, "alice")
	require.NoError(t, err)
	state, err = ApplyAction(state, Action{Type: ActionStand}, "bob")
	require.NoError(t, err)
	require.Equal(t, PhaseDealerTurn, state.Phase)

	// Step 1: reveal only.
	state, err = DealerStep(state)
	require.NoError(t, err)
	assert.False(t, state.Dealer.Hidden)
	assert.Len(t, state.Dealer.Cards, 2)

	// Step 2: 12, must draw.
	state, err = DealerStep(state)
	require.NoError(t, err)
	assert.Len(t, state.Dealer.Cards, 3)
	assert.Equal(t, 17, BestValue(state.Dealer.Cards))

	// Step 3: 17, stands and settles.
	state, err = DealerStep(state)
	require.NoError(t, err)
	assert.Equal(t, PhaseSettlement, state.Phase)
}

func TestDealerHitsSoftSeventeenWhenConfigured(t *testing.T) {
	soft17 := cardsOf("Ah", "6d")
	assert.False(t, dealerMustDraw(soft17, true))
	assert.True(t, dealerMustDraw(soft17, false))

	hard17 := cardsOf("Kh", "7d")
	assert.False(t, dealerMustDraw(hard17, false))
}

func TestPlayerDisconnectStandsOpenHands(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)
	require.Equal(t, 0, state.CurrentPlayerIndex)

	state, err := ApplyAction(state, Action{Type: ActionPlayerDisconnect, UserID: "alice"}, "alice")
	require.NoError(t, err)

	assert.False(t, state.Players[0].IsConnected)
	assert.Equal(t, HandStood, state.Players[0].Hands[0].Status)
	assert.Equal(t, 1, state.CurrentPlayerIndex)
}

func TestNextRoundResets(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)

	state.Phase = PhaseRoundEnd
	state, err := NextRound(state)
	require.NoError(t, err)

	assert.Equal(t, PhaseBetting, state.Phase)
	assert.Equal(t, 2, state.RoundNumber)
	assert.Empty(t, state.Dealer.Cards)
	assert.True(t, state.Dealer.Hidden)
	for _, p := range state.Players {
		assert.Zero(t, p.Bet)
		assert.Zero(t, p.Insurance)
		require.Len(t, p.Hands, 1)
		assert.Empty(t, p.Hands[0].Cards)
		assert.Equal(t, HandPlaying, p.Hands[0].Status)
	}

	_, err = NextRound(state)
	assert.ErrorIs(t, err, ErrNotRoundEnd)
}

func TestApplyActionDoesNotMutateInput(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)
	before := len(state.Deck)

	next, err := ApplyAction(state, Action{Type: ActionHit}, "alice")
	require.NoError(t, err)

	assert.Len(t, state.Players[0].Hands[0].Cards, 2)
	assert.Len(t, state.Deck, before)
	assert.Len(t, next.Players[0].Hands[0].Cards, 3)
}

func TestTimeOutBettingDealsAroundIdlePlayer(t *testing.T) {
	deck := cardsOf("8h", "Kc", "9d", "7c", "5h", "5d")
	state := NewGameState(seatedPlayers("alice", "bob"), defaultSettings(), deck)

	state, err := ApplyAction(state, Action{Type: ActionPlaceBet, Amount: 100}, "alice")
	require.NoError(t, err)
	require.Equal(t, PhaseBetting, state.Phase)

	// Bob never bets; the window closing must not leave the table stuck.
	state, err = TimeOutBetting(state)
	require.NoError(t, err)

	assert.Equal(t, PhasePlayerTurn, state.Phase)
	assert.False(t, state.Players[1].IsActive)
	assert.Empty(t, state.Players[1].Hands[0].Cards)
	assert.Equal(t, cardsOf("8h", "9d"), state.Players[0].Hands[0].Cards)
	assert.Equal(t, cardsOf("Kc", "7c"), state.Dealer.Cards)
	assert.Equal(t, 0, state.CurrentPlayerIndex)
}

func TestTimeOutBettingWithoutBetsStaysOpen(t *testing.T) {
	state := NewGameState(seatedPlayers("alice", "bob"), defaultSettings(), NewShoe(1))

	next, err := TimeOutBetting(state)
	require.NoError(t, err)

	assert.Equal(t, PhaseBetting, next.Phase)
	for _, p := range next.Players {
		assert.False(t, p.IsActive)
	}

	// A late bet reactivates the player and, with everyone else sitting
	// out, deals the round.
	next, err = ApplyAction(next, Action{Type: ActionPlaceBet, Amount: 50}, "alice")
	require.NoError(t, err)
	assert.True(t, next.Players[0].IsActive)
	assert.Equal(t, PhasePlayerTurn, next.Phase)
}

func TestTimeOutBettingRequiresBettingPhase(t *testing.T) {
	deck := cardsOf("8h", "10d", "Kc", "8d", "9d", "7c", "Kh", "Qh")
	state := riggedGame(t, deck)
	require.Equal(t, PhasePlayerTurn, state.Phase)

	_, err := TimeOutBetting(state)
	assert.ErrorIs(t, err, ErrNotBettingPhase)
}
