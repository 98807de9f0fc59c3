package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func settlementFor(t *testing.T, state GameState, userID string) int64 {
	t.Helper()
	for _, s := range BuildSettlement(state) {
		if s.UserID == userID {
			return s.WinAmount
		}
	}
	t.Fatalf("no settlement for %s", userID)
	return 0
}

func settledState(dealerCards []Card, players ...Player) GameState {
	return GameState{
		Phase:   PhaseSettlement,
		Dealer:  DealerHand{Cards: dealerCards},
		Players: players,
	}
}

func TestSettlementBlackjackPaysThreeToTwo(t *testing.T) {
	state := settledState(cardsOf("Kh", "7d"), Player{
		UserID: "a",
		Hands:  []PlayerHand{{Cards: cardsOf("Ah", "Kd"), Bet: 100, Status: HandBlackjack}},
	})
	assert.Equal(t, int64(250), settlementFor(t, state, "a"))
}

func TestSettlementBlackjackAgainstDealerTwentyOneIsRegularResult(t *testing.T) {
	// Dealer reaches 21 too: the natural no longer pays 3:2.
	state := settledState(cardsOf("Kh", "5d", "6c"), Player{
		UserID: "a",
		Hands:  []PlayerHand{{Cards: cardsOf("Ah", "Kd"), Bet: 100, Status: HandBlackjack}},
	})
	// 21 vs 21 is a push.
	assert.Equal(t, int64(100), settlementFor(t, state, "a"))
}

func TestSettlementWinPaysDouble(t *testing.T) {
	state := settledState(cardsOf("Kh", "7d"), Player{
		UserID: "a",
		Hands:  []PlayerHand{{Cards: cardsOf("10h", "9d"), Bet: 100, Status: HandStood}},
	})
	assert.Equal(t, int64(200), settlementFor(t, state, "a"))
}

func TestSettlementDealerBustPaysAllStandingHands(t *testing.T) {
	state := settledState(cardsOf("Kh", "6d", "9c"),
		Player{UserID: "a", Hands: []PlayerHand{{Cards: cardsOf("10h", "2d"), Bet: 100, Status: HandStood}}},
		Player{UserID: "b", Hands: []PlayerHand{{Cards: cardsOf("Kd", "Qd", "5c"), Bet: 100, Status: HandBusted}}},
	)
	assert.Equal(t, int64(200), settlementFor(t, state, "a"))
	// A busted hand loses even against a busted dealer.
	assert.Equal(t, int64(0), settlementFor(t, state, "b"))
}

func TestSettlementPushReturnsBet(t *testing.T) {
	state := settledState(cardsOf("Kh", "9d"), Player{
		UserID: "a",
		Hands:  []PlayerHand{{Cards: cardsOf("10h", "9s"), Bet: 100, Status: HandStood}},
	})
	assert.Equal(t, int64(100), settlementFor(t, state, "a"))
}

func TestSettlementSurrenderReturnsHalfFloored(t *testing.T) {
	state := settledState(cardsOf("Kh", "9d"), Player{
		UserID: "a",
		Hands:  []PlayerHand{{Cards: cardsOf("8h", "8d"), Bet: 101, Status: HandSurrendered}},
	})
	assert.Equal(t, int64(50), settlementFor(t, state, "a"))
}

func TestSettlementInsurancePaysOnDealerTwentyOne(t *testing.T) {
	state := settledState(cardsOf("Ah", "Kd"), Player{
		UserID:    "a",
		Insurance: 50,
		Hands:     []PlayerHand{{Cards: cardsOf("10h", "9d"), Bet: 100, Status: HandStood}},
	})
	// Hand loses against 21 but insurance pays 2:1 plus the stake back.
	assert.Equal(t, int64(150), settlementFor(t, state, "a"))

	noBlackjack := settledState(cardsOf("Kh", "7d"), Player{
		UserID:    "a",
		Insurance: 50,
		Hands:     []PlayerHand{{Cards: cardsOf("10h", "9d"), Bet: 100, Status: HandStood}},
	})
	assert.Equal(t, int64(200), settlementFor(t, noBlackjack, "a"))
}

func TestSettlementSplitHandsSettleIndependently(t *testing.T) {
	state := settledState(cardsOf("Kh", "7d"), Player{
		UserID: "a",
		Hands: []PlayerHand{
			{Cards: cardsOf("8h", "10d"), Bet: 100, Status: HandStood, IsSplit: true},  // 18 beats 17
			{Cards: cardsOf("8d", "5c", "Kc"), Bet: 100, Status: HandBusted, IsSplit: true}, // busted
		},
	})
	assert.Equal(t, int64(200), settlementFor(t, state, "a"))
}

func TestSettlementDoubledWinPaysDoubledBet(t *testing.T) {
	state := settledState(cardsOf("Kh", "7d"), Player{
		UserID: "a",
		Hands:  []PlayerHand{{Cards: cardsOf("6h", "5d", "9c"), Bet: 200, Status: HandStood, IsDoubled: true}},
	})
	assert.Equal(t, int64(400), settlementFor(t, state, "a"))
}
