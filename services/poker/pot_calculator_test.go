package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSidePotsEqualContributions(t *testing.T) {
	pots := CalculateSidePots([]PlayerContribution{
		{UserID: "a", Amount: 100},
		{UserID: "b", Amount: 100},
		{UserID: "c", Amount: 100},
	})

	assert.Len(t, pots, 1)
	assert.Equal(t, int64(300), pots[0].Amount)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, pots[0].EligiblePlayerIDs)
}

func TestCalculateSidePotsAllIn(t *testing.T) {
	// b is all-in for 50, so b is only eligible for the main pot.
	pots := CalculateSidePots([]PlayerContribution{
		{UserID: "a", Amount: 100},
		{UserID: "b", Amount: 50},
		{UserID: "c", Amount: 100},
	})

	assert.Len(t, pots, 2)
	assert.Equal(t, int64(150), pots[0].Amount)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, pots[0].EligiblePlayerIDs)
	assert.Equal(t, int64(100), pots[1].Amount)
	assert.ElementsMatch(t, []string{"a", "c"}, pots[1].EligiblePlayerIDs)
}

func TestCalculateSidePotsFoldedPlayerContributesButCannotWin(t *testing.T) {
	pots := CalculateSidePots([]PlayerContribution{
		{UserID: "a", Amount: 100},
		{UserID: "b", Amount: 100, IsFolded: true},
		{UserID: "c", Amount: 100},
	})

	assert.Len(t, pots, 1)
	assert.Equal(t, int64(300), pots[0].Amount)
	assert.ElementsMatch(t, []string{"a", "c"}, pots[0].EligiblePlayerIDs)
}

func TestCalculateSidePotsThreeLevels(t *testing.T) {
	pots := CalculateSidePots([]PlayerContribution{
		{UserID: "a", Amount: 25},
		{UserID: "b", Amount: 75},
		{UserID: "c", Amount: 200},
		{UserID: "d", Amount: 200},
	})

	assert.Len(t, pots, 3)
	// Level 25: 4 players * 25.
	assert.Equal(t, int64(100), pots[0].Amount)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, pots[0].EligiblePlayerIDs)
	// Level 75: 3 players * 50.
	assert.Equal(t, int64(150), pots[1].Amount)
	assert.ElementsMatch(t, []string{"b", "c", "d"}, pots[1].EligiblePlayerIDs)
	// Level 200: 2 players * 125.
	assert.Equal(t, int64(250), pots[2].Amount)
	assert.ElementsMatch(t, []string{"c", "d"}, pots[2].EligiblePlayerIDs)

	var total int64
	for _, p := range pots {
		total += p.Amount
	}
	assert.Equal(t, int64(500), total)
}

func TestCalculateSidePotsIgnoresZeroContributions(t *testing.T) {
	pots := CalculateSidePots([]PlayerContribution{
		{UserID: "a", Amount: 0},
		{UserID: "b", Amount: 0},
	})
	assert.Empty(t, pots)
}

func TestDistributePotsSingleWinner(t *testing.T) {
	pots := []Pot{{Amount: 300, EligiblePlayerIDs: []string{"a", "b", "c"}}}
	rankings := map[string]int{"a": 10, "b": 50, "c": 30}

	winnings := DistributePots(pots, rankings)
	assert.Equal(t, map[string]int64{"b": 300}, winnings)
}

func TestDistributePotsTieSplitsWithRemainderToFirst(t *testing.T) {
	pots := []Pot{{Amount: 301, EligiblePlayerIDs: []string{"a", "b", "c"}}}
	rankings := map[string]int{"a": 50, "b": 50, "c": 30}

	winnings := DistributePots(pots, rankings)
	assert.Equal(t, int64(151), winnings["a"])
	assert.Equal(t, int64(150), winnings["b"])
	assert.NotContains(t, winnings, "c")
}

func TestDistributePotsSideBetScenario(t *testing.T) {
	// b went all-in short but holds the best hand: b takes the main pot,
	// the side pot goes to the better of a and c.
	pots := CalculateSidePots([]PlayerContribution{
		{UserID: "a", Amount: 100},
		{UserID: "b", Amount: 50},
		{UserID: "c", Amount: 100},
	})
	rankings := map[string]int{"a": 20, "b": 90, "c": 40}

	winnings := DistributePots(pots, rankings)
	assert.Equal(t, int64(150), winnings["b"])
	assert.Equal(t, int64(100), winnings["c"])
	assert.NotContains(t, winnings, "a")
}

func TestDistributePotsSoleEligibleWinsWithoutShowdown(t *testing.T) {
	// Everyone else folded; the last player standing needs no ranking.
	pots := []Pot{{Amount: 120, EligiblePlayerIDs: []string{"a"}}}

	winnings := DistributePots(pots, map[string]int{})
	assert.Equal(t, map[string]int64{"a": 120}, winnings)
}

func TestDistributePotsWithRankingScoresFifthKickerDecides(t *testing.T) {
	// Flushes differing only on the fifth card: the nine-kicker flush takes
	// the whole pot, no accidental split.
	nine := EvaluateHand(hand("Ac", "Kc", "Qc", "Jc", "9c"))
	eight := EvaluateHand(hand("Ad", "Kd", "Qd", "Jd", "8d"))

	pots := []Pot{{Amount: 100, EligiblePlayerIDs: []string{"a", "b"}}}
	rankings := map[string]int{"a": RankingScore(nine), "b": RankingScore(eight)}

	winnings := DistributePots(pots, rankings)
	assert.Equal(t, map[string]int64{"a": 100}, winnings)
}

func TestDistributePotsSkipsPotWithNoEligiblePlayers(t *testing.T) {
	pots := []Pot{{Amount: 60, EligiblePlayerIDs: nil}}

	winnings := DistributePots(pots, map[string]int{"a": 1})
	assert.Empty(t, winnings)
}
