package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hand(cards ...string) []Card {
	// "Ah" -> {A hearts}, "10d" -> {10 diamonds}
	suits := map[byte]string{'h': "hearts", 'd': "diamonds", 'c': "clubs", 's': "spades"}
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = Card{Rank: c[:len(c)-1], Suit: suits[c[len(c)-1]]}
	}
	return out
}

func TestEvaluateHandCategories(t *testing.T) {
	tests := []struct {
		name     string
		cards    []Card
		wantRank int
		wantName string
	}{
		{"royal flush", hand("Ah", "Kh", "Qh", "Jh", "10h"), RankRoyalFlush, "Royal Flush"},
		{"straight flush", hand("9d", "8d", "7d", "6d", "5d"), RankStraightFlush, "Straight Flush"},
		{"four of a kind", hand("7h", "7d", "7c", "7s", "Kh"), RankFourOfAKind, "Vierling"},
		{"full house", hand("Qh", "Qd", "Qc", "5h", "5s"), RankFullHouse, "Full House"},
		{"flush", hand("Ac", "Jc", "9c", "6c", "3c"), RankFlush, "Flush"},
		{"straight", hand("9h", "8d", "7c", "6s", "5h"), RankStraight, "Straße"},
		{"ace-low straight (wheel)", hand("Ah", "2d", "3c", "4s", "5h"), RankStraight, "Straße"},
		{"three of a kind", hand("8h", "8d", "8c", "Ks", "2h"), RankThreeOfAKind, "Drilling"},
		{"two pair", hand("Jh", "Jd", "4c", "4s", "9h"), RankTwoPair, "Zwei Paare"},
		{"one pair", hand("10h", "10d", "Kc", "7s", "3h"), RankOnePair, "Ein Paar"},
		{"high card", hand("Ah", "Kd", "9c", "5s", "2h"), RankHighCard, "Höchste Karte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateHand(tt.cards)
			assert.Equal(t, tt.wantRank, result.Rank)
			assert.Equal(t, tt.wantName, result.Name)
		})
	}
}

func TestCompareHands(t *testing.T) {
	royal := EvaluateHand(hand("Ah", "Kh", "Qh", "Jh", "10h"))
	straightFlush := EvaluateHand(hand("9d", "8d", "7d", "6d", "5d"))
	assert.Positive(t, CompareHands(royal, straightFlush))
	assert.Negative(t, CompareHands(straightFlush, royal))

	quads := EvaluateHand(hand("3h", "3d", "3c", "3s", "Kh"))
	boat := EvaluateHand(hand("Ah", "Ad", "Ac", "Kh", "Ks"))
	assert.Positive(t, CompareHands(quads, boat))

	boat2 := EvaluateHand(hand("6h", "6d", "6c", "4h", "4s"))
	flush := EvaluateHand(hand("Ac", "Kc", "Qc", "Jc", "9c"))
	assert.Positive(t, CompareHands(boat2, flush))
}

func TestCompareHandsKicker(t *testing.T) {
	aceKicker := EvaluateHand(hand("5h", "5d", "Ac", "7s", "3h"))
	kingKicker := EvaluateHand(hand("5c", "5s", "Kh", "7d", "3c"))
	assert.Positive(t, CompareHands(aceKicker, kingKicker))
	assert.Negative(t, CompareHands(kingKicker, aceKicker))
}

func TestCompareHandsSuitsNeverBreakTies(t *testing.T) {
	hearts := EvaluateHand(hand("Ah", "Kh", "Qh", "Jh", "10h"))
	diamonds := EvaluateHand(hand("Ad", "Kd", "Qd", "Jd", "10d"))
	assert.Zero(t, CompareHands(hearts, diamonds))
}

func TestFindBestHandFromSeven(t *testing.T) {
	cards := hand("Ah", "Kh", "Qh", "Jh", "10h", "3d", "2c")
	best, result := FindBestHand(cards)

	assert.Equal(t, RankRoyalFlush, result.Rank)
	assert.Equal(t, "Royal Flush", result.Name)
	assert.Len(t, best, 5)
}

func TestFindBestHandPrefersFullHouseOverFlush(t *testing.T) {
	// Four hearts on board plus QQ in the hole: the full house beats any
	// flush the board could make.
	cards := hand("Qh", "Qd", "Qc", "5h", "5s", "3h", "2h")
	_, result := FindBestHand(cards)

	assert.Equal(t, RankFullHouse, result.Rank)
	assert.Equal(t, "Full House", result.Name)
}

func TestFindBestHandWithFiveCards(t *testing.T) {
	cards := hand("7h", "7d", "7c", "Ks", "Qh")
	best, result := FindBestHand(cards)

	assert.Equal(t, RankThreeOfAKind, result.Rank)
	assert.Equal(t, "Drilling", result.Name)
	assert.Equal(t, cards, best)
}

func TestGetHandName(t *testing.T) {
	expected := map[int]string{
		1:  "Royal Flush",
		2:  "Straight Flush",
		3:  "Vierling",
		4:  "Full House",
		5:  "Flush",
		6:  "Straße",
		7:  "Drilling",
		8:  "Zwei Paare",
		9:  "Ein Paar",
		10: "Höchste Karte",
	}
	for rank, name := range expected {
		assert.Equal(t, name, GetHandName(rank))
	}
}

func TestRankingScoreOrdersByStrength(t *testing.T) {
	ordered := []HandResult{
		EvaluateHand(hand("Ah", "Kd", "9c", "5s", "2h")),  // high card
		EvaluateHand(hand("10h", "10d", "Kc", "7s", "3h")), // pair
		EvaluateHand(hand("Jh", "Jd", "4c", "4s", "9h")),  // two pair
		EvaluateHand(hand("8h", "8d", "8c", "Ks", "2h")),  // trips
		EvaluateHand(hand("9h", "8d", "7c", "6s", "5h")),  // straight
		EvaluateHand(hand("Ac", "Jc", "9c", "6c", "3c")),  // flush
		EvaluateHand(hand("Qh", "Qd", "Qc", "5h", "5s")),  // full house
		EvaluateHand(hand("7h", "7d", "7c", "7s", "Kh")),  // quads
		EvaluateHand(hand("9d", "8d", "7d", "6d", "5d")),  // straight flush
		EvaluateHand(hand("Ah", "Kh", "Qh", "Jh", "10h")), // royal flush
	}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, RankingScore(ordered[i]), RankingScore(ordered[i-1]),
			"%s should outscore %s", ordered[i].Name, ordered[i-1].Name)
	}
}

func TestRankingScoreKeepsAllFiveTiebreaks(t *testing.T) {
	// Two flushes that only differ on the fifth card must not collapse to
	// the same score, CompareHands and RankingScore have to agree.
	nine := EvaluateHand(hand("Ac", "Kc", "Qc", "Jc", "9c"))
	eight := EvaluateHand(hand("Ad", "Kd", "Qd", "Jd", "8d"))

	assert.Positive(t, CompareHands(nine, eight))
	assert.Greater(t, RankingScore(nine), RankingScore(eight))

	// Identical ranks across suits still score equal.
	nineHearts := EvaluateHand(hand("Ah", "Kh", "Qh", "Jh", "9h"))
	assert.Equal(t, RankingScore(nine), RankingScore(nineHearts))

	// High-card hands split on the last kicker too.
	aceHigh := EvaluateHand(hand("Ah", "Kd", "9c", "5s", "3h"))
	aceHighLow := EvaluateHand(hand("As", "Kc", "9d", "5h", "2s"))
	assert.Greater(t, RankingScore(aceHigh), RankingScore(aceHighLow))
}
