package payout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var standardRatios = []PayoutRatio{
	{Position: 1, Percentage: 60},
	{Position: 2, Percentage: 30},
	{Position: 3, Percentage: 10},
}

func totalPayout(payouts map[string]int64) int64 {
	var sum int64
	for _, v := range payouts {
		sum += v
	}
	return sum
}

func TestValidatePayoutRatios(t *testing.T) {
	tests := []struct {
		name   string
		ratios []PayoutRatio
		want   bool
	}{
		{"valid sum 100 sequential", standardRatios, true},
		{"sum below 100", []PayoutRatio{{1, 50}, {2, 30}, {3, 10}}, false},
		{"non-sequential positions", []PayoutRatio{{1, 60}, {3, 30}, {4, 10}}, false},
		{"positions not starting at 1", []PayoutRatio{{2, 60}, {3, 30}, {4, 10}}, false},
		{"unordered input still valid", []PayoutRatio{{3, 10}, {1, 60}, {2, 30}}, true},
		{"single position 100%", []PayoutRatio{{1, 100}}, true},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePayoutRatios(tt.ratios))
		})
	}
}

func TestCalculatePayoutsStandard(t *testing.T) {
	rankings := []FinalRanking{
		{Position: 1, UserIDs: []string{"a"}},
		{Position: 2, UserIDs: []string{"b"}},
		{Position: 3, UserIDs: []string{"c"}},
	}
	result := CalculatePayouts(1000, rankings, standardRatios)

	assert.Equal(t, int64(600), result["a"])
	assert.Equal(t, int64(300), result["b"])
	assert.Equal(t, int64(100), result["c"])
	assert.Equal(t, int64(1000), totalPayout(result))
}

func TestCalculatePayoutsRedistributesUnclaimedPosition(t *testing.T) {
	// 2-player game: position 3 is unclaimed, its share is rescaled over
	// the active 90%, not dropped.
	rankings := []FinalRanking{
		{Position: 1, UserIDs: []string{"a"}},
		{Position: 2, UserIDs: []string{"b"}},
	}
	result := CalculatePayouts(500, rankings, standardRatios)

	// Active: 60+30=90. P1: floor(500*60/90)=333, P2: floor(500*30/90)=166,
	// leftover 1 -> P1.
	assert.Equal(t, int64(334), result["a"])
	assert.Equal(t, int64(166), result["b"])
	assert.Equal(t, int64(500), totalPayout(result))
}

func TestCalculatePayoutsSingleFinisherTakesPot(t *testing.T) {
	rankings := []FinalRanking{{Position: 1, UserIDs: []string{"solo"}}}
	result := CalculatePayouts(777, rankings, standardRatios)

	assert.Equal(t, map[string]int64{"solo": 777}, result)
}

func TestCalculatePayoutsThreeWayTie(t *testing.T) {
	rankings := []FinalRanking{{Position: 1, UserIDs: []string{"a", "b", "c"}}}
	result := CalculatePayouts(1000, rankings, standardRatios)

	// Only position 1 active (60/60). Prize=1000, split 3: base=333,
	// remainder=1 -> first in tie list.
	assert.Equal(t, int64(334), result["a"])
	assert.Equal(t, int64(333), result["b"])
	assert.Equal(t, int64(333), result["c"])
	assert.Equal(t, int64(1000), totalPayout(result))
}

func TestCalculatePayoutsTieWithGapPosition(t *testing.T) {
	rankings := []FinalRanking{
		{Position: 1, UserIDs: []string{"a", "b"}},
		{Position: 3, UserIDs: []string{"c"}},
	}
	result := CalculatePayouts(1000, rankings, standardRatios)

	// Active: 60+10=70. P1: floor(1000*60/70)=857 -> a=429, b=428.
	// P3: floor(1000*10/70)=142 -> c=142. Leftover 1 -> a.
	assert.Equal(t, int64(430), result["a"])
	assert.Equal(t, int64(428), result["b"])
	assert.Equal(t, int64(142), result["c"])
	assert.Equal(t, int64(1000), totalPayout(result))
}

func TestCalculatePayoutsEmptyRankings(t *testing.T) {
	result := CalculatePayouts(1000, nil, standardRatios)
	assert.Empty(t, result)
}

func TestCalculatePayoutsNoActivePercentage(t *testing.T) {
	// Rankings fill only positions absent from the ratio table.
	rankings := []FinalRanking{
		{Position: 4, UserIDs: []string{"a"}},
		{Position: 5, UserIDs: []string{"b"}},
	}
	result := CalculatePayouts(1000, rankings, standardRatios)
	assert.Empty(t, result)
}

func TestCalculatePayoutsNeverExceedsPot(t *testing.T) {
	rankings := []FinalRanking{
		{Position: 1, UserIDs: []string{"a", "b", "c"}},
		{Position: 2, UserIDs: []string{"d", "e"}},
		{Position: 3, UserIDs: []string{"f"}},
	}
	for _, pot := range []int64{0, 1, 7, 99, 997, 123456} {
		result := CalculatePayouts(pot, rankings, standardRatios)
		assert.LessOrEqual(t, totalPayout(result), pot)
		for userID, amount := range result {
			assert.GreaterOrEqual(t, amount, int64(0), "negative payout for %s", userID)
		}
	}
}
