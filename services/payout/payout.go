// Package payout computes prize distribution from a pot using configurable
// position/percentage ratios. Pure functions, integer arithmetic throughout.
package payout

import (
	"sort"
)

// FinalRanking groups the users that finished at one position. Several users
// in one entry means they tied for that position.
type FinalRanking struct {
	Position int      `json:"position"`
	UserIDs  []string `json:"userIds"`
}

// PayoutRatio assigns a percentage of the pot to a final position.
type PayoutRatio struct {
	Position   int `json:"position"`
	Percentage int `json:"percentage"`
}

// ValidatePayoutRatios reports whether the percentages sum to exactly 100
// and the positions form a sequential run starting at 1, in any input order.
func ValidatePayoutRatios(ratios []PayoutRatio) bool {
	if len(ratios) == 0 {
		return false
	}

	sum := 0
	for _, r := range ratios {
		sum += r.Percentage
	}
	if sum != 100 {
		return false
	}

	sorted := make([]PayoutRatio, len(ratios))
	copy(sorted, ratios)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	for i, r := range sorted {
		if r.Position != i+1 {
			return false
		}
	}
	return true
}

// CalculatePayouts distributes totalPot over the rankings.
//
// Rules:
//   - Each filled position gets its percentage of the pot, rescaled over the
//     percentages of positions that are actually filled, so unclaimed
//     positions (e.g. no 3rd place in a 2-player game) are redistributed
//     rather than dropped.
//   - Tied players split their position's prize evenly; the integer
//     remainder goes to the first user ID in the tie list.
//   - A single finisher across a single ranking entry receives the whole
//     pot, bypassing the ratio table.
//   - Leftover Chips from flooring are added to the first-place user.
func CalculatePayouts(totalPot int64, rankings []FinalRanking, ratios []PayoutRatio) map[string]int64 {
	payouts := make(map[string]int64)

	if len(rankings) == 0 {
		return payouts
	}

	// Special case: only one finisher gets the entire pot
	totalFinishers := 0
	for _, r := range rankings {
		totalFinishers += len(r.UserIDs)
	}
	if totalFinishers == 1 && len(rankings) == 1 {
		payouts[rankings[0].UserIDs[0]] = totalPot
		return payouts
	}

	ratioMap := make(map[int]int64, len(ratios))
	for _, r := range ratios {
		ratioMap[r.Position] = int64(r.Percentage)
	}

	// Restrict to positions that are actually filled and sum their
	// percentages.
	var filled []FinalRanking
	var activePercentageSum int64
	for _, r := range rankings {
		if pct, ok := ratioMap[r.Position]; ok {
			filled = append(filled, r)
			activePercentageSum += pct
		}
	}
	if activePercentageSum == 0 {
		return payouts
	}

	sort.SliceStable(filled, func(i, j int) bool { return filled[i].Position < filled[j].Position })

	var distributed int64
	for _, ranking := range filled {
		if len(ranking.UserIDs) == 0 {
			continue
		}

		// Rescale: this position's share of the total active percentage.
		positionPrize := totalPot * ratioMap[ranking.Position] / activePercentageSum

		n := int64(len(ranking.UserIDs))
		baseAmount := positionPrize / n
		remainder := positionPrize % n

		for i, userID := range ranking.UserIDs {
			amount := baseAmount
			if i == 0 {
				amount += remainder
			}
			payouts[userID] = amount
			distributed += amount
		}
	}

	// Any leftover from rounding goes to first place.
	leftover := totalPot - distributed
	if leftover > 0 && len(filled) > 0 {
		payouts[filled[0].UserIDs[0]] += leftover
	}

	return payouts
}
