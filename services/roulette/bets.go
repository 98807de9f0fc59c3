// Package roulette implements European-wheel bet validation, the betting/
// settlement state machine and per-player payout math.
package roulette

import (
	"sort"
)

type BetType string

const (
	BetStraight BetType = "straight"
	BetSplit    BetType = "split"
	BetStreet   BetType = "street"
	BetCorner   BetType = "corner"
	BetLine     BetType = "line"
	BetDozen    BetType = "dozen"
	BetColumn   BetType = "column"
	BetRed      BetType = "red"
	BetBlack    BetType = "black"
	BetOdd      BetType = "odd"
	BetEven     BetType = "even"
	BetLow      BetType = "low"
	BetHigh     BetType = "high"
)

// Payout multipliers by bet type (winnings per chip, the stake itself is
// returned on top).
var multipliers = map[BetType]int64{
	BetStraight: 35,
	BetSplit:    17,
	BetStreet:   11,
	BetCorner:   8,
	BetLine:     5,
	BetDozen:    2,
	BetColumn:   2,
	BetRed:      1,
	BetBlack:    1,
	BetOdd:      1,
	BetEven:     1,
	BetLow:      1,
	BetHigh:     1,
}

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// PayoutMultiplier returns the winnings multiplier for a bet type, or 0 for
// unknown types.
func PayoutMultiplier(betType BetType) int64 {
	return multipliers[betType]
}

func IsRed(n int) bool {
	return redNumbers[n]
}

func IsBlack(n int) bool {
	return n >= 1 && n <= 36 && !redNumbers[n]
}

// ValidateBet checks that the number set matches the claimed bet type
// exactly. Layout adjacency follows the standard 12x3 table grid (columns
// 1-2-3 left to right, zero above the first row).
func ValidateBet(betType BetType, numbers []int) bool {
	for _, n := range numbers {
		if n < 0 || n > 36 {
			return false
		}
	}

	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return false
		}
	}

	switch betType {
	case BetStraight:
		return len(sorted) == 1
	case BetSplit:
		return len(sorted) == 2 && isSplitPair(sorted[0], sorted[1])
	case BetStreet:
		return len(sorted) == 3 && sorted[0]%3 == 1 && sorted[1] == sorted[0]+1 && sorted[2] == sorted[0]+2
	case BetCorner:
		if len(sorted) != 4 {
			return false
		}
		n := sorted[0]
		// Top-left of the square: not in the rightmost column, not the
		// last row.
		return n >= 1 && n <= 32 && n%3 != 0 &&
			sorted[1] == n+1 && sorted[2] == n+3 && sorted[3] == n+4
	case BetLine:
		if len(sorted) != 6 {
			return false
		}
		n := sorted[0]
		if n%3 != 1 || n > 31 {
			return false
		}
		for i := 1; i < 6; i++ {
			if sorted[i] != n+i {
				return false
			}
		}
		return true
	case BetDozen:
		return matchesRange(sorted, 1, 12) || matchesRange(sorted, 13, 24) || matchesRange(sorted, 25, 36)
	case BetColumn:
		return matchesColumn(sorted, 1) || matchesColumn(sorted, 2) || matchesColumn(sorted, 3)
	case BetRed:
		return matchesSet(sorted, IsRed)
	case BetBlack:
		return matchesSet(sorted, IsBlack)
	case BetOdd:
		return matchesSet(sorted, func(n int) bool { return n >= 1 && n%2 == 1 })
	case BetEven:
		return matchesSet(sorted, func(n int) bool { return n >= 1 && n%2 == 0 })
	case BetLow:
		return matchesRange(sorted, 1, 18)
	case BetHigh:
		return matchesRange(sorted, 19, 36)
	}
	return false
}

// isSplitPair: two grid-adjacent numbers (same row next column, or same
// column next row), plus the zero splits against the first street.
func isSplitPair(a, b int) bool {
	if a == 0 {
		return b >= 1 && b <= 3
	}
	if b-a == 3 {
		return b <= 36
	}
	if b-a == 1 {
		// Same row means the lower number is not in the third column.
		return a%3 != 0
	}
	return false
}

func matchesRange(sorted []int, lo, hi int) bool {
	if len(sorted) != hi-lo+1 {
		return false
	}
	for i, n := range sorted {
		if n != lo+i {
			return false
		}
	}
	return true
}

func matchesColumn(sorted []int, column int) bool {
	if len(sorted) != 12 {
		return false
	}
	for i, n := range sorted {
		if n != column+3*i {
			return false
		}
	}
	return true
}

func matchesSet(sorted []int, member func(int) bool) bool {
	if len(sorted) != 18 {
		return false
	}
	for _, n := range sorted {
		if !member(n) {
			return false
		}
	}
	return true
}
