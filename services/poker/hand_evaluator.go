package poker

import (
	"sort"
)

// Hand categories, rank 1 is the strongest. The total order over the ten
// standard categories; within a category, ties break on card ranks only,
// never on suits.
const (
	RankRoyalFlush    = 1
	RankStraightFlush = 2
	RankFourOfAKind   = 3
	RankFullHouse     = 4
	RankFlush         = 5
	RankStraight      = 6
	RankThreeOfAKind  = 7
	RankTwoPair       = 8
	RankOnePair       = 9
	RankHighCard      = 10
)

var handNames = map[int]string{
	RankRoyalFlush:    "Royal Flush",
	RankStraightFlush: "Straight Flush",
	RankFourOfAKind:   "Vierling",
	RankFullHouse:     "Full House",
	RankFlush:         "Flush",
	RankStraight:      "Straße",
	RankThreeOfAKind:  "Drilling",
	RankTwoPair:       "Zwei Paare",
	RankOnePair:       "Ein Paar",
	RankHighCard:      "Höchste Karte",
}

// HandResult is the evaluation of exactly five cards. Tiebreak holds the
// category-specific card values in comparison order (e.g. for a full house:
// triple rank, then pair rank).
type HandResult struct {
	Rank     int    `json:"rank"`
	Name     string `json:"name"`
	Tiebreak []int  `json:"tiebreak"`
}

// GetHandName returns the display name for a category rank.
func GetHandName(rank int) string {
	return handNames[rank]
}

// EvaluateHand classifies exactly five cards.
func EvaluateHand(cards []Card) HandResult {
	values := make([]int, len(cards))
	for i, c := range cards {
		values[i] = grade(c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	flush := isFlush(cards)
	straightHigh, straight := straightHighCard(values)

	// Count multiplicities, then order groups by (count desc, value desc)
	// to build the tiebreak list.
	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}
	type group struct{ value, count int }
	groups := make([]group, 0, len(counts))
	for v, c := range counts {
		groups = append(groups, group{v, c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].value > groups[j].value
	})
	tiebreak := make([]int, 0, len(groups))
	for _, g := range groups {
		tiebreak = append(tiebreak, g.value)
	}

	switch {
	case flush && straight && straightHigh == 14:
		return HandResult{RankRoyalFlush, handNames[RankRoyalFlush], []int{straightHigh}}
	case flush && straight:
		return HandResult{RankStraightFlush, handNames[RankStraightFlush], []int{straightHigh}}
	case groups[0].count == 4:
		return HandResult{RankFourOfAKind, handNames[RankFourOfAKind], tiebreak}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandResult{RankFullHouse, handNames[RankFullHouse], tiebreak}
	case flush:
		return HandResult{RankFlush, handNames[RankFlush], tiebreak}
	case straight:
		return HandResult{RankStraight, handNames[RankStraight], []int{straightHigh}}
	case groups[0].count == 3:
		return HandResult{RankThreeOfAKind, handNames[RankThreeOfAKind], tiebreak}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandResult{RankTwoPair, handNames[RankTwoPair], tiebreak}
	case groups[0].count == 2:
		return HandResult{RankOnePair, handNames[RankOnePair], tiebreak}
	default:
		return HandResult{RankHighCard, handNames[RankHighCard], tiebreak}
	}
}

func isFlush(cards []Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// straightHighCard expects values sorted descending and returns the high
// card of the straight, if any. The wheel (A-2-3-4-5) counts with high
// card 5.
func straightHighCard(values []int) (int, bool) {
	for i := 0; i < len(values)-1; i++ {
		if values[i] != values[i+1]+1 {
			// Wheel: A,5,4,3,2
			if i == 0 && values[0] == 14 && values[1] == 5 && values[2] == 4 && values[3] == 3 && values[4] == 2 {
				return 5, true
			}
			return 0, false
		}
	}
	return values[0], true
}

// CompareHands returns >0 if a beats b, <0 if b beats a, and 0 on a tie.
// Suits are ignored entirely: identical ranks across suits compare equal.
func CompareHands(a, b HandResult) int {
	if a.Rank != b.Rank {
		// Lower category rank is stronger.
		return b.Rank - a.Rank
	}
	for i := 0; i < len(a.Tiebreak) && i < len(b.Tiebreak); i++ {
		if a.Tiebreak[i] != b.Tiebreak[i] {
			return a.Tiebreak[i] - b.Tiebreak[i]
		}
	}
	return 0
}

// FindBestHand selects the maximum-ranked 5-card subset from up to 7 cards
// (2 hole + up to 5 community). Returns the chosen cards and their result.
func FindBestHand(cards []Card) ([]Card, HandResult) {
	if len(cards) <= 5 {
		return cards, EvaluateHand(cards)
	}

	var bestCards []Card
	var best HandResult
	first := true

	combos := combinations(len(cards), 5)
	for _, idx := range combos {
		hand := make([]Card, 5)
		for i, j := range idx {
			hand[i] = cards[j]
		}
		result := EvaluateHand(hand)
		if first || CompareHands(result, best) > 0 {
			best = result
			bestCards = hand
			first = false
		}
	}
	return bestCards, best
}

// combinations enumerates all k-element index subsets of [0,n).
func combinations(n, k int) [][]int {
	var result [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]int, k)
		copy(combo, idx)
		result = append(result, combo)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return result
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// RankingScore flattens a hand result into a single comparable integer where
// higher is better, for use with DistributePots. Category dominates, then
// all five tiebreak values in order. Card values top out at 14, so each
// tiebreak position fits in four bits.
func RankingScore(r HandResult) int {
	score := (11 - r.Rank) << 20
	for i := 0; i < 5; i++ {
		v := 0
		if i < len(r.Tiebreak) {
			v = r.Tiebreak[i]
		}
		score |= v << uint(16-4*i)
	}
	return score
}
