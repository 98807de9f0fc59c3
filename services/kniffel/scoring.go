package kniffel

// The 13 standard categories. Upper section scores face-value sums and
// feeds the bonus; lower section scores fixed or dice-sum combinations.
const (
	CategoryOnes          = "ones"
	CategoryTwos          = "twos"
	CategoryThrees        = "threes"
	CategoryFours         = "fours"
	CategoryFives         = "fives"
	CategorySixes         = "sixes"
	CategoryThreeOfAKind  = "threeOfAKind"
	CategoryFourOfAKind   = "fourOfAKind"
	CategoryFullHouse     = "fullHouse"
	CategorySmallStraight = "smallStraight"
	CategoryLargeStraight = "largeStraight"
	CategoryKniffel       = "kniffel"
	CategoryChance        = "chance"

	// Special categories the randomizer can mix in.
	CategoryTwoPairs = "twoPairs"
	CategoryAllEven  = "allEven"
	CategoryAllOdd   = "allOdd"
)

const (
	FullHouseScore     = 25
	SmallStraightScore = 30
	LargeStraightScore = 40
	KniffelScore       = 50
	UpperBonusScore    = 35
)

var StandardCategories = []string{
	CategoryOnes, CategoryTwos, CategoryThrees, CategoryFours, CategoryFives, CategorySixes,
	CategoryThreeOfAKind, CategoryFourOfAKind, CategoryFullHouse,
	CategorySmallStraight, CategoryLargeStraight, CategoryKniffel, CategoryChance,
}

var upperCategoryFace = map[string]int{
	CategoryOnes:   1,
	CategoryTwos:   2,
	CategoryThrees: 3,
	CategoryFours:  4,
	CategoryFives:  5,
	CategorySixes:  6,
}

var specialCategories = map[string]bool{
	CategoryTwoPairs: true,
	CategoryAllEven:  true,
	CategoryAllOdd:   true,
}

func IsUpperCategory(category string) bool {
	_, ok := upperCategoryFace[category]
	return ok
}

func IsSpecialCategory(category string) bool {
	return specialCategories[category]
}

// ScoreCategory computes the score five dice earn in a category under the
// given ruleset. Unknown categories score 0.
func ScoreCategory(category string, dice [5]int, ruleset Ruleset) int {
	counts := faceCounts(dice)
	total := diceSum(dice)

	if face, ok := upperCategoryFace[category]; ok {
		return counts[face] * face
	}

	switch category {
	case CategoryThreeOfAKind:
		if maxCount(counts) >= 3 {
			return total
		}
	case CategoryFourOfAKind:
		if maxCount(counts) >= 4 {
			return total
		}
	case CategoryFullHouse:
		if isFullHouse(counts) {
			if ruleset.FullHouseUsesSum {
				return total
			}
			return FullHouseScore
		}
	case CategorySmallStraight:
		if hasSmallStraight(counts, ruleset.StrictStraights) {
			return SmallStraightScore
		}
	case CategoryLargeStraight:
		if hasLargeStraight(counts) {
			return LargeStraightScore
		}
	case CategoryKniffel:
		if maxCount(counts) == 5 {
			return KniffelScore
		}
	case CategoryChance:
		return total
	case CategoryTwoPairs:
		return scoreTwoPairs(counts)
	case CategoryAllEven:
		if allParity(dice, 0) {
			return total
		}
	case CategoryAllOdd:
		if allParity(dice, 1) {
			return total
		}
	}
	return 0
}

// UpperTotal sums the upper-section entries of a scoresheet.
func UpperTotal(scoresheet map[string]int) int {
	total := 0
	for category, score := range scoresheet {
		if IsUpperCategory(category) {
			total += score
		}
	}
	return total
}

// TotalScore is upper total + bonus (if the threshold is reached) + all
// remaining entries.
func TotalScore(scoresheet map[string]int, ruleset Ruleset) int {
	upper := UpperTotal(scoresheet)
	total := 0
	for _, score := range scoresheet {
		total += score
	}
	if upper >= ruleset.BonusThreshold {
		total += UpperBonusScore
	}
	return total
}

func faceCounts(dice [5]int) [7]int {
	var counts [7]int
	for _, d := range dice {
		if d >= 1 && d <= 6 {
			counts[d]++
		}
	}
	return counts
}

func diceSum(dice [5]int) int {
	total := 0
	for _, d := range dice {
		total += d
	}
	return total
}

func maxCount(counts [7]int) int {
	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	return best
}

func isFullHouse(counts [7]int) bool {
	hasThree, hasPair := false, false
	for _, c := range counts {
		if c == 3 {
			hasThree = true
		}
		if c == 2 {
			hasPair = true
		}
	}
	return hasThree && hasPair
}

func longestRun(counts [7]int) int {
	best, run := 0, 0
	for face := 1; face <= 6; face++ {
		if counts[face] > 0 {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

// hasSmallStraight: four consecutive faces. In strict mode a large straight
// does not double as a small one.
func hasSmallStraight(counts [7]int, strict bool) bool {
	run := longestRun(counts)
	if strict {
		return run == 4
	}
	return run >= 4
}

func hasLargeStraight(counts [7]int) bool {
	return longestRun(counts) == 5
}

// scoreTwoPairs sums the four dice forming two distinct pairs (a four of a
// kind counts as two pairs of the same face).
func scoreTwoPairs(counts [7]int) int {
	pairs := 0
	sum := 0
	for face := 6; face >= 1; face-- {
		use := counts[face] / 2
		if use > 2-pairs {
			use = 2 - pairs
		}
		pairs += use
		sum += use * 2 * face
	}
	if pairs == 2 {
		return sum
	}
	return 0
}

func allParity(dice [5]int, parity int) bool {
	for _, d := range dice {
		if d%2 != parity {
			return false
		}
	}
	return true
}

// BestCategory returns the highest-scoring open category for the given dice,
// used by speed-mode auto scoring. Ties resolve to the earlier category in
// the sheet order. Returns "" when every category is already scored.
func BestCategory(dice [5]int, scoresheet map[string]int, ruleset Ruleset) string {
	best := ""
	bestScore := -1
	for _, category := range ruleset.ActiveCategories() {
		if _, scored := scoresheet[category]; scored {
			continue
		}
		if s := ScoreCategory(category, dice, ruleset); s > bestScore {
			best = category
			bestScore = s
		}
	}
	return best
}
