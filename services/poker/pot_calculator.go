package poker

import (
	"sort"
)

// PlayerContribution is how many Chips one player put into the hand across
// all betting rounds. Folded players still contribute but cannot win.
type PlayerContribution struct {
	UserID   string `json:"userId"`
	Amount   int64  `json:"amount"`
	IsFolded bool   `json:"isFolded"`
}

// Pot is a main or side pot with the players eligible to win it.
type Pot struct {
	Amount            int64    `json:"amount"`
	EligiblePlayerIDs []string `json:"eligiblePlayerIds"`
}

// CalculateSidePots layers the contributions into a main pot and side pots.
// Each distinct contribution amount forms one level; the pot for a level
// holds (level - previous level) Chips from every player who put in at least
// that much. Non-folded payers of a level are its eligible winners, so an
// all-in player is only eligible for the levels they fully covered.
func CalculateSidePots(contributions []PlayerContribution) []Pot {
	var active []PlayerContribution
	for _, c := range contributions {
		if c.Amount > 0 {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return nil
	}

	levelSet := make(map[int64]bool)
	for _, c := range active {
		levelSet[c.Amount] = true
	}
	levels := make([]int64, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	pots := make([]Pot, 0, len(levels))
	var prev int64
	for _, level := range levels {
		slice := level - prev
		var amount int64
		var eligible []string
		for _, c := range active {
			if c.Amount >= level {
				amount += slice
				if !c.IsFolded {
					eligible = append(eligible, c.UserID)
				}
			}
		}
		pots = append(pots, Pot{Amount: amount, EligiblePlayerIDs: eligible})
		prev = level
	}
	return pots
}

// DistributePots awards each pot to its best-ranked eligible players.
// handRankings maps user ID to a comparable score where higher is better
// (see RankingScore). A pot with a single eligible player goes to them
// without a showdown. Tied winners split a pot evenly, with the integer
// remainder going to the first winner in eligibility order.
func DistributePots(pots []Pot, handRankings map[string]int) map[string]int64 {
	winnings := make(map[string]int64)

	for _, pot := range pots {
		if len(pot.EligiblePlayerIDs) == 0 {
			continue
		}
		if len(pot.EligiblePlayerIDs) == 1 {
			winnings[pot.EligiblePlayerIDs[0]] += pot.Amount
			continue
		}

		best := 0
		haveBest := false
		for _, userID := range pot.EligiblePlayerIDs {
			score, ok := handRankings[userID]
			if ok && (!haveBest || score > best) {
				best = score
				haveBest = true
			}
		}
		if !haveBest {
			continue
		}

		var winners []string
		for _, userID := range pot.EligiblePlayerIDs {
			if score, ok := handRankings[userID]; ok && score == best {
				winners = append(winners, userID)
			}
		}

		n := int64(len(winners))
		base := pot.Amount / n
		remainder := pot.Amount % n
		for i, userID := range winners {
			share := base
			if i == 0 {
				share += remainder
			}
			winnings[userID] += share
		}
	}
	return winnings
}
