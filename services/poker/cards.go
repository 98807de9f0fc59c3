package poker

// Define a Card struct with a Rank and Suit
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// Cards A, 2, 3, 4, 5, 6, 7, 8, 9, 10, J, Q, K
// Suits hearts, diamonds, clubs, spades

var RankMap = map[string]bool{
	"A": true, "2": true, "3": true, "4": true, "5": true,
	"6": true, "7": true, "8": true, "9": true, "10": true,
	"J": true, "Q": true, "K": true,
}

var SuitMap = map[string]bool{
	"hearts": true, "diamonds": true, "clubs": true, "spades": true,
}

// grade maps a rank to its high value, with the Ace high (14). The ace-low
// straight (wheel) is handled separately by the evaluator.
func grade(c Card) int {
	switch c.Rank {
	case "A":
		return 14
	case "K":
		return 13
	case "Q":
		return 12
	case "J":
		return 11
	case "10":
		return 10
	case "9":
		return 9
	case "8":
		return 8
	case "7":
		return 7
	case "6":
		return 6
	case "5":
		return 5
	case "4":
		return 4
	case "3":
		return 3
	case "2":
		return 2
	}
	return 0
}
