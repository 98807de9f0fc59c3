// Package blackjack implements the multi-player blackjack state machine,
// dealer stepping and per-hand settlement.
package blackjack

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
var suits = []string{"hearts", "diamonds", "clubs", "spades"}

// NewShoe returns deckCount full decks in canonical order.
func NewShoe(deckCount int) []Card {
	if deckCount < 1 {
		deckCount = 1
	}
	shoe := make([]Card, 0, deckCount*52)
	for d := 0; d < deckCount; d++ {
		for _, suit := range suits {
			for _, rank := range ranks {
				shoe = append(shoe, Card{Rank: rank, Suit: suit})
			}
		}
	}
	return shoe
}

// ShuffledShoe builds a shoe and Fisher-Yates shuffles it with crypto/rand.
// Shuffle randomness must be cryptographically strong, the weaker math/rand
// source is not acceptable for wagering outcomes.
func ShuffledShoe(deckCount int) ([]Card, error) {
	shoe := NewShoe(deckCount)
	for i := len(shoe) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("shuffle: %w", err)
		}
		j := int(n.Int64())
		shoe[i], shoe[j] = shoe[j], shoe[i]
	}
	return shoe, nil
}

func cardValue(rank string) int {
	switch rank {
	case "A":
		return 11
	case "K", "Q", "J", "10":
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

// HandValue returns the high and low totals of a hand. Hi counts one Ace as
// 11 when that does not bust; lo counts every Ace as 1.
func HandValue(cards []Card) (hi int, lo int) {
	aces := 0
	for _, c := range cards {
		v := cardValue(c.Rank)
		if c.Rank == "A" {
			aces++
			v = 1
		}
		lo += v
	}
	hi = lo
	if aces > 0 && lo+10 <= 21 {
		hi = lo + 10
	}
	return hi, lo
}

// BestValue is the highest total not exceeding 21, or the low total when
// even that busts.
func BestValue(cards []Card) int {
	hi, lo := HandValue(cards)
	if hi <= 21 {
		return hi
	}
	return lo
}

// IsBlackjack reports a natural: exactly two cards totalling 21.
func IsBlackjack(cards []Card) bool {
	return len(cards) == 2 && BestValue(cards) == 21
}

func IsBusted(cards []Card) bool {
	return BestValue(cards) > 21
}

// isSoft reports whether the best total counts an Ace as 11.
func isSoft(cards []Card) bool {
	hi, lo := HandValue(cards)
	return hi != lo && hi <= 21
}
