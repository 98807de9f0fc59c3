package blackjack

// Settlement is one player's gross credit for a round. Stakes were already
// debited at bet time, so a losing hand simply contributes nothing here.
type Settlement struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	WinAmount   int64  `json:"winAmount"`
}

// BuildSettlement computes every player's payout against the dealer:
//   - surrendered hand: half the bet back (floored)
//   - busted hand: nothing
//   - natural blackjack (dealer without 21 and not busted): bet + 3:2 winnings
//   - beating the dealer or dealer bust: twice the bet
//   - push: the bet back
//   - insurance: three times the insurance stake when the dealer holds 21
func BuildSettlement(state GameState) []Settlement {
	dealerValue := BestValue(state.Dealer.Cards)
	dealerBusted := dealerValue > 21

	settlements := make([]Settlement, 0, len(state.Players))
	for _, player := range state.Players {
		var totalWin int64

		for _, hand := range player.Hands {
			if hand.Bet == 0 {
				continue
			}
			switch hand.Status {
			case HandSurrendered:
				totalWin += hand.Bet / 2
				continue
			case HandBusted:
				continue
			}

			playerValue := BestValue(hand.Cards)

			if hand.Status == HandBlackjack && !dealerBusted && dealerValue != 21 {
				totalWin += hand.Bet + hand.Bet*3/2
			} else if dealerBusted || playerValue > dealerValue {
				totalWin += hand.Bet * 2
			} else if playerValue == dealerValue {
				totalWin += hand.Bet
			}
		}

		if player.Insurance > 0 && dealerValue == 21 {
			totalWin += player.Insurance * 3
		}

		settlements = append(settlements, Settlement{
			UserID:      player.UserID,
			DisplayName: player.DisplayName,
			WinAmount:   totalWin,
		})
	}
	return settlements
}
