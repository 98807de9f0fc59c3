package blackjack

import (
	"errors"
)

type Phase string

const (
	PhaseBetting    Phase = "betting"
	PhaseDealing    Phase = "dealing"
	PhasePlayerTurn Phase = "player_turn"
	PhaseDealerTurn Phase = "dealer_turn"
	PhaseSettlement Phase = "settlement"
	PhaseRoundEnd   Phase = "round_end"
)

type HandStatus string

const (
	HandPlaying     HandStatus = "playing"
	HandStood       HandStatus = "stood"
	HandBusted      HandStatus = "busted"
	HandBlackjack   HandStatus = "blackjack"
	HandSurrendered HandStatus = "surrendered"
)

const (
	ActionPlaceBet         = "PLACE_BET"
	ActionHit              = "HIT"
	ActionStand            = "STAND"
	ActionDouble           = "DOUBLE"
	ActionSplit            = "SPLIT"
	ActionInsurance        = "INSURANCE"
	ActionSurrender        = "SURRENDER"
	ActionAddPlayer        = "ADD_PLAYER"
	ActionPlayerDisconnect = "PLAYER_DISCONNECT"
)

var (
	ErrNotBettingPhase    = errors.New("Not in betting phase")
	ErrNotPlayerTurn      = errors.New("Not in player turn phase")
	ErrNotYourTurn        = errors.New("Not your turn")
	ErrPlayerUnknown      = errors.New("Player is not part of this game")
	ErrBetAlreadyPlaced   = errors.New("Bet already placed")
	ErrInvalidBet         = errors.New("Bet must be positive")
	ErrHandNotPlaying     = errors.New("Hand is not playing")
	ErrHandNotUntouched   = errors.New("Action only allowed on a fresh two-card hand")
	ErrNotAPair           = errors.New("Split requires a pair of equal rank")
	ErrNoInsurance        = errors.New("Insurance only offered against a dealer Ace")
	ErrInsuranceTooLate   = errors.New("Insurance only before acting on the hand")
	ErrInsuranceAmount    = errors.New("Insurance may not exceed half the bet")
	ErrDeckExhausted      = errors.New("Deck is exhausted")
	ErrUnknownAction      = errors.New("Unknown action type")
	ErrNotRoundEnd        = errors.New("Not in round_end phase")
	ErrPlayerAlreadyAdded = errors.New("Player already in game")
)

type Action struct {
	Type        string `json:"type"`
	Amount      int64  `json:"amount,omitempty"`      // PLACE_BET, INSURANCE
	UserID      string `json:"userId,omitempty"`      // ADD_PLAYER, PLAYER_DISCONNECT
	DisplayName string `json:"displayName,omitempty"` // ADD_PLAYER
}

type PlayerHand struct {
	Cards     []Card     `json:"cards"`
	Bet       int64      `json:"bet"`
	Status    HandStatus `json:"status"`
	IsDoubled bool       `json:"isDoubled"`
	IsSplit   bool       `json:"isSplit"`
}

type DealerHand struct {
	Cards  []Card `json:"cards"`
	Hidden bool   `json:"hidden"` // hole card face down until the dealer turn
}

type Player struct {
	UserID           string       `json:"userId"`
	DisplayName      string       `json:"displayName"`
	Hands            []PlayerHand `json:"hands"`
	CurrentHandIndex int          `json:"currentHandIndex"`
	Bet              int64        `json:"bet"`
	Insurance        int64        `json:"insurance"`
	IsActive         bool         `json:"isActive"`
	IsConnected      bool         `json:"isConnected"`
}

type Settings struct {
	DeckCount     int  `json:"deckCount"`
	TurnTimer     int  `json:"turnTimer"`
	StandOnSoft17 bool `json:"standOnSoft17"`
}

type GameState struct {
	Phase              Phase      `json:"phase"`
	Players            []Player   `json:"players"`
	Dealer             DealerHand `json:"dealer"`
	Deck               []Card     `json:"deck"`
	RoundNumber        int        `json:"roundNumber"`
	Settings           Settings   `json:"settings"`
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
}

func freshHand() PlayerHand {
	return PlayerHand{Cards: []Card{}, Status: HandPlaying}
}

// NewGameState starts a game in the betting phase. The deck must already be
// shuffled (see ShuffledShoe); the transitions only ever pop from it.
func NewGameState(players []Player, settings Settings, deck []Card) GameState {
	seeded := make([]Player, len(players))
	for i, p := range players {
		seeded[i] = Player{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Hands:       []PlayerHand{freshHand()},
			IsActive:    true,
			IsConnected: true,
		}
	}
	return GameState{
		Phase:       PhaseBetting,
		Players:     seeded,
		Dealer:      DealerHand{Cards: []Card{}, Hidden: true},
		Deck:        deck,
		RoundNumber: 1,
		Settings:    settings,
	}
}

func (s GameState) clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		hands := make([]PlayerHand, len(p.Hands))
		for j, h := range p.Hands {
			hands[j] = h
			hands[j].Cards = append([]Card(nil), h.Cards...)
		}
		out.Players[i] = p
		out.Players[i].Hands = hands
	}
	out.Dealer.Cards = append([]Card(nil), s.Dealer.Cards...)
	out.Deck = append([]Card(nil), s.Deck...)
	return out
}

func (s GameState) playerIndex(userID string) int {
	for i, p := range s.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

func (s *GameState) draw() (Card, error) {
	if len(s.Deck) == 0 {
		return Card{}, ErrDeckExhausted
	}
	card := s.Deck[0]
	s.Deck = s.Deck[1:]
	return card, nil
}

// ApplyAction validates and applies one action, returning the new state.
// The input state is never mutated; randomness comes solely from the
// pre-shuffled deck carried in the state.
func ApplyAction(state GameState, action Action, actorID string) (GameState, error) {
	switch action.Type {
	case ActionAddPlayer:
		return applyAddPlayer(state, action)
	case ActionPlayerDisconnect:
		return applyDisconnect(state, action)
	case ActionPlaceBet:
		return applyPlaceBet(state, action, actorID)
	case ActionHit, ActionStand, ActionDouble, ActionSplit, ActionInsurance, ActionSurrender:
		return applyHandAction(state, action, actorID)
	default:
		return state, ErrUnknownAction
	}
}

func applyAddPlayer(state GameState, action Action) (GameState, error) {
	if state.Phase != PhaseBetting {
		return state, ErrNotBettingPhase
	}
	if state.playerIndex(action.UserID) >= 0 {
		return state, ErrPlayerAlreadyAdded
	}
	next := state.clone()
	next.Players = append(next.Players, Player{
		UserID:      action.UserID,
		DisplayName: action.DisplayName,
		Hands:       []PlayerHand{freshHand()},
		IsActive:    true,
		IsConnected: true,
	})
	return next, nil
}

func applyDisconnect(state GameState, action Action) (GameState, error) {
	idx := state.playerIndex(action.UserID)
	if idx < 0 {
		return state, ErrPlayerUnknown
	}
	next := state.clone()
	next.Players[idx].IsConnected = false

	if next.Phase == PhaseBetting {
		// Not committed yet, drop from the round.
		next.Players[idx].IsActive = false
		return next, nil
	}

	// Mid-round: stand all of the player's open hands so the round can
	// finish without them.
	if next.Phase == PhasePlayerTurn {
		for j := range next.Players[idx].Hands {
			if next.Players[idx].Hands[j].Status == HandPlaying {
				next.Players[idx].Hands[j].Status = HandStood
			}
		}
		if next.CurrentPlayerIndex == idx {
			advanceTurn(&next)
		}
	}
	return next, nil
}

func applyPlaceBet(state GameState, action Action, actorID string) (GameState, error) {
	if state.Phase != PhaseBetting {
		return state, ErrNotBettingPhase
	}
	idx := state.playerIndex(actorID)
	if idx < 0 {
		return state, ErrPlayerUnknown
	}
	if action.Amount <= 0 {
		return state, ErrInvalidBet
	}
	if state.Players[idx].Bet > 0 {
		return state, ErrBetAlreadyPlaced
	}

	next := state.clone()
	next.Players[idx].Bet = action.Amount
	next.Players[idx].IsActive = true
	next.Players[idx].Hands = []PlayerHand{freshHand()}
	next.Players[idx].Hands[0].Bet = action.Amount

	if allBetsIn(next) {
		return dealRound(next)
	}
	return next, nil
}

func allBetsIn(state GameState) bool {
	anyBet := false
	for _, p := range state.Players {
		if !p.IsConnected || !p.IsActive {
			continue
		}
		if p.Bet == 0 {
			return false
		}
		anyBet = true
	}
	return anyBet
}

// dealRound deals two cards to every betting player and the dealer, flags
// naturals, and enters the first turn.
func dealRound(state GameState) (GameState, error) {
	state.Phase = PhaseDealing

	for round := 0; round < 2; round++ {
		for i := range state.Players {
			if state.Players[i].Bet == 0 {
				continue
			}
			card, err := state.draw()
			if err != nil {
				return state, err
			}
			state.Players[i].Hands[0].Cards = append(state.Players[i].Hands[0].Cards, card)
		}
		card, err := state.draw()
		if err != nil {
			return state, err
		}
		state.Dealer.Cards = append(state.Dealer.Cards, card)
	}
	state.Dealer.Hidden = true

	for i := range state.Players {
		if state.Players[i].Bet == 0 {
			continue
		}
		if IsBlackjack(state.Players[i].Hands[0].Cards) {
			state.Players[i].Hands[0].Status = HandBlackjack
		}
	}

	state.Phase = PhasePlayerTurn
	state.CurrentPlayerIndex = -1
	advanceTurn(&state)
	return state, nil
}

func applyHandAction(state GameState, action Action, actorID string) (GameState, error) {
	if state.Phase != PhasePlayerTurn {
		return state, ErrNotPlayerTurn
	}
	idx := state.playerIndex(actorID)
	if idx < 0 {
		return state, ErrPlayerUnknown
	}
	if idx != state.CurrentPlayerIndex {
		return state, ErrNotYourTurn
	}

	next := state.clone()
	player := &next.Players[idx]
	hand := &player.Hands[player.CurrentHandIndex]
	if hand.Status != HandPlaying {
		return state, ErrHandNotPlaying
	}
	untouched := len(hand.Cards) == 2 && !hand.IsDoubled

	switch action.Type {
	case ActionHit:
		card, err := next.draw()
		if err != nil {
			return state, err
		}
		hand.Cards = append(hand.Cards, card)
		if IsBusted(hand.Cards) {
			hand.Status = HandBusted
			advanceTurn(&next)
		} else if BestValue(hand.Cards) == 21 {
			hand.Status = HandStood
			advanceTurn(&next)
		}

	case ActionStand:
		hand.Status = HandStood
		advanceTurn(&next)

	case ActionDouble:
		if !untouched {
			return state, ErrHandNotUntouched
		}
		card, err := next.draw()
		if err != nil {
			return state, err
		}
		hand.Bet *= 2
		hand.IsDoubled = true
		hand.Cards = append(hand.Cards, card)
		if IsBusted(hand.Cards) {
			hand.Status = HandBusted
		} else {
			hand.Status = HandStood
		}
		advanceTurn(&next)

	case ActionSplit:
		if !untouched {
			return state, ErrHandNotUntouched
		}
		if hand.Cards[0].Rank != hand.Cards[1].Rank {
			return state, ErrNotAPair
		}
		first, err := next.draw()
		if err != nil {
			return state, err
		}
		second, err := next.draw()
		if err != nil {
			return state, err
		}
		hi := player.CurrentHandIndex
		left := PlayerHand{
			Cards:   []Card{hand.Cards[0], first},
			Bet:     hand.Bet,
			Status:  HandPlaying,
			IsSplit: true,
		}
		right := PlayerHand{
			Cards:   []Card{hand.Cards[1], second},
			Bet:     hand.Bet,
			Status:  HandPlaying,
			IsSplit: true,
		}
		hands := make([]PlayerHand, 0, len(player.Hands)+1)
		hands = append(hands, player.Hands[:hi]...)
		hands = append(hands, left, right)
		hands = append(hands, player.Hands[hi+1:]...)
		player.Hands = hands

	case ActionInsurance:
		if len(next.Dealer.Cards) == 0 || next.Dealer.Cards[0].Rank != "A" {
			return state, ErrNoInsurance
		}
		if !untouched {
			return state, ErrInsuranceTooLate
		}
		if action.Amount <= 0 || action.Amount > hand.Bet/2 {
			return state, ErrInsuranceAmount
		}
		player.Insurance = action.Amount

	case ActionSurrender:
		if !untouched || hand.IsSplit {
			return state, ErrHandNotUntouched
		}
		hand.Status = HandSurrendered
		advanceTurn(&next)
	}

	return next, nil
}

// advanceTurn moves to the next playing hand, hopping players as needed.
// When no playing hand remains it enters the dealer turn, or jumps straight
// to settlement when no hand can still beat the dealer.
func advanceTurn(state *GameState) {
	// Finish remaining hands of the current player first.
	if state.CurrentPlayerIndex >= 0 && state.CurrentPlayerIndex < len(state.Players) {
		player := &state.Players[state.CurrentPlayerIndex]
		for j := player.CurrentHandIndex; j < len(player.Hands); j++ {
			if player.Hands[j].Status == HandPlaying {
				player.CurrentHandIndex = j
				return
			}
		}
	}

	for i := state.CurrentPlayerIndex + 1; i < len(state.Players); i++ {
		player := &state.Players[i]
		if player.Bet == 0 {
			continue
		}
		for j := 0; j < len(player.Hands); j++ {
			if player.Hands[j].Status == HandPlaying {
				state.CurrentPlayerIndex = i
				player.CurrentHandIndex = j
				return
			}
		}
	}

	if anyHandContends(*state) {
		state.Phase = PhaseDealerTurn
	} else {
		// Everyone busted or surrendered: no dealer draw can change the
		// outcome (insurance still settles against the hole card).
		state.Dealer.Hidden = false
		state.Phase = PhaseSettlement
	}
}

func anyHandContends(state GameState) bool {
	for _, p := range state.Players {
		for _, h := range p.Hands {
			if h.Status == HandStood || h.Status == HandBlackjack {
				return true
			}
		}
	}
	return false
}

// DealerStep advances the dealer by exactly one visible step: the first
// call reveals the hole card, each later call draws one card or concludes
// the turn. Pacing between steps is the caller's concern.
func DealerStep(state GameState) (GameState, error) {
	if state.Phase != PhaseDealerTurn {
		return state, ErrNotPlayerTurn
	}
	next := state.clone()

	if next.Dealer.Hidden {
		next.Dealer.Hidden = false
		return next, nil
	}

	if dealerMustDraw(next.Dealer.Cards, next.Settings.StandOnSoft17) {
		card, err := next.draw()
		if err != nil {
			return state, err
		}
		next.Dealer.Cards = append(next.Dealer.Cards, card)
		return next, nil
	}

	next.Phase = PhaseSettlement
	return next, nil
}

// dealerMustDraw: hit below 17; at soft 17 the house rule decides.
func dealerMustDraw(cards []Card, standOnSoft17 bool) bool {
	value := BestValue(cards)
	if value < 17 {
		return true
	}
	if value == 17 && isSoft(cards) && !standOnSoft17 {
		return true
	}
	return false
}

// TimeOutBetting closes the betting window: players who never placed a bet
// sit this round out, everyone who did gets dealt. When nobody bet, the
// table stays in betting for the next window.
func TimeOutBetting(state GameState) (GameState, error) {
	if state.Phase != PhaseBetting {
		return state, ErrNotBettingPhase
	}
	next := state.clone()
	for i := range next.Players {
		if next.Players[i].Bet == 0 {
			next.Players[i].IsActive = false
		}
	}
	if !allBetsIn(next) {
		return next, nil
	}
	return dealRound(next)
}

// NextRound resets a settled round back to betting, keeping the deck and
// the seated players.
func NextRound(state GameState) (GameState, error) {
	if state.Phase != PhaseRoundEnd {
		return state, ErrNotRoundEnd
	}
	next := state.clone()
	next.Phase = PhaseBetting
	next.Dealer = DealerHand{Cards: []Card{}, Hidden: true}
	next.RoundNumber++
	next.CurrentPlayerIndex = 0
	for i := range next.Players {
		next.Players[i].Hands = []PlayerHand{freshHand()}
		next.Players[i].CurrentHandIndex = 0
		next.Players[i].Bet = 0
		next.Players[i].Insurance = 0
	}
	return next, nil
}
