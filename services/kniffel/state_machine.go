package kniffel

import (
	"errors"
	"sort"
	"time"

	"Spielhalle/services/payout"
)

// Action types accepted by ApplyAction. Dice values for ROLL_DICE are
// injected by the caller; the transition itself never generates randomness.
const (
	ActionRollDice       = "ROLL_DICE"
	ActionHoldDice       = "HOLD_DICE"
	ActionChooseCategory = "CHOOSE_CATEGORY"
)

var (
	ErrNotYourTurn       = errors.New("Not your turn")
	ErrGameFinished      = errors.New("Game is already finished")
	ErrNoRollsRemaining  = errors.New("No rolls remaining")
	ErrRollBeforeActing  = errors.New("Roll the dice first")
	ErrUnknownAction     = errors.New("Unknown action type")
	ErrUnknownCategory   = errors.New("Unknown or disabled category")
	ErrCategoryScored    = errors.New("Category already scored")
	ErrScratchNotAllowed = errors.New("Scratching is not allowed in this ruleset")
	ErrBadDiceCount      = errors.New("Wrong number of dice values")
	ErrBadDiceValue      = errors.New("Dice values must be between 1 and 6")
	ErrPlayerUnknown     = errors.New("Player is not part of this game")
)

type Action struct {
	Type     string  `json:"type"`
	Dice     []int   `json:"dice,omitempty"`     // injected values for unheld positions
	Held     [5]bool `json:"held,omitempty"`     // HOLD_DICE
	Category string  `json:"category,omitempty"` // CHOOSE_CATEGORY
}

// PlayerState tracks one player's sheet. Presence of a category key means
// the category has been scored (a scratch is stored as 0).
type PlayerState struct {
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName"`
	Scoresheet  map[string]int `json:"scoresheet"`
}

type GameState struct {
	Players            []PlayerState `json:"players"`
	Ruleset            Ruleset       `json:"ruleset"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	Dice               [5]int        `json:"dice"`
	Held               [5]bool       `json:"held"`
	RollsRemaining     int           `json:"rollsRemaining"`
	Round              int           `json:"round"`
	Finished           bool          `json:"finished"`
	TurnStartedAt      time.Time     `json:"turnStartedAt"`
}

// NewGameState seeds a game for the given players in seating order.
func NewGameState(players []PlayerState, ruleset Ruleset, now time.Time) GameState {
	seeded := make([]PlayerState, len(players))
	for i, p := range players {
		seeded[i] = PlayerState{UserID: p.UserID, DisplayName: p.DisplayName, Scoresheet: map[string]int{}}
	}
	return GameState{
		Players:        seeded,
		Ruleset:        ruleset,
		RollsRemaining: ruleset.MaxRolls,
		Round:          1,
		TurnStartedAt:  now,
	}
}

func (s GameState) clone() GameState {
	out := s
	out.Players = make([]PlayerState, len(s.Players))
	for i, p := range s.Players {
		sheet := make(map[string]int, len(p.Scoresheet))
		for k, v := range p.Scoresheet {
			sheet[k] = v
		}
		out.Players[i] = PlayerState{UserID: p.UserID, DisplayName: p.DisplayName, Scoresheet: sheet}
	}
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

// CurrentPlayer returns the player whose turn it is.
func (s GameState) CurrentPlayer() PlayerState {
	return s.Players[s.CurrentPlayerIndex]
}

// DiceToRoll reports how many dice values the next ROLL_DICE action must
// carry: all five on the first roll of a turn, afterwards only the unheld
// positions re-roll.
func (s GameState) DiceToRoll() int {
	if s.RollsRemaining == s.Ruleset.MaxRolls {
		return 5
	}
	n := 0
	for _, held := range s.Held {
		if !held {
			n++
		}
	}
	return n
}

// ApplyAction validates and applies one action, returning the new state.
// The input state is never mutated.
func ApplyAction(state GameState, action Action, actorID string) (GameState, error) {
	if state.Finished {
		return state, ErrGameFinished
	}
	idx := state.playerIndex(actorID)
	if idx < 0 {
		return state, ErrPlayerUnknown
	}
	if idx != state.CurrentPlayerIndex {
		return state, ErrNotYourTurn
	}

	switch action.Type {
	case ActionRollDice:
		return applyRoll(state, action)
	case ActionHoldDice:
		return applyHold(state, action)
	case ActionChooseCategory:
		return applyChooseCategory(state, action)
	default:
		return state, ErrUnknownAction
	}
}

func applyRoll(state GameState, action Action) (GameState, error) {
	if state.RollsRemaining <= 0 {
		return state, ErrNoRollsRemaining
	}

	// On the first roll of a turn every die rolls regardless of holds.
	firstRoll := state.RollsRemaining == state.Ruleset.MaxRolls
	unheld := 0
	for i := 0; i < 5; i++ {
		if firstRoll || !state.Held[i] {
			unheld++
		}
	}
	if len(action.Dice) != unheld {
		return state, ErrBadDiceCount
	}
	for _, d := range action.Dice {
		if d < 1 || d > 6 {
			return state, ErrBadDiceValue
		}
	}

	next := state.clone()
	if firstRoll {
		next.Held = [5]bool{}
	}
	j := 0
	for i := 0; i < 5; i++ {
		if firstRoll || !next.Held[i] {
			next.Dice[i] = action.Dice[j]
			j++
		}
	}
	next.RollsRemaining--
	return next, nil
}

func applyHold(state GameState, action Action) (GameState, error) {
	if state.RollsRemaining == state.Ruleset.MaxRolls {
		return state, ErrRollBeforeActing
	}
	if state.RollsRemaining == 0 {
		// Nothing left to roll, holds are meaningless now.
		return state, ErrNoRollsRemaining
	}
	next := state.clone()
	next.Held = action.Held
	return next, nil
}

func applyChooseCategory(state GameState, action Action) (GameState, error) {
	if state.RollsRemaining == state.Ruleset.MaxRolls {
		return state, ErrRollBeforeActing
	}

	active := state.Ruleset.ActiveCategories()
	valid := false
	for _, c := range active {
		if c == action.Category {
			valid = true
			break
		}
	}
	if !valid {
		return state, ErrUnknownCategory
	}

	player := state.CurrentPlayer()
	if _, scored := player.Scoresheet[action.Category]; scored {
		return state, ErrCategoryScored
	}

	score := ScoreCategory(action.Category, state.Dice, state.Ruleset)
	if score == 0 && !state.Ruleset.AllowScratch && hasScoringAlternative(state, player, active) {
		return state, ErrScratchNotAllowed
	}

	next := state.clone()
	next.Players[next.CurrentPlayerIndex].Scoresheet[action.Category] = score

	next.Finished = allSheetsFull(next, active)
	if !next.Finished {
		next.CurrentPlayerIndex = (next.CurrentPlayerIndex + 1) % len(next.Players)
		if next.CurrentPlayerIndex == 0 {
			next.Round++
		}
		next.Dice = [5]int{}
		next.Held = [5]bool{}
		next.RollsRemaining = next.Ruleset.MaxRolls
	}
	return next, nil
}

// hasScoringAlternative reports whether any other open category would score
// more than 0 with the current dice. When nothing scores, a scratch must be
// accepted even under allowScratch=false or the game could not proceed.
func hasScoringAlternative(state GameState, player PlayerState, active []string) bool {
	for _, c := range active {
		if _, scored := player.Scoresheet[c]; scored {
			continue
		}
		if ScoreCategory(c, state.Dice, state.Ruleset) > 0 {
			return true
		}
	}
	return false
}

func allSheetsFull(state GameState, active []string) bool {
	for _, p := range state.Players {
		if len(p.Scoresheet) < len(active) {
			return false
		}
	}
	return true
}

// Totals returns each player's final score keyed by user ID.
func (s GameState) Totals() map[string]int {
	totals := make(map[string]int, len(s.Players))
	for _, p := range s.Players {
		totals[p.UserID] = TotalScore(p.Scoresheet, s.Ruleset)
	}
	return totals
}

// Rankings converts final totals into competition-ranked positions (ties
// share a position, the next position skips ahead), the shape the payout
// calculator consumes.
func (s GameState) Rankings() []payout.FinalRanking {
	type entry struct {
		userID string
		total  int
	}
	entries := make([]entry, len(s.Players))
	for i, p := range s.Players {
		entries[i] = entry{p.UserID, TotalScore(p.Scoresheet, s.Ruleset)}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].total > entries[j].total })

	var rankings []payout.FinalRanking
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].total == entries[i].total {
			j++
		}
		group := payout.FinalRanking{Position: i + 1}
		for _, e := range entries[i:j] {
			group.UserIDs = append(group.UserIDs, e.userID)
		}
		rankings = append(rankings, group)
		i = j
	}
	return rankings
}
