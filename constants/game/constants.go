package game

// Closed set of playable game variants. A room is created with exactly one
// of these and keeps it for its whole lifetime.
const (
	TypeKniffel   = "kniffel"
	TypeBlackjack = "blackjack"
	TypeRoulette  = "roulette"
	TypePoker     = "poker"
)

// Room defaults applied by the room manager when the create request leaves
// a setting unset.
const (
	DefaultMaxPlayers   = 8
	DefaultTurnTimerSec = 60
	DefaultAFKThreshold = 2

	// Chat history is a bounded ring buffer per room.
	ChatHistoryLimit = 100

	// Periodic sweep configuration: rooms that are empty, or `ended` for
	// longer than the staleness window, are reaped.
	CleanupIntervalSec   = 60
	EndedRoomMaxAgeMin   = 30
	DisconnectedGraceSec = 30
)

// Blackjack table defaults. The soft-17 rule is an explicit, tested
// configuration; there is no hidden default anywhere else.
const (
	DefaultDeckCount     = 6
	DefaultStandOnSoft17 = true
)

// Roulette spin timing.
const (
	DefaultSpinTimerSec = 30
)

// Dealer card pacing is a presentation concern layered on top of the
// one-draw-per-call dealer transition.
const DealerCardDelayMs = 1200

func ValidGameType(gameType string) bool {
	switch gameType {
	case TypeKniffel, TypeBlackjack, TypeRoulette, TypePoker:
		return true
	}
	return false
}
