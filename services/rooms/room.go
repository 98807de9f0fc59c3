// Package rooms owns the authoritative in-memory map of active game rooms
// and the reverse user index. All room mutation goes through the Manager;
// per-room locking keeps transitions for one room from interleaving.
package rooms

import (
	"sync"
	"time"

	"github.com/google/uuid"

	gameconst "Spielhalle/constants/game"
	"Spielhalle/services/payout"
)

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusPlaying RoomStatus = "playing"
	StatusEnded   RoomStatus = "ended"
)

type PlayerInfo struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	IsReady     bool   `json:"isReady"`
	IsConnected bool   `json:"isConnected"`
	MissedTurns int    `json:"missedTurns"`
}

type ChatMessage struct {
	ID          string `json:"id"`
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Content     string `json:"content"`
	IsSystem    bool   `json:"isSystem"`
	Timestamp   int64  `json:"timestamp"`
}

// BetSettings configures the Chips wagering of a room. Free rooms leave
// IsBetRoom false and ignore the rest.
type BetSettings struct {
	IsBetRoom    bool                 `json:"isBetRoom"`
	BetAmount    int64                `json:"betAmount"`
	PayoutRatios []payout.PayoutRatio `json:"payoutRatios"`
}

type Settings struct {
	Name          string      `json:"name"`
	GameType      string      `json:"gameType"`
	MaxPlayers    int         `json:"maxPlayers"`
	TurnTimerSec  int         `json:"turnTimerSec"`
	AFKThreshold  int         `json:"afkThreshold"`
	IsPrivate     bool        `json:"isPrivate"`
	SpinTimerSec  int         `json:"spinTimerSec"`
	IsManualSpin  bool        `json:"isManualSpin"`
	DeckCount     int         `json:"deckCount"`
	StandOnSoft17 bool        `json:"standOnSoft17"`
	KniffelPreset string      `json:"kniffelPreset"`
	Bet           BetSettings `json:"bet"`
}

// Room is the mutable per-room aggregate. Handlers must hold mu for the
// whole of an action, including any ledger I/O performed on its behalf, so
// no two transitions for the same room interleave.
type Room struct {
	mu sync.Mutex

	ID         string        `json:"id"`
	Settings   Settings      `json:"settings"`
	HostID     string        `json:"hostId"`
	Status     RoomStatus    `json:"status"`
	Players    []*PlayerInfo `json:"players"`
	Spectators []*PlayerInfo `json:"spectators"`
	GameState  any           `json:"gameState"`
	Chat       []ChatMessage `json:"chat"`
	CreatedAt  time.Time     `json:"createdAt"`
	EndedAt    time.Time     `json:"endedAt"`
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// AddChatMessage appends to the bounded chat history, dropping the oldest
// entry beyond the limit. Caller holds the room lock.
func (r *Room) AddChatMessage(msg ChatMessage) {
	r.Chat = append(r.Chat, msg)
	if len(r.Chat) > gameconst.ChatHistoryLimit {
		r.Chat = r.Chat[len(r.Chat)-gameconst.ChatHistoryLimit:]
	}
}

// SystemMessage builds a system chat entry for the room.
func (r *Room) SystemMessage(content string) ChatMessage {
	return ChatMessage{
		ID:          uuid.NewString(),
		RoomID:      r.ID,
		UserID:      "system",
		DisplayName: "System",
		Content:     content,
		IsSystem:    true,
		Timestamp:   time.Now().UnixMilli(),
	}
}

func (r *Room) playerIndex(userID string) int {
	for i, p := range r.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

func (r *Room) spectatorIndex(userID string) int {
	for i, s := range r.Spectators {
		if s.UserID == userID {
			return i
		}
	}
	return -1
}

// Player returns the player entry for a user, or nil. Caller holds the lock.
func (r *Room) Player(userID string) *PlayerInfo {
	if i := r.playerIndex(userID); i >= 0 {
		return r.Players[i]
	}
	return nil
}

// AllPlayersReady reports whether every seated player except the host has
// toggled ready. The host signals readiness by starting the game. Caller
// holds the lock.
func (r *Room) AllPlayersReady() bool {
	for _, p := range r.Players {
		if p.UserID == r.HostID {
			continue
		}
		if !p.IsReady {
			return false
		}
	}
	return true
}

func (r *Room) isEmpty() bool {
	return len(r.Players) == 0 && len(r.Spectators) == 0
}

// Summary is the public projection of a room: no game state, no chat.
type Summary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	GameType    string     `json:"gameType"`
	HostID      string     `json:"hostId"`
	Status      RoomStatus `json:"status"`
	PlayerCount int        `json:"playerCount"`
	MaxPlayers  int        `json:"maxPlayers"`
	IsBetRoom   bool       `json:"isBetRoom"`
	BetAmount   int64      `json:"betAmount"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Summarize projects the room for listings. Caller holds the lock.
func (r *Room) Summarize() Summary {
	return Summary{
		ID:          r.ID,
		Name:        r.Settings.Name,
		GameType:    r.Settings.GameType,
		HostID:      r.HostID,
		Status:      r.Status,
		PlayerCount: len(r.Players),
		MaxPlayers:  r.Settings.MaxPlayers,
		IsBetRoom:   r.Settings.Bet.IsBetRoom,
		BetAmount:   r.Settings.Bet.BetAmount,
		CreatedAt:   r.CreatedAt,
	}
}
