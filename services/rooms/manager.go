package rooms

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	gameconst "Spielhalle/constants/game"
)

var (
	ErrRoomNotFound = errors.New("Room not found")
	ErrRoomFull     = errors.New("Room is full")
	ErrInvalidGame  = errors.New("Invalid game type")
)

// Manager holds every active room and a reverse user to room index used on
// disconnect. The maps are guarded by mu; individual rooms carry their own
// lock for game-state mutation.
type Manager struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	userRooms map[string]map[string]bool
}

func NewManager() *Manager {
	return &Manager{
		rooms:     make(map[string]*Room),
		userRooms: make(map[string]map[string]bool),
	}
}

func (m *Manager) indexUser(userID, roomID string) {
	if m.userRooms[userID] == nil {
		m.userRooms[userID] = make(map[string]bool)
	}
	m.userRooms[userID][roomID] = true
}

func (m *Manager) unindexUser(userID, roomID string) {
	if set := m.userRooms[userID]; set != nil {
		delete(set, roomID)
		if len(set) == 0 {
			delete(m.userRooms, userID)
		}
	}
}

// CreateRoom allocates a room with the host already seated, applying
// defaults for unset settings.
func (m *Manager) CreateRoom(hostID, hostName string, settings Settings) (*Room, error) {
	if !gameconst.ValidGameType(settings.GameType) {
		return nil, ErrInvalidGame
	}
	if settings.MaxPlayers <= 0 {
		settings.MaxPlayers = gameconst.DefaultMaxPlayers
	}
	if settings.TurnTimerSec <= 0 {
		settings.TurnTimerSec = gameconst.DefaultTurnTimerSec
	}
	if settings.AFKThreshold <= 0 {
		settings.AFKThreshold = gameconst.DefaultAFKThreshold
	}
	if settings.SpinTimerSec <= 0 {
		settings.SpinTimerSec = gameconst.DefaultSpinTimerSec
	}
	if settings.DeckCount <= 0 {
		settings.DeckCount = gameconst.DefaultDeckCount
	}
	if settings.Name == "" {
		settings.Name = hostName + "s Raum"
	}

	room := &Room{
		ID:       uuid.NewString(),
		Settings: settings,
		HostID:   hostID,
		Status:   StatusWaiting,
		Players: []*PlayerInfo{
			{UserID: hostID, DisplayName: hostName, IsConnected: true},
		},
		Spectators: []*PlayerInfo{},
		Chat:       []ChatMessage{},
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	m.rooms[room.ID] = room
	m.indexUser(hostID, room.ID)
	m.mu.Unlock()

	log.Printf("[ROOM-CREATE] room %s (%s) by %s", room.ID, settings.GameType, hostID)
	return room, nil
}

// GetRoom resolves a room by ID.
func (m *Manager) GetRoom(roomID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomID]
	return room, ok
}

// JoinResult reports how a join was satisfied.
type JoinResult struct {
	Room      *Room
	Rejoined  bool
	Spectator bool
}

// JoinRoom seats a user. Re-joining members get their liveness flag back
// instead of a duplicate seat; joins into a running game become spectators;
// full rooms reject.
func (m *Manager) JoinRoom(roomID, userID, displayName string) (JoinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	if p := room.Player(userID); p != nil {
		p.IsConnected = true
		m.indexUser(userID, roomID)
		return JoinResult{Room: room, Rejoined: true}, nil
	}
	if i := room.spectatorIndex(userID); i >= 0 {
		room.Spectators[i].IsConnected = true
		m.indexUser(userID, roomID)
		return JoinResult{Room: room, Rejoined: true, Spectator: true}, nil
	}

	if room.Status == StatusPlaying {
		room.Spectators = append(room.Spectators, &PlayerInfo{
			UserID: userID, DisplayName: displayName, IsConnected: true,
		})
		m.indexUser(userID, roomID)
		return JoinResult{Room: room, Spectator: true}, nil
	}

	if len(room.Players) >= room.Settings.MaxPlayers {
		return JoinResult{}, ErrRoomFull
	}

	room.Players = append(room.Players, &PlayerInfo{
		UserID: userID, DisplayName: displayName, IsConnected: true,
	})
	m.indexUser(userID, roomID)
	return JoinResult{Room: room}, nil
}

// LeaveRoom removes the user from players and spectators. The host role
// passes to the next seated player; an emptied room is deleted and nil is
// returned.
func (m *Manager) LeaveRoom(roomID, userID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(roomID, userID)
}

func (m *Manager) leaveLocked(roomID, userID string) (*Room, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	if i := room.playerIndex(userID); i >= 0 {
		room.Players = append(room.Players[:i], room.Players[i+1:]...)
	}
	if i := room.spectatorIndex(userID); i >= 0 {
		room.Spectators = append(room.Spectators[:i], room.Spectators[i+1:]...)
	}
	m.unindexUser(userID, roomID)

	if room.isEmpty() {
		delete(m.rooms, roomID)
		log.Printf("[ROOM-DELETE] room %s empty after %s left", roomID, userID)
		return nil, nil
	}

	if room.HostID == userID && len(room.Players) > 0 {
		room.HostID = room.Players[0].UserID
		log.Printf("[ROOM-HOST] room %s host reassigned to %s", roomID, room.HostID)
	}
	return room, nil
}

// PublicRooms lists summaries of every non-private room that has not ended.
func (m *Manager) PublicRooms() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]Summary, 0, len(m.rooms))
	for _, room := range m.rooms {
		room.Lock()
		if !room.Settings.IsPrivate && room.Status != StatusEnded {
			summaries = append(summaries, room.Summarize())
		}
		room.Unlock()
	}
	return summaries
}

// MarkDisconnected flags the user in every room they sit in without
// freeing the seat, so a reconnect within the grace window finds it again.
// Returns the affected rooms.
func (m *Manager) MarkDisconnected(userID string) []*Room {
	return m.setConnected(userID, false)
}

// MarkConnected restores the liveness flag after a reconnect.
func (m *Manager) MarkConnected(userID string) []*Room {
	return m.setConnected(userID, true)
}

func (m *Manager) setConnected(userID string, connected bool) []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var affected []*Room
	for roomID := range m.userRooms[userID] {
		room, ok := m.rooms[roomID]
		if !ok {
			continue
		}
		room.Lock()
		if p := room.Player(userID); p != nil {
			p.IsConnected = connected
			affected = append(affected, room)
		} else if i := room.spectatorIndex(userID); i >= 0 {
			room.Spectators[i].IsConnected = connected
			affected = append(affected, room)
		}
		room.Unlock()
	}
	return affected
}

// RemoveUserFromAllRooms applies leave semantics across every room the user
// is indexed in; used on disconnect. Returns the surviving updated rooms.
func (m *Manager) RemoveUserFromAllRooms(userID string) []*Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	var updated []*Room
	for roomID := range m.userRooms[userID] {
		room, err := m.leaveLocked(roomID, userID)
		if err != nil {
			continue
		}
		if room != nil {
			updated = append(updated, room)
		}
	}
	delete(m.userRooms, userID)
	return updated
}

// Cleanup deletes empty rooms and ended rooms older than maxEndedAge.
// Actively playing rooms with members are never touched. Returns the number
// of rooms removed.
func (m *Manager) Cleanup(maxEndedAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, room := range m.rooms {
		room.Lock()
		stale := room.isEmpty() ||
			(room.Status == StatusEnded && !room.EndedAt.IsZero() && now.Sub(room.EndedAt) > maxEndedAge)
		if stale {
			for _, p := range room.Players {
				m.unindexUser(p.UserID, id)
			}
			for _, s := range room.Spectators {
				m.unindexUser(s.UserID, id)
			}
			delete(m.rooms, id)
			removed++
		}
		room.Unlock()
	}
	if removed > 0 {
		log.Printf("[ROOM-CLEANUP] removed %d stale rooms", removed)
	}
	return removed
}

// RoomCount reports the number of tracked rooms, for metrics.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
