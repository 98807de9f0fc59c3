package rooms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gameconst "Spielhalle/constants/game"
)

func kniffelSettings() Settings {
	return Settings{GameType: gameconst.TypeKniffel, MaxPlayers: 2}
}

func TestCreateRoomAppliesDefaults(t *testing.T) {
	m := NewManager()

	room, err := m.CreateRoom("host", "Host", Settings{GameType: gameconst.TypeBlackjack})
	require.NoError(t, err)

	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "host", room.HostID)
	assert.Equal(t, StatusWaiting, room.Status)
	assert.Equal(t, gameconst.DefaultMaxPlayers, room.Settings.MaxPlayers)
	assert.Equal(t, gameconst.DefaultTurnTimerSec, room.Settings.TurnTimerSec)
	assert.Equal(t, gameconst.DefaultAFKThreshold, room.Settings.AFKThreshold)
	assert.Equal(t, gameconst.DefaultDeckCount, room.Settings.DeckCount)
	assert.Equal(t, "Hosts Raum", room.Settings.Name)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "host", room.Players[0].UserID)

	_, err = m.CreateRoom("host", "Host", Settings{GameType: "schach"})
	assert.ErrorIs(t, err, ErrInvalidGame)
}

func TestJoinRoomSeatsUntilFull(t *testing.T) {
	m := NewManager()
	room, err := m.CreateRoom("host", "Host", kniffelSettings())
	require.NoError(t, err)

	result, err := m.JoinRoom(room.ID, "guest", "Guest")
	require.NoError(t, err)
	assert.False(t, result.Rejoined)
	assert.False(t, result.Spectator)
	assert.Len(t, room.Players, 2)

	_, err = m.JoinRoom(room.ID, "third", "Third")
	assert.ErrorIs(t, err, ErrRoomFull)

	_, err = m.JoinRoom("no-such-room", "guest", "Guest")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomIsIdempotentForMembers(t *testing.T) {
	m := NewManager()
	room, err := m.CreateRoom("host", "Host", kniffelSettings())
	require.NoError(t, err)

	result, err := m.JoinRoom(room.ID, "host", "Host")
	require.NoError(t, err)
	assert.True(t, result.Rejoined)
	assert.Len(t, room.Players, 1)
}

func TestJoinPlayingRoomBecomesSpectator(t *testing.T) {
	m := NewManager()
	room, err := m.CreateRoom("host", "Host", kniffelSettings())
	require.NoError(t, err)
	room.Status = StatusPlaying

	result, err := m.JoinRoom(room.ID, "late", "Late")
	require.NoError(t, err)
	assert.True(t, result.Spectator)
	assert.Len(t, room.Players, 1)
	assert.Len(t, room.Spectators, 1)
}

func TestLeaveRoomReassignsHost(t *testing.T) {
	m := NewManager()
	room, err := m.CreateRoom("host", "Host", Settings{GameType: gameconst.TypeKniffel, MaxPlayers: 4})
	require.NoError(t, err)
	_, err = m.JoinRoom(room.ID, "guest1", "Guest1")
	require.NoError(t, err)
	_, err = m.JoinRoom(room.ID, "guest2", "Guest2")
	require.NoError(t, err)

	updated, err := m.LeaveRoom(room.ID, "host")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "guest1", updated.HostID)
	assert.Len(t, updated.Players, 2)
}

func TestLeaveRoomDeletesWhenEmpty(t *testing.T) {
	m := NewManager()
	room, err := m.CreateRoom("host", "Host", kniffelSettings())
	require.NoError(t, err)

	updated, err := m.LeaveRoom(room.ID, "host")
	require.NoError(t, err)
	assert.Nil(t, updated)

	_, ok := m.GetRoom(room.ID)
	assert.False(t, ok)
}

func TestPublicRoomsHidesPrivateAndEnded(t *testing.T) {
	m := NewManager()
	open, err := m.CreateRoom("a", "A", kniffelSettings())
	require.NoError(t, err)
	_, err = m.CreateRoom("b", "B", Settings{GameType: gameconst.TypeRoulette, IsPrivate: true})
	require.NoError(t, err)
	ended, err := m.CreateRoom("c", "C", kniffelSettings())
	require.NoError(t, err)
	ended.Status = StatusEnded

	list := m.PublicRooms()
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
	assert.Equal(t, 1, list[0].PlayerCount)
}

func TestRemoveUserFromAllRooms(t *testing.T) {
	m := NewManager()
	first, err := m.CreateRoom("host", "Host", Settings{GameType: gameconst.TypeKniffel, MaxPlayers: 4})
	require.NoError(t, err)
	second, err := m.CreateRoom("other", "Other", Settings{GameType: gameconst.TypeBlackjack, MaxPlayers: 4})
	require.NoError(t, err)
	_, err = m.JoinRoom(second.ID, "host", "Host")
	require.NoError(t, err)

	updated := m.RemoveUserFromAllRooms("host")

	// First room emptied and deleted; second survives without the user.
	require.Len(t, updated, 1)
	assert.Equal(t, second.ID, updated[0].ID)
	assert.Nil(t, updated[0].Player("host"))
	_, ok := m.GetRoom(first.ID)
	assert.False(t, ok)
}

func TestCleanupSweep(t *testing.T) {
	m := NewManager()

	playing, err := m.CreateRoom("a", "A", kniffelSettings())
	require.NoError(t, err)
	playing.Status = StatusPlaying

	stale, err := m.CreateRoom("b", "B", kniffelSettings())
	require.NoError(t, err)
	stale.Status = StatusEnded
	stale.EndedAt = time.Now().Add(-time.Hour)

	fresh, err := m.CreateRoom("c", "C", kniffelSettings())
	require.NoError(t, err)
	fresh.Status = StatusEnded
	fresh.EndedAt = time.Now()

	removed := m.Cleanup(30 * time.Minute)
	assert.Equal(t, 1, removed)

	_, ok := m.GetRoom(playing.ID)
	assert.True(t, ok)
	_, ok = m.GetRoom(stale.ID)
	assert.False(t, ok)
	_, ok = m.GetRoom(fresh.ID)
	assert.True(t, ok)
}

func TestChatHistoryIsBounded(t *testing.T) {
	m := NewManager()
	room, err := m.CreateRoom("host", "Host", kniffelSettings())
	require.NoError(t, err)

	room.Lock()
	for i := 0; i < gameconst.ChatHistoryLimit+20; i++ {
		room.AddChatMessage(room.SystemMessage("hallo"))
	}
	count := len(room.Chat)
	room.Unlock()

	assert.Equal(t, gameconst.ChatHistoryLimit, count)
}

func TestMarkDisconnectedKeepsSeat(t *testing.T) {
	m := NewManager()
	room, err := m.CreateRoom("host", "Host", kniffelSettings())
	require.NoError(t, err)
	_, err = m.JoinRoom(room.ID, "guest", "Guest")
	require.NoError(t, err)

	affected := m.MarkDisconnected("guest")
	require.Len(t, affected, 1)

	room.Lock()
	guest := room.Player("guest")
	require.NotNil(t, guest)
	assert.False(t, guest.IsConnected)
	assert.Len(t, room.Players, 2)
	room.Unlock()

	affected = m.MarkConnected("guest")
	require.Len(t, affected, 1)

	room.Lock()
	assert.True(t, room.Player("guest").IsConnected)
	room.Unlock()

	// Unknown users touch nothing.
	assert.Empty(t, m.MarkDisconnected("stranger"))
}
