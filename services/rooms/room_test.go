package rooms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gameconst "Spielhalle/constants/game"
)

func TestAllPlayersReadyExemptsHost(t *testing.T) {
	m := NewManager()
	room, err := m.CreateRoom("host", "Host", Settings{GameType: gameconst.TypeKniffel, MaxPlayers: 3})
	require.NoError(t, err)

	// The host alone counts as ready, starting is their call anyway.
	assert.True(t, room.AllPlayersReady())

	_, err = m.JoinRoom(room.ID, "guest", "Guest")
	require.NoError(t, err)
	assert.False(t, room.AllPlayersReady())

	room.Player("guest").IsReady = true
	assert.True(t, room.AllPlayersReady())

	_, err = m.JoinRoom(room.ID, "late", "Late")
	require.NoError(t, err)
	assert.False(t, room.AllPlayersReady())
}
