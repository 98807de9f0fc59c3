package socketio_utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	payload, ok := ParsePayload([]interface{}{map[string]interface{}{"room_id": "r1"}})
	require.True(t, ok)
	assert.Equal(t, "r1", GetString(payload, "room_id"))

	_, ok = ParsePayload(nil)
	assert.False(t, ok)

	_, ok = ParsePayload([]interface{}{"just a string"})
	assert.False(t, ok)
}

func TestNumericGettersHandleJSONNumbers(t *testing.T) {
	// JSON decoding hands every number over as float64.
	payload := map[string]interface{}{
		"amount": float64(250),
		"index":  float64(3),
	}

	assert.Equal(t, int64(250), GetInt64(payload, "amount"))
	assert.Equal(t, 3, GetInt(payload, "index"))
	assert.Equal(t, int64(0), GetInt64(payload, "missing"))
	assert.Equal(t, 0, GetInt(payload, "missing"))
}

func TestGetIntSlice(t *testing.T) {
	payload := map[string]interface{}{
		"numbers": []interface{}{float64(1), float64(2), "skip", float64(3)},
	}
	assert.Equal(t, []int{1, 2, 3}, GetIntSlice(payload, "numbers"))
	assert.Nil(t, GetIntSlice(payload, "missing"))
}

func TestGetBoolArray5(t *testing.T) {
	payload := map[string]interface{}{
		"held": []interface{}{true, false, true, false, true, true},
	}
	assert.Equal(t, [5]bool{true, false, true, false, true}, GetBoolArray5(payload, "held"))

	short := map[string]interface{}{"held": []interface{}{true}}
	assert.Equal(t, [5]bool{true, false, false, false, false}, GetBoolArray5(short, "held"))
}
