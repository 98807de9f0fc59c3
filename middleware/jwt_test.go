package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketTokenRoundTrip(t *testing.T) {
	t.Setenv("KEY", "test-secret")

	token, err := IssueSocketToken("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := Socketio_JWT_decoder(map[string]interface{}{"authorization": token})
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)

	// Bearer prefix is accepted too.
	userID, err = Socketio_JWT_decoder(map[string]interface{}{"authorization": "Bearer " + token})
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestSocketTokenRejectsGarbage(t *testing.T) {
	t.Setenv("KEY", "test-secret")

	_, err := Socketio_JWT_decoder(map[string]interface{}{"authorization": "not-a-token"})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Socketio_JWT_decoder(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSocketTokenRejectsWrongKey(t *testing.T) {
	t.Setenv("KEY", "test-secret")
	token, err := IssueSocketToken("user-42")
	require.NoError(t, err)

	t.Setenv("KEY", "another-secret")
	_, err = Socketio_JWT_decoder(map[string]interface{}{"authorization": token})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
