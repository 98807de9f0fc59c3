package socketio_utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleReplacesPendingTimer(t *testing.T) {
	reg := NewTimerRegistry()
	fired := make(chan string, 2)

	reg.Schedule("room", 20*time.Millisecond, func() { fired <- "first" })
	reg.Schedule("room", 30*time.Millisecond, func() { fired <- "second" })

	select {
	case got := <-fired:
		assert.Equal(t, "second", got)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}

	select {
	case got := <-fired:
		t.Fatalf("replaced timer fired anyway: %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelStopsTimer(t *testing.T) {
	reg := NewTimerRegistry()
	fired := make(chan struct{}, 1)

	reg.Schedule("room", 20*time.Millisecond, func() { fired <- struct{}{} })
	reg.Cancel("room")

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(60 * time.Millisecond):
	}

	// Cancelling an unknown key is a no-op.
	reg.Cancel("unknown")
}

func TestRollDiceAndSpinWheelStayInRange(t *testing.T) {
	dice, err := RollDice(5)
	assert.NoError(t, err)
	assert.Len(t, dice, 5)
	for _, d := range dice {
		assert.GreaterOrEqual(t, d, 1)
		assert.LessOrEqual(t, d, 6)
	}

	for i := 0; i < 50; i++ {
		n, err := SpinWheel()
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, 36)
	}
}
