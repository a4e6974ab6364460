package signing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	next, err := Transition(StatusPending, ActionSign)
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, next)

	next, err = Transition(StatusPending, ActionDecline)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, next)
}

func TestTransitionTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusSigned, StatusDeclined} {
		for _, a := range []Action{ActionSign, ActionDecline} {
			_, err := Transition(s, a)
			assert.ErrorIs(t, err, ErrTerminalState, "status %s action %s", s, a)
		}
	}
}

func TestTransitionUnknownInput(t *testing.T) {
	_, err := Transition(Status("weird"), ActionSign)
	assert.Error(t, err)

	_, err = Transition(StatusPending, Action("shred"))
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusSigned.Terminal())
	assert.True(t, StatusDeclined.Terminal())
}

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "=")
}
