package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, s State, events ...Event) State {
	t.Helper()
	for _, e := range events {
		next, err := Transition(s, e)
		require.NoError(t, err, "%s --(%s)-->", s, e)
		s = next
	}
	return s
}

func TestTransitionHandshakePath(t *testing.T) {
	s := apply(t, StateIdle, EventStart, EventDial, EventEstablished)
	require.Equal(t, StateConnected, s)

	s = apply(t, s, EventHandshake)
	require.Equal(t, StateHandshakeSent, s)

	s = apply(t, s, EventActivate)
	require.Equal(t, StateActive, s)

	s = apply(t, s, EventDisconnect)
	require.Equal(t, StateDisconnected, s)
	require.True(t, Terminal(s))
}

func TestTransitionBypassPath(t *testing.T) {
	s := apply(t, StateIdle, EventStart, EventDial, EventEstablished, EventActivate)
	require.Equal(t, StateActive, s)
}

func TestTransitionFailures(t *testing.T) {
	require.Equal(t, StateFailed, apply(t, StateIdle, EventStart, EventFail))
	require.Equal(t, StateFailed, apply(t, StateIdle, EventStart, EventDial, EventFail))
	require.Equal(t, StateDisconnected, apply(t, StateIdle, EventStart, EventDial, EventEstablished, EventDisconnect))
	require.Equal(t, StateDisconnected, apply(t, StateIdle, EventStart, EventDial, EventEstablished, EventHandshake, EventDisconnect))
}

func TestTransitionMatrixInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event Event
	}{
		{name: "idle activate", state: StateIdle, event: EventActivate},
		{name: "connecting established", state: StateConnecting, event: EventEstablished},
		{name: "awaiting handshake", state: StateAwaitingConnect, event: EventHandshake},
		{name: "connected fail", state: StateConnected, event: EventFail},
		{name: "handshake twice", state: StateHandshakeSent, event: EventHandshake},
		{name: "active handshake", state: StateActive, event: EventHandshake},
		{name: "failed restart", state: StateFailed, event: EventStart},
		{name: "disconnected twice", state: StateDisconnected, event: EventDisconnect},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.state, next)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid transition")
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventStart)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)
}

func TestConnectedStates(t *testing.T) {
	for _, s := range []State{StateConnected, StateHandshakeSent, StateActive} {
		require.True(t, Connected(s), s)
	}
	for _, s := range []State{StateIdle, StateConnecting, StateAwaitingConnect, StateFailed, StateDisconnected} {
		require.False(t, Connected(s), s)
	}
}
