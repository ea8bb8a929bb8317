// Package fsm defines the client connection lifecycle as a transition table.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle            State = "idle"
	StateConnecting      State = "connecting"
	StateAwaitingConnect State = "awaiting_connect"
	StateConnected       State = "connected"
	StateFailed          State = "failed"
	StateHandshakeSent   State = "handshake_sent"
	StateActive          State = "active"
	StateDisconnected    State = "disconnected"
)

const (
	EventStart       Event = "start"
	EventDial        Event = "dial"
	EventEstablished Event = "established"
	EventFail        Event = "fail"
	EventHandshake   Event = "handshake"
	EventActivate    Event = "activate"
	EventDisconnect  Event = "disconnect"
)

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateConnecting, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateConnecting:
		switch event {
		case EventDial:
			return StateAwaitingConnect, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateAwaitingConnect:
		switch event {
		case EventEstablished:
			return StateConnected, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateConnected:
		switch event {
		case EventHandshake:
			return StateHandshakeSent, nil
		case EventActivate:
			return StateActive, nil
		case EventDisconnect:
			return StateDisconnected, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateHandshakeSent:
		switch event {
		case EventActivate:
			return StateActive, nil
		case EventDisconnect:
			return StateDisconnected, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateActive:
		switch event {
		case EventDisconnect:
			return StateDisconnected, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateFailed, StateDisconnected:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Terminal reports whether no further transition can leave s.
func Terminal(s State) bool {
	return s == StateFailed || s == StateDisconnected
}

// Connected reports whether s holds an established socket.
func Connected(s State) bool {
	return s == StateConnected || s == StateHandshakeSent || s == StateActive
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
