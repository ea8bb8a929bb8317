package session

// HandshakeStrategy selects how the client identifies itself after connecting.
type HandshakeStrategy int

const (
	// HandshakeSelfIdentify sends a zero byte and set_client_name.
	HandshakeSelfIdentify HandshakeStrategy = iota
	// HandshakeSupervised leaves stream start and identity to the supervisor
	// that brokers the connection; a name sent by the client is rejected.
	HandshakeSupervised
)

func (h HandshakeStrategy) String() string {
	switch h {
	case HandshakeSelfIdentify:
		return "self-identify"
	case HandshakeSupervised:
		return "supervised"
	default:
		return "unknown"
	}
}

// SelectHandshake picks the strategy from environment evidence. A server
// started inside this VM writes its PID marker and expects the client to
// identify itself even in the managed VM.
func SelectHandshake(managedVM, serverMarker bool) HandshakeStrategy {
	if serverMarker || !managedVM {
		return HandshakeSelfIdentify
	}
	return HandshakeSupervised
}
