package types

// EnvelopeKind discriminates the frames carried on a peer-to-peer stream.
type EnvelopeKind uint8

const (
	// EnvelopeHandshake carries the sender's peer index, exchanged once
	// when a directed stream is established.
	EnvelopeHandshake EnvelopeKind = iota
	// EnvelopeMessage carries an opaque, already-serialized engine message
	// (a GraphMessage or VVMessage, depending on which engine is active).
	EnvelopeMessage
	// EnvelopeClose signals the sender is done and the stream can be torn
	// down; no further frames follow.
	EnvelopeClose
)

func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopeHandshake:
		return "Handshake"
	case EnvelopeMessage:
		return "Message"
	case EnvelopeClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Envelope is the single wire type ever written to a directed stream. Using
// one struct with a discriminant (rather than an encoding/gob-registered
// interface) keeps the framing self-describing and avoids gob's interface
// registration ceremony, while still matching the handshake/message/close
// three-case handshake/message/close union a wire envelope needs.
type Envelope struct {
	Kind EnvelopeKind

	// Set only when Kind == EnvelopeHandshake.
	PeerIndex int

	// Set only when Kind == EnvelopeMessage: the gob-encoded GraphMessage
	// or VVMessage, opaque to the transport layer.
	Body []byte
}

// HandshakeEnvelope builds the handshake frame a connector/acceptor writes
// first on every newly established stream.
func HandshakeEnvelope(localID int) Envelope {
	return Envelope{Kind: EnvelopeHandshake, PeerIndex: localID}
}

// MessageEnvelope wraps an already-serialized engine message for transport.
func MessageEnvelope(body []byte) Envelope {
	return Envelope{Kind: EnvelopeMessage, Body: body}
}

// CloseEnvelope is written once by a sender before it exits.
func CloseEnvelope() Envelope {
	return Envelope{Kind: EnvelopeClose}
}
