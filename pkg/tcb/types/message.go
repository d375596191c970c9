package types

// GraphMessage is the wire payload used by the graph engine: a dot, its
// application payload and the sender's causal context at send time.
type GraphMessage struct {
	Dot     Dot
	Payload []byte
	Context []Dot
}

// VVMessage is the wire payload used by the vector-clock engine: the
// sender's message counter is folded into VV[senderID], so only the
// version vector travels, not a separate dot.
type VVMessage struct {
	ID      int // message counter assigned by the sender (VV[sender] at send time)
	Payload []byte
	VV      VersionVector
}

// Dot reconstructs the sender's dot for a VVMessage given the sender id the
// transport/dispatcher already knows out of band.
func (m VVMessage) Dot(sender int) Dot {
	return NewDot(sender, uint64(m.ID))
}
