package types

// ClientMessage is what an engine emits on the client's delivery channel:
// either a causal delivery or, when stability tracking is enabled, a
// stability notification. Mirrors the Rust source's `ClientMessage` /
// `MiddlewareClient` enums, collapsed into a single type shared by both
// engines since the graph engine's payload/context and the vv engine's
// sender/version-vector fit the same shape once optional fields are zeroed.
type ClientMessage struct {
	Kind ClientMessageKind

	// Delivery fields.
	Payload []byte
	Dot     Dot
	Context []Dot // graph engine only; nil for the vv engine

	// VV engine carries the full vector alongside the dot instead of a
	// context set.
	VV VersionVector

	// A Stable message names the stable message through Dot alone;
	// Payload and Context stay unset.
}

// ClientMessageKind discriminates ClientMessage.
type ClientMessageKind uint8

const (
	// Empty is sent once, after the middleware has finished tearing down,
	// to unblock a client waiting in recv().
	Empty ClientMessageKind = iota
	Delivery
	Stable
)

// NewDelivery builds a Delivery-kind ClientMessage.
func NewDelivery(payload []byte, dot Dot, context []Dot, vv VersionVector) ClientMessage {
	return ClientMessage{Kind: Delivery, Payload: payload, Dot: dot, Context: context, VV: vv}
}

// NewStable builds a Stable-kind ClientMessage.
func NewStable(dot Dot, vv VersionVector) ClientMessage {
	return ClientMessage{Kind: Stable, Dot: dot, VV: vv}
}

// NewEmpty builds the terminal sentinel sent once the dispatcher exits.
func NewEmpty() ClientMessage {
	return ClientMessage{Kind: Empty}
}
