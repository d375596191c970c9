package transport

import (
	"fmt"
	"net"

	"github.com/jabolina/tcb/pkg/tcb/types"
)

// sendHandshake writes the local peer index as the first frame on a newly
// established directed stream.
func sendHandshake(conn net.Conn, localID int) error {
	codec := newWireCodec(conn, conn)
	return codec.Write(types.HandshakeEnvelope(localID))
}

// finishHandshake reads the peer index off the other end of a freshly
// established stream.
func finishHandshake(conn net.Conn) (int, error) {
	codec := newWireCodec(conn, conn)
	env, err := codec.Read()
	if err != nil {
		return 0, err
	}
	if env.Kind != types.EnvelopeHandshake {
		return 0, fmt.Errorf("transport: expected handshake envelope, got %s", env.Kind)
	}
	return env.PeerIndex, nil
}
