// Package transport implements the peer-to-peer stream layer: one TCP
// connection per directed peer pair, a symmetric handshake exchanging peer
// indices, and an adaptively-batching sender.
// Grounded on the Rust source's src/graph/communication and
// src/vv/communication packages, which are identical up to the message
// type they carry.
package transport

import (
	"fmt"

	"github.com/jabolina/tcb/pkg/tcb/config"
	"github.com/jabolina/tcb/pkg/tcb/definition"
	"github.com/jabolina/tcb/pkg/tcb/metrics"
)

// Transport is the fully-connected mesh of directed streams between the
// local peer and every other peer in the group. New only returns once the
// local peer has a live connection to, and from, every other peer.
type Transport struct {
	localID  int
	links    []*link
	byPeer   map[int]*link
	acceptor *acceptor
	incoming chan Inbound

	log definition.Logger
}

// New dials every address in peerAddresses while simultaneously accepting
// connections on localAddr, and blocks until the mesh is fully connected in
// both directions.
func New(localID int, localAddr string, peerAddresses []string, cfg config.Configuration, log definition.Logger, mtx *metrics.Collectors) (*Transport, error) {
	incoming := make(chan Inbound, 256)
	barrier := newStartBarrier(len(peerAddresses) + 1)

	acc, err := newAcceptor(localAddr, localID, len(peerAddresses), incoming, barrier, log)
	if err != nil {
		return nil, err
	}
	go acc.run()

	links := connect(localID, peerAddresses, cfg, log, mtx)

	byPeer := make(map[int]*link, len(links))
	for _, l := range links {
		byPeer[l.peerID] = l
	}

	barrier.Arrive()

	return &Transport{
		localID:  localID,
		links:    links,
		byPeer:   byPeer,
		acceptor: acc,
		incoming: incoming,
		log:      log,
	}, nil
}

// Send enqueues body for delivery to peerID. The call returns once the
// payload is handed to that peer's sender goroutine, not once it's on the
// wire.
func (t *Transport) Send(peerID int, body []byte) error {
	l, ok := t.byPeer[peerID]
	if !ok {
		return fmt.Errorf("transport: no link to peer %d", peerID)
	}
	l.in <- body
	return nil
}

// Broadcast enqueues body for delivery to every other peer in the group.
func (t *Transport) Broadcast(body []byte) {
	for _, l := range t.links {
		l.in <- body
	}
}

// Incoming returns the channel of message bodies arriving from any peer.
func (t *Transport) Incoming() <-chan Inbound {
	return t.incoming
}

// Close tears down every sender and the acceptor's remaining connections.
func (t *Transport) Close() {
	for _, l := range t.links {
		close(l.in)
	}
	t.acceptor.Close()
}
