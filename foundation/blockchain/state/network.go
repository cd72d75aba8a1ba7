package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// NetRequestPeerStatus asks the peer for its status, including the peers
// it knows about.
func (s *State) NetRequestPeerStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr.Host)

	if s.client == nil {
		return peer.PeerStatus{}, errors.New("no peer client configured")
	}

	return s.client.RetrieveStatus(ctx, pr)
}

// NetRequestPeerChain retrieves the full chain from the peer.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr.Host)

	if s.client == nil {
		return nil, errors.New("no peer client configured")
	}

	return s.client.RetrieveChain(ctx, pr)
}
