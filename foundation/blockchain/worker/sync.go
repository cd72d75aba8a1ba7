package worker

import (
	"context"
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Sync updates the peer list and replaces the chain with the longest valid
// chain held by a known peer.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, peer := range w.state.RetrieveKnownPeers() {
		ctx, cancel := context.WithTimeout(context.Background(), peerTimeout)

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(ctx, peer)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", peer.Host, err)
			cancel()
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// Only pull the chain when the peer has more blocks than we do.
		if peerStatus.ChainLength <= w.state.QueryChainLength() {
			cancel()
			continue
		}

		w.evHandler("worker: sync: retrievePeerChain: %s: chainLength[%d]", peer.Host, peerStatus.ChainLength)

		chain, err := w.state.NetRequestPeerChain(ctx, peer)
		cancel()
		if err != nil {
			w.evHandler("worker: sync: retrievePeerChain: %s: ERROR: %s", peer.Host, err)
			continue
		}

		switch err := w.state.ReplaceChain(chain); {
		case errors.Is(err, database.ErrNotLonger):
			w.evHandler("worker: sync: replaceChain: %s: WARNING: %s", peer.Host, err)
		case err != nil:
			w.evHandler("worker: sync: replaceChain: %s: ERROR: %s", peer.Host, err)
		default:
			w.evHandler("viewer: chain: replaced from %s: blocks[%d]", peer.Host, len(chain))
		}
	}
}
