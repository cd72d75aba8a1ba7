// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status := peer.PeerStatus{
		LatestBlockHash: h.State.RetrieveLatestBlock().Hash,
		ChainLength:     h.State.QueryChainLength(),
		KnownPeers:      h.State.RetrieveKnownPeers(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// SubmitPeer is called by a node so they can be added to the known peer list.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if h.State.AddKnownPeer(pr) {
		h.Log.Infow("adding peer", "traceid", v.TraceID, "host", pr.Host)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Blockchain returns the full chain so a peer can replace its own.
func (h Handlers) Blockchain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// ReplaceChain takes a chain received from a peer and replaces the local
// chain with it when it is longer and valid.
func (h Handlers) ReplaceChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var chain []database.Block
	if err := web.Decode(r, &chain); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("replace chain", "traceid", v.TraceID, "blocks", len(chain))

	if err := h.State.ReplaceChain(chain); err != nil {
		return errs.Classify(err)
	}

	resp := struct {
		Status string `json:"status"`
		Length int    `json:"length"`
	}{
		Status: "chain replaced",
		Length: h.State.QueryChainLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Sync pulls the chain from the known peers.
func (h Handlers) Sync(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.Worker.Sync()

	resp := struct {
		Status string `json:"status"`
		Length int    `json:"length"`
	}{
		Status: "sync completed",
		Length: h.State.QueryChainLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
