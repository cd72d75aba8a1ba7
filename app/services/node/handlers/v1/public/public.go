// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/ardanlabs/powchain/foundation/validate"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(e); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Blockchain returns the full chain.
func (h Handlers) Blockchain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// BlocksRange returns a page of blocks starting from the latest block.
func (h Handlers) BlocksRange(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	start, err := queryInt(r, "start", 0)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	end, err := queryInt(r, "end", start+5)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.State.QueryBlocksRange(start, end), http.StatusOK)
}

// ChainLength returns the number of blocks in the chain.
func (h Handlers) ChainLength(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, chainLength{Length: h.State.QueryChainLength()}, http.StatusOK)
}

// Mine mines the pooled transactions into a new block and returns it.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "pool", h.State.QueryTxPoolLength())

	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		return errs.Classify(err)
	}

	return web.Respond(ctx, w, block, http.StatusCreated)
}

// Transact sends value from the node's wallet.
func (h Handlers) Transact(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req transact
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	recipient, err := h.NS.Resolve(req.Recipient)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("recipient %q: %w", req.Recipient, err), http.StatusBadRequest)
	}

	h.Log.Infow("transact", "traceid", v.TraceID, "to", recipient, "name", h.NS.Lookup(recipient), "amount", req.Amount)

	tx, err := h.State.Transact(recipient, req.Amount)
	if err != nil {
		return errs.Classify(err)
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// WalletInfo returns the address and balance of the node's wallet.
func (h Handlers) WalletInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wallet := h.State.RetrieveWallet()

	info := walletInfo{
		Address: wallet.Address(),
		Name:    h.NS.Lookup(wallet.Address()),
		Balance: wallet.Balance(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Balance returns the balance for the specified address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address, err := h.NS.Resolve(web.Param(r, "address"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	info := walletInfo{
		Address: address,
		Name:    h.NS.Lookup(address),
		Balance: h.State.QueryBalance(address),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// KnownAddresses returns every address that received value on the chain.
func (h Handlers) KnownAddresses(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addresses := h.State.QueryKnownAddresses()

	known := make([]knownAddress, len(addresses))
	for i, address := range addresses {
		known[i] = knownAddress{
			Address: address,
			Name:    h.NS.Lookup(address),
		}
	}

	return web.Respond(ctx, w, known, http.StatusOK)
}

// Transactions returns the set of transactions waiting to be mined.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveTxPool(), http.StatusOK)
}

// SubmitTransaction adds a transaction signed by a wallet to the pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "tx", tx)

	if err := h.State.SubmitTransaction(tx); err != nil {
		return errs.Classify(err)
	}

	return web.Respond(ctx, w, status{Status: "transaction added to pool"}, http.StatusOK)
}

// =============================================================================

// queryInt reads an integer query parameter, using the default when the
// parameter is missing.
func queryInt(r *http.Request, name string, def int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q: %w", name, err)
	}

	if n < 0 {
		return 0, errors.New("query parameter " + name + " must not be negative")
	}

	return n, nil
}
