// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"crypto/ecdsa"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/txpool"
)

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and peer synchronization.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining()
	SignalCancelMining() (done func())
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerKey   *ecdsa.PrivateKey
	Host       string
	Genesis    genesis.Genesis
	KnownPeers *peer.PeerSet
	PeerClient *peer.Client
	EvHandler  EventHandler
}

// State manages the blockchain. The chain is held as an immutable snapshot
// that is replaced as a whole, readers never see a partial update.
type State struct {
	host      string
	evHandler EventHandler
	mu        sync.Mutex
	chain     atomic.Pointer[[]database.Block]

	genesis    genesis.Genesis
	wallet     *database.Wallet
	pool       *txpool.Pool
	knownPeers *peer.PeerSet
	client     *peer.Client

	Worker Worker
}

// New constructs a new blockchain holding only the genesis block.
func New(cfg Config) (*State, error) {
	if cfg.MinerKey == nil {
		return nil, errors.New("miner key is required")
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	state := State{
		host:      cfg.Host,
		evHandler: ev,

		genesis:    cfg.Genesis,
		pool:       txpool.New(),
		knownPeers: knownPeers,
		client:     cfg.PeerClient,

		// The Worker is replaced by the call to worker.Run.
		Worker: noWorker{},
	}

	// The node's wallet derives its balance from this state.
	state.wallet = database.NewWallet(cfg.MinerKey, &state, cfg.Genesis.StartingBalance)

	chain := []database.Block{database.GenesisBlock()}
	state.chain.Store(&chain)

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// noWorker is used until a worker registers itself.
type noWorker struct{}

func (noWorker) Shutdown()                         {}
func (noWorker) Sync()                             {}
func (noWorker) SignalStartMining()                {}
func (noWorker) SignalCancelMining() (done func()) { return func() {} }
