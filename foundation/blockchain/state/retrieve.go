package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns the current snapshot of the chain. The snapshot is
// never modified, callers must not modify it either.
func (s *State) RetrieveChain() []database.Block {
	return *s.chain.Load()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	chain := s.RetrieveChain()
	return chain[len(chain)-1]
}

// RetrieveWallet returns the node's wallet.
func (s *State) RetrieveWallet() *database.Wallet {
	return s.wallet
}

// RetrieveTxPool returns a copy of the transactions waiting to be mined.
func (s *State) RetrieveTxPool() []database.Tx {
	return s.pool.Values()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}
