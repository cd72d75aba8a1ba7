package state

import (
	"sort"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// QueryTxPoolLength returns the current length of the transaction pool.
func (s *State) QueryTxPoolLength() int {
	return s.pool.Count()
}

// QueryChainLength returns the number of blocks in the chain.
func (s *State) QueryChainLength() int {
	return len(s.RetrieveChain())
}

// QueryBalance returns the balance of the address derived from the chain.
func (s *State) QueryBalance(address database.Address) uint64 {
	return database.CalculateBalance(s.RetrieveChain(), address, s.genesis.StartingBalance)
}

// QueryKnownAddresses returns every recipient that shows up in the chain.
func (s *State) QueryKnownAddresses() []database.Address {
	known := make(map[database.Address]struct{})
	for _, block := range s.RetrieveChain() {
		for _, tx := range block.Data {
			for address := range tx.Output {
				known[address] = struct{}{}
			}
		}
	}

	addresses := make([]database.Address, 0, len(known))
	for address := range known {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })

	return addresses
}

// QueryBlocksRange returns the blocks between start and end counting from
// the latest block backwards. The range is clamped to the chain.
func (s *State) QueryBlocksRange(start int, end int) []database.Block {
	chain := s.RetrieveChain()

	start = min(max(start, 0), len(chain))
	end = min(max(end, start), len(chain))

	out := make([]database.Block, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, chain[len(chain)-1-i])
	}

	return out
}
