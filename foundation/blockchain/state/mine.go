package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ErrStaleTip is returned when a block was mined against a tip that was
// replaced while the mining was taking place.
var ErrStaleTip = errors.New("chain tip changed during mining")

// =============================================================================

// MineNewBlock attempts to create a new block with a proper hash that can
// become the next block in the chain. The block holds the transactions in
// the pool that are still valid plus the reward for this node.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	prevBlock := s.RetrieveLatestBlock()

	s.evHandler("state: MineNewBlock: MINING: select transactions: prevBlk[%s]", prevBlock.Hash)

	trans := s.selectTransactions()
	trans = append(trans, database.NewRewardTx(s.wallet.Address(), s.genesis))

	s.evHandler("state: MineNewBlock: MINING: perform POW: numTrans[%d]", len(trans))

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	block, err := database.POW(ctx, database.POWArgs{
		PrevBlock: prevBlock,
		Trans:     trans,
		MineRate:  s.genesis.MineRate,
		EvHandler: s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.appendBlock(block, prevBlock); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// =============================================================================

// selectTransactions returns the pooled transactions that are valid against
// the current chain. Transactions that went stale are removed from the pool.
func (s *State) selectTransactions() []database.Tx {
	chain := s.RetrieveChain()
	mined := database.TransactionIDs(chain)
	balances := database.Balances(chain, s.genesis.StartingBalance)
	balance := func(address database.Address) uint64 {
		if value, exists := balances[address]; exists {
			return value
		}
		return s.genesis.StartingBalance
	}

	var trans []database.Tx
	for _, tx := range s.pool.Values() {
		if _, exists := mined[tx.ID]; exists {
			s.evHandler("state: selectTransactions: WARNING: dropping mined tx[%s]", tx)
			s.pool.Delete(tx)
			continue
		}

		in, ok := tx.Input.(database.TransferInput)
		if !ok || in.Amount != balance(in.Address) || tx.Validate(s.genesis) != nil {
			s.evHandler("state: selectTransactions: WARNING: dropping stale tx[%s]", tx)
			s.pool.Delete(tx)
			continue
		}

		trans = append(trans, tx)
	}

	return trans
}

// appendBlock adds the block to the end of the chain as long as the chain
// still ends with the block it was mined against.
func (s *State) appendBlock(block database.Block, prevBlock database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := s.RetrieveChain()
	if chain[len(chain)-1].Hash != prevBlock.Hash {
		return fmt.Errorf("%w: mined on %s, tip is %s", ErrStaleTip, prevBlock.Hash, chain[len(chain)-1].Hash)
	}

	if err := block.ValidateBlock(prevBlock, s.evHandler); err != nil {
		return err
	}

	if err := database.ValidateBlockTransactions(chain, block, s.genesis, s.evHandler); err != nil {
		return err
	}

	next := make([]database.Block, len(chain), len(chain)+1)
	copy(next, chain)
	next = append(next, block)
	s.chain.Store(&next)

	s.evHandler("state: appendBlock: blk[%s]: remove mined transactions from the pool", block.Hash)
	s.clearMined([]database.Block{block})

	return nil
}
