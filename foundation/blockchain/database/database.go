// Package database handles the lower level support for the blockchain: the
// blocks and the proof of work that secures them, the transactions they
// carry, and the rules a chain of blocks must follow to be valid.
package database

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// ValidateChain validates a full chain of blocks. The chain must start with
// the genesis block, every block must be valid against its parent and the
// set of transactions must be valid as a whole.
func ValidateChain(chain []Block, gen genesis.Genesis, evHandler func(v string, args ...any)) error {
	ev := safeEvHandler(evHandler)

	ev("database: ValidateChain: started: blocks[%d]", len(chain))
	defer ev("database: ValidateChain: completed")

	if len(chain) == 0 || !chain[0].Equal(GenesisBlock()) {
		return ErrBadGenesis
	}

	for i := 1; i < len(chain); i++ {
		if err := chain[i].ValidateBlock(chain[i-1], ev); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
	}

	return ValidateTransactionChain(chain, gen, ev)
}

// ValidateTransactionChain enforces the rules of a chain composed of blocks
// of transactions:
//   - each transaction must only appear once in the chain
//   - there can only be one mining reward per block
//   - the input amount must match the sender's balance before the block
//   - each transaction must be valid
func ValidateTransactionChain(chain []Block, gen genesis.Genesis, evHandler func(v string, args ...any)) error {
	ev := safeEvHandler(evHandler)
	tv := newTxValidator(gen)

	for i, block := range chain {
		if err := tv.validateBlock(i, block, ev); err != nil {
			return err
		}
	}

	return nil
}

// ValidateBlockTransactions applies the transaction chain rules to a block
// that is about to be appended to a chain that is already valid.
func ValidateBlockTransactions(chain []Block, block Block, gen genesis.Genesis, evHandler func(v string, args ...any)) error {
	ev := safeEvHandler(evHandler)
	tv := newTxValidator(gen)

	for _, b := range chain {
		tv.record(b)
	}

	return tv.validateBlock(len(chain), block, ev)
}

// TransactionIDs returns the set of transaction ids recorded in the chain.
func TransactionIDs(chain []Block) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, block := range chain {
		for _, tx := range block.Data {
			ids[tx.ID] = struct{}{}
		}
	}

	return ids
}

// =============================================================================

// txValidator walks blocks in order keeping the ids seen so far and the
// balances before the block being validated.
type txValidator struct {
	gen   genesis.Genesis
	seen  map[string]struct{}
	sheet *balanceSheet
}

func newTxValidator(gen genesis.Genesis) *txValidator {
	return &txValidator{
		gen:   gen,
		seen:  make(map[string]struct{}),
		sheet: newBalanceSheet(gen.StartingBalance),
	}
}

// record adds a block that is already known to be valid.
func (tv *txValidator) record(block Block) {
	for _, tx := range block.Data {
		tv.seen[tx.ID] = struct{}{}
	}
	tv.sheet.applyBlock(block)
}

// validateBlock checks the transactions of the block at index i and records
// the block when it's valid.
func (tv *txValidator) validateBlock(i int, block Block, ev func(v string, args ...any)) error {
	var hasReward bool

	for _, tx := range block.Data {
		ev("database: ValidateTransactionChain: validate: blk[%d]: tx[%s]", i, tx)

		if _, exists := tv.seen[tx.ID]; exists {
			return fmt.Errorf("block[%d]: %w: tx[%s]", i, ErrDuplicateTransaction, tx.ID)
		}
		tv.seen[tx.ID] = struct{}{}

		switch in := tx.Input.(type) {
		case RewardInput:
			if hasReward {
				return fmt.Errorf("block[%d]: %w: block %s", i, ErrMultipleRewards, block.Hash)
			}
			hasReward = true

		case TransferInput:

			// The sheet only holds the blocks before this one.
			if balance := tv.sheet.balance(in.Address); balance != in.Amount {
				return fmt.Errorf("block[%d]: %w: tx[%s]: got %d, exp %d", i, ErrInvalidInputAmount, tx.ID, in.Amount, balance)
			}
		}

		if err := tx.Validate(tv.gen); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
	}

	tv.sheet.applyBlock(block)

	return nil
}
