package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
)

// Values for the genesis block every chain has to start with.
const (
	genesisTimestamp  = 1
	genesisHash       = "genesis"
	genesisDifficulty = 3
)

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Timestamp  uint64 `json:"timestamp"`  // Time the block was mined in nanoseconds.
	LastHash   string `json:"last_hash"`  // Hash of the previous block in the chain.
	Hash       string `json:"hash"`       // Hash over all the other fields of this block.
	Data       []Tx   `json:"data"`       // Transactions recorded in this block.
	Difficulty uint   `json:"difficulty"` // Number of leading zero bits needed to solve the hash.
	Nonce      uint64 `json:"nonce"`      // Value identified to solve the hash solution.
}

// GenesisBlock returns the fixed first block of every chain.
func GenesisBlock() Block {
	return Block{
		Timestamp:  genesisTimestamp,
		LastHash:   genesisHash,
		Hash:       genesisHash,
		Data:       []Tx{},
		Difficulty: genesisDifficulty,
		Nonce:      0,
	}
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlock Block
	Trans     []Tx
	MineRate  time.Duration
	EvHandler func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle. The search has no upper bound, it only
// stops when a solution is found or the context is cancelled.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := safeEvHandler(args.EvHandler)

	ev("database: POW: MINING: started: prevBlk[%s]: numTrans[%d]", args.PrevBlock.Hash, len(args.Trans))
	defer ev("database: POW: MINING: completed")

	// The previous hash and the transactions never change during the search
	// so they are only encoded once.
	hasher := signature.NewHasher(args.PrevBlock.Hash, args.Trans)

	var nonce uint64
	for {
		if nonce > 0 && nonce%1_000_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", nonce)
		}

		// Did we get told the tip we are mining against is gone.
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED: attempts[%d]", nonce)
			return Block{}, ctx.Err()
		}

		timestamp := uint64(time.Now().UTC().UnixNano())
		difficulty := AdjustDifficulty(args.PrevBlock, timestamp, args.MineRate)

		hash := hasher.Sum(timestamp, difficulty, nonce)
		if !signature.IsHashSolved(difficulty, hash) {
			nonce++
			continue
		}

		ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: difficulty[%d]: attempts[%d]", args.PrevBlock.Hash, hash, difficulty, nonce+1)

		nb := Block{
			Timestamp:  timestamp,
			LastHash:   args.PrevBlock.Hash,
			Hash:       hash,
			Data:       args.Trans,
			Difficulty: difficulty,
			Nonce:      nonce,
		}

		return nb, nil
	}
}

// AdjustDifficulty calculates the difficulty for a block mined at the
// specified timestamp. Blocks mined faster than the mine rate raise the
// difficulty by one, slower blocks lower it by one. It never drops below one.
func AdjustDifficulty(prevBlock Block, timestamp uint64, mineRate time.Duration) uint {
	if timestamp < prevBlock.Timestamp || timestamp-prevBlock.Timestamp < uint64(mineRate) {
		return prevBlock.Difficulty + 1
	}

	if prevBlock.Difficulty > 1 {
		return prevBlock.Difficulty - 1
	}

	return 1
}

// ComputeHash recalculates the hash from the recorded fields of the block.
func (b Block) ComputeHash() string {
	return signature.Hash(b.Timestamp, b.LastHash, b.Data, b.Difficulty, b.Nonce)
}

// ValidateBlock takes a block and validates it to be included into the
// blockchain after the previous block.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	ev := safeEvHandler(evHandler)

	ev("database: ValidateBlock: validate: blk[%s]: check: last hash does match previous block", b.Hash)

	if b.LastHash != previousBlock.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrChainLinkage, b.LastHash, previousBlock.Hash)
	}

	ev("database: ValidateBlock: validate: blk[%s]: check: block hash has been solved", b.Hash)

	if !signature.IsHashSolved(b.Difficulty, b.Hash) {
		return fmt.Errorf("%w: hash %s, difficulty %d", ErrProofOfWorkUnmet, b.Hash, b.Difficulty)
	}

	ev("database: ValidateBlock: validate: blk[%s]: check: difficulty only adjusted by one", b.Hash)

	if diff(previousBlock.Difficulty, b.Difficulty) > 1 {
		return fmt.Errorf("%w: parent %d, block %d", ErrDifficultyJump, previousBlock.Difficulty, b.Difficulty)
	}

	ev("database: ValidateBlock: validate: blk[%s]: check: hash matches the block fields", b.Hash)

	if hash := b.ComputeHash(); hash != b.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrHashMismatch, b.Hash, hash)
	}

	return nil
}

// Equal reports whether the two blocks hold the same values. A nil and an
// empty set of transactions are treated the same.
func (b Block) Equal(other Block) bool {
	if b.Timestamp != other.Timestamp ||
		b.LastHash != other.LastHash ||
		b.Hash != other.Hash ||
		b.Difficulty != other.Difficulty ||
		b.Nonce != other.Nonce ||
		len(b.Data) != len(other.Data) {
		return false
	}

	for i := range b.Data {
		if !b.Data[i].Equal(other.Data[i]) {
			return false
		}
	}

	return true
}

// =============================================================================

// diff returns the absolute difference between two difficulties.
func diff(a, b uint) uint {
	if a > b {
		return a - b
	}
	return b - a
}

// safeEvHandler returns an event handler that can always be called.
func safeEvHandler(evHandler func(v string, args ...any)) func(v string, args ...any) {
	if evHandler == nil {
		return func(v string, args ...any) {}
	}
	return evHandler
}
