package state

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ReplaceChain replaces the local chain with the candidate when the
// candidate is longer and valid. Any mining in progress is cancelled and
// restarted on top of the new chain.
func (s *State) ReplaceChain(candidate []database.Block) error {
	s.evHandler("state: ReplaceChain: started: blocks[%d]", len(candidate))
	defer s.evHandler("state: ReplaceChain: completed")

	if len(candidate) <= s.QueryChainLength() {
		return fmt.Errorf("%w: got %d, have %d", database.ErrNotLonger, len(candidate), s.QueryChainLength())
	}

	if err := database.ValidateChain(candidate, s.genesis, s.evHandler); err != nil {
		return fmt.Errorf("%w: %w", database.ErrInvalidIncomingChain, err)
	}

	// If the runMiningOperation function is being executed it needs to stop
	// immediately. The G executing runMiningOperation will not return from the
	// function until done is called. That allows this function to complete
	// its state changes before a new mining operation takes place.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: ReplaceChain: signal runMiningOperation to terminate")
		done()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	// The chain could have grown while the candidate was validated.
	if len(candidate) <= s.QueryChainLength() {
		return fmt.Errorf("%w: got %d, have %d", database.ErrNotLonger, len(candidate), s.QueryChainLength())
	}

	chain := make([]database.Block, len(candidate))
	copy(chain, candidate)
	s.chain.Store(&chain)

	s.evHandler("state: ReplaceChain: remove mined transactions from the pool")
	s.clearMined(chain)

	if s.pool.Count() > 0 {
		s.Worker.SignalStartMining()
	}

	return nil
}
