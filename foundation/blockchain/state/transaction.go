package state

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/txpool"
)

// SubmitTransaction accepts a transaction signed by a wallet for inclusion
// in the next block.
func (s *State) SubmitTransaction(tx database.Tx) error {
	if err := s.validateTransaction(tx); err != nil {
		return err
	}

	s.pool.Upsert(tx)
	s.Worker.SignalStartMining()

	return nil
}

// Transact sends the amount from the node's wallet to the recipient. If the
// wallet already has a transaction waiting to be mined the recipient is
// added to it.
func (s *State) Transact(recipient database.Address, amount uint64) (database.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.pool.ExistingFor(s.wallet.Address())
	switch {
	case exists:
		s.evHandler("state: Transact: update: tx[%s]: to[%s]: amount[%d]", tx, recipient, amount)
		if err := tx.Update(s.wallet, recipient, amount); err != nil {
			return database.Tx{}, err
		}

	default:
		s.evHandler("state: Transact: create: to[%s]: amount[%d]", recipient, amount)
		var err error
		if tx, err = database.NewTx(s.wallet, recipient, amount); err != nil {
			return database.Tx{}, err
		}
	}

	s.pool.Upsert(tx)
	s.Worker.SignalStartMining()

	return tx, nil
}

// =============================================================================

// validateTransaction checks the transaction is properly signed and was
// created against the sender's current balance.
func (s *State) validateTransaction(tx database.Tx) error {
	if tx.IsReward() {
		return fmt.Errorf("%w: tx[%s]: rewards are only created by miners", database.ErrInvalidReward, tx.ID)
	}

	if err := tx.Validate(s.genesis); err != nil {
		return err
	}

	if _, mined := database.TransactionIDs(s.RetrieveChain())[tx.ID]; mined {
		return fmt.Errorf("%w: tx[%s]: already in the chain", database.ErrDuplicateTransaction, tx.ID)
	}

	in := tx.Input.(database.TransferInput)
	if balance := s.QueryBalance(in.Address); balance != in.Amount {
		return fmt.Errorf("%w: tx[%s]: got %d, exp %d", database.ErrInvalidInputAmount, tx.ID, in.Amount, balance)
	}

	return nil
}

// clearMined removes the transactions recorded in the chain from the pool.
// A transaction of this node that was updated while an older version of it
// was being mined is issued again for the amounts the older version did
// not pay. The caller must hold the write lock.
func (s *State) clearMined(chain []database.Block) {
	for _, sup := range s.pool.ClearMined(chain) {
		sender, _ := sup.Pooled.Sender()
		if sender != s.wallet.Address() {
			s.evHandler("state: clearMined: WARNING: dropping tx[%s]: updated by its sender while mined", sup.Pooled)
			continue
		}

		s.reissue(sup)
	}
}

// reissue pays the recipients of the pooled version the difference the
// mined version left out.
func (s *State) reissue(sup txpool.Superseded) {
	sender := s.wallet.Address()
	tx, exists := s.pool.ExistingFor(sender)

	for _, recipient := range slices.Sorted(maps.Keys(sup.Pooled.Output)) {
		if recipient == sender || sup.Pooled.Output[recipient] <= sup.Mined.Output[recipient] {
			continue
		}
		amount := sup.Pooled.Output[recipient] - sup.Mined.Output[recipient]

		var err error
		switch {
		case exists:
			err = tx.Update(s.wallet, recipient, amount)
		default:
			tx, err = database.NewTx(s.wallet, recipient, amount)
			exists = err == nil
		}

		if err != nil {
			s.evHandler("state: reissue: WARNING: tx[%s]: to[%s]: amount[%d]: %s", sup.Pooled, recipient, amount, err)
			continue
		}
		s.evHandler("state: reissue: tx[%s]: to[%s]: amount[%d]", tx, recipient, amount)
	}

	if exists {
		s.pool.Upsert(tx)
	}
}
