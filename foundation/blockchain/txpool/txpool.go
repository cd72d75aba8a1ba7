// Package txpool maintains the transactions waiting to be mined.
package txpool

import (
	"sort"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Pool represents a cache of transactions keyed by transaction id. A sender
// has at most one transaction in the pool, new recipients are added to it
// with an update.
type Pool struct {
	pool map[string]database.Tx
	mu   sync.RWMutex
}

// New constructs a new transaction pool.
func New() *Pool {
	return &Pool{
		pool: make(map[string]database.Tx),
	}
}

// Count returns the current number of transactions in the pool.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.pool)
}

// Upsert adds or replaces a transaction in the pool.
func (p *Pool) Upsert(tx database.Tx) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pool[tx.ID] = tx

	return len(p.pool)
}

// Delete removes a transaction from the pool.
func (p *Pool) Delete(tx database.Tx) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.pool, tx.ID)
}

// ExistingFor returns the transaction in the pool sent by the address.
func (p *Pool) ExistingFor(address database.Address) (database.Tx, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, tx := range p.pool {
		if sender, ok := tx.Sender(); ok && sender == address {
			return tx, true
		}
	}

	return database.Tx{}, false
}

// Values returns a copy of the transactions in the pool ordered by the time
// they were signed.
func (p *Pool) Values() []database.Tx {
	p.mu.RLock()
	trans := make([]database.Tx, 0, len(p.pool))
	for _, tx := range p.pool {
		trans = append(trans, tx)
	}
	p.mu.RUnlock()

	sort.Slice(trans, func(i, j int) bool {
		return timestamp(trans[i]) < timestamp(trans[j])
	})

	return trans
}

// Superseded pairs a pooled transaction with the older version of it that
// was mined.
type Superseded struct {
	Pooled database.Tx
	Mined  database.Tx
}

// ClearMined removes every transaction already recorded in the chain. The
// pooled transactions that were updated after the mined version was taken
// are removed too and returned, so the caller can issue what was not paid.
func (p *Pool) ClearMined(chain []database.Block) []Superseded {
	p.mu.Lock()
	defer p.mu.Unlock()

	var superseded []Superseded
	for _, block := range chain {
		for _, tx := range block.Data {
			pooled, exists := p.pool[tx.ID]
			if !exists {
				continue
			}

			if !pooled.Equal(tx) {
				superseded = append(superseded, Superseded{Pooled: pooled, Mined: tx})
			}
			delete(p.pool, tx.ID)
		}
	}

	return superseded
}

// Truncate clears all the transactions from the pool.
func (p *Pool) Truncate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pool = make(map[string]database.Tx)
}

// =============================================================================

// timestamp returns the signing time of a transfer. Rewards never sit in
// the pool but sort first if they do.
func timestamp(tx database.Tx) uint64 {
	if in, ok := tx.Input.(database.TransferInput); ok {
		return in.Timestamp
	}
	return 0
}
