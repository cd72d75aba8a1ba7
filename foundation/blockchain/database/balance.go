package database

// CalculateBalance replays the chain to find the balance of the address.
// Every transaction sent by the address resets the balance to what the
// sender kept for itself. Every transaction received in between adds to it.
func CalculateBalance(chain []Block, address Address, startingBalance uint64) uint64 {
	balance := startingBalance

	for _, block := range chain {
		for _, tx := range block.Data {
			balance = applyTx(balance, tx, address)
		}
	}

	return balance
}

// Balances replays the chain and returns the balance of every address that
// shows up in a transaction.
func Balances(chain []Block, startingBalance uint64) map[Address]uint64 {
	sheet := newBalanceSheet(startingBalance)
	for _, block := range chain {
		sheet.applyBlock(block)
	}

	return sheet.balances
}

// =============================================================================

// applyTx applies a single transaction to the balance of an address.
func applyTx(balance uint64, tx Tx, address Address) uint64 {
	if sender, ok := tx.Sender(); ok && sender == address {
		return tx.Output[address]
	}

	if value, exists := tx.Output[address]; exists {
		return balance + value
	}

	return balance
}

// balanceSheet keeps the running balance of every address while the chain
// is walked in order. It gives the same answer as CalculateBalance over the
// blocks applied so far without replaying them again.
type balanceSheet struct {
	startingBalance uint64
	balances        map[Address]uint64
}

// newBalanceSheet constructs an empty balance sheet.
func newBalanceSheet(startingBalance uint64) *balanceSheet {
	return &balanceSheet{
		startingBalance: startingBalance,
		balances:        make(map[Address]uint64),
	}
}

// balance returns the current balance of the address.
func (bs *balanceSheet) balance(address Address) uint64 {
	if balance, exists := bs.balances[address]; exists {
		return balance
	}
	return bs.startingBalance
}

// applyBlock applies every transaction in the block to the addresses it
// touches.
func (bs *balanceSheet) applyBlock(block Block) {
	for _, tx := range block.Data {
		if sender, ok := tx.Sender(); ok {
			bs.balances[sender] = applyTx(bs.balance(sender), tx, sender)
		}

		for address := range tx.Output {
			if sender, ok := tx.Sender(); ok && sender == address {
				continue
			}
			bs.balances[address] = applyTx(bs.balance(address), tx, address)
		}
	}
}
