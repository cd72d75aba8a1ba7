package commands

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// Transactions prints the transactions recorded in the chain. When an
// address is provided only the transactions touching it are printed.
func Transactions(address string, chain []database.Block) error {
	for i, block := range chain {
		for _, tx := range block.Data {
			sender, _ := tx.Sender()
			if _, received := tx.Output[database.Address(address)]; address != "" && string(sender) != address && !received {
				continue
			}

			fmt.Printf("Block: %d  Tx: %s\n", i, tx)
			for addr, value := range tx.Output {
				fmt.Printf("\t%s: %d\n", addr, value)
			}
		}
	}

	return nil
}

// Validate runs the full set of chain rules against the chain.
func Validate(chain []database.Block, gen genesis.Genesis) error {
	if err := database.ValidateChain(chain, gen, nil); err != nil {
		return err
	}

	fmt.Printf("Chain is valid: blocks[%d]\n", len(chain))
	return nil
}
