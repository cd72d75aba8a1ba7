package commands

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// Balances prints the balances derived from the chain. When an address is
// provided only that balance is printed.
func Balances(address string, chain []database.Block, gen genesis.Genesis) error {
	fmt.Printf("LatestBlockHash: %s\n\n", chain[len(chain)-1].Hash)

	if address != "" {
		addr, err := database.ToAddress(address)
		if err != nil {
			return err
		}

		fmt.Printf("Address: %s  Balance: %d\n", addr, database.CalculateBalance(chain, addr, gen.StartingBalance))
		return nil
	}

	balances := database.Balances(chain, gen.StartingBalance)

	addresses := make([]database.Address, 0, len(balances))
	for addr := range balances {
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })

	for _, addr := range addresses {
		fmt.Printf("Address: %s  Balance: %d\n", addr, balances[addr])
	}

	return nil
}
