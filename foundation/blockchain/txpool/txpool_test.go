package txpool_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/txpool"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newWallet(t *testing.T, hexKey string) *database.Wallet {
	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	return database.NewWallet(pk, nil, 1000)
}

func TestPool(t *testing.T) {
	kennedy := newWallet(t, "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	miner := newWallet(t, "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0")

	const to = database.Address("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

	t.Log("Given the need to validate the transaction pool api.")
	{
		pool := txpool.New()

		tx1, err := database.NewTx(kennedy, to, 10)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		tx2, err := database.NewTx(miner, to, 20)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}

		pool.Upsert(tx1)
		if n := pool.Upsert(tx2); n != 2 {
			t.Fatalf("\t%s\tShould have two transactions, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould have two transactions.", success)

		got, exists := pool.ExistingFor(kennedy.Address())
		if !exists || got.ID != tx1.ID {
			t.Fatalf("\t%s\tShould find the transaction for the sender.", failed)
		}
		t.Logf("\t%s\tShould find the transaction for the sender.", success)

		if err := got.Update(kennedy, miner.Address(), 5); err != nil {
			t.Fatalf("\t%s\tShould be able to update the transaction: %s", failed, err)
		}
		if n := pool.Upsert(got); n != 2 {
			t.Fatalf("\t%s\tShould replace the updated transaction, got %d.", failed, n)
		}
		t.Logf("\t%s\tShould replace the updated transaction.", success)

		values := pool.Values()
		if len(values) != 2 || values[0].ID != tx2.ID {
			t.Fatalf("\t%s\tShould order the transactions by signing time.", failed)
		}
		t.Logf("\t%s\tShould order the transactions by signing time.", success)

		if _, exists := pool.ExistingFor(to); exists {
			t.Fatalf("\t%s\tShould not find a transaction for a recipient.", failed)
		}
		t.Logf("\t%s\tShould not find a transaction for a recipient.", success)

		superseded := pool.ClearMined([]database.Block{{Data: []database.Tx{tx2}}})
		if pool.Count() != 1 || len(superseded) != 0 {
			t.Fatalf("\t%s\tShould remove the mined transaction, got %d.", failed, pool.Count())
		}
		t.Logf("\t%s\tShould remove the mined transaction.", success)

		// tx1 is the version signed before the update held by the pool.
		superseded = pool.ClearMined([]database.Block{{Data: []database.Tx{tx1}}})
		if pool.Count() != 0 {
			t.Fatalf("\t%s\tShould remove the older mined version, got %d.", failed, pool.Count())
		}
		t.Logf("\t%s\tShould remove the older mined version.", success)

		if len(superseded) != 1 || !superseded[0].Pooled.Equal(got) || !superseded[0].Mined.Equal(tx1) {
			t.Fatalf("\t%s\tShould report the pooled update that was not mined: %v", failed, superseded)
		}
		t.Logf("\t%s\tShould report the pooled update that was not mined.", success)

		pool.Upsert(tx1)

		pool.Truncate()
		if pool.Count() != 0 {
			t.Fatalf("\t%s\tShould be empty after truncate.", failed)
		}
		t.Logf("\t%s\tShould be empty after truncate.", success)
	}
}
