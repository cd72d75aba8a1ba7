package database_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	senderHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	minerHexKey  = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	recipient    = database.Address("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	other        = database.Address("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")
)

// =============================================================================

func newWallet(t *testing.T, hexKey string, ledger database.Ledger) *database.Wallet {
	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	return database.NewWallet(pk, ledger, genesis.Default().StartingBalance)
}

func mine(t *testing.T, prev database.Block, trans []database.Tx) database.Block {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	block, err := database.POW(ctx, database.POWArgs{
		PrevBlock: prev,
		Trans:     trans,
		MineRate:  genesis.Default().MineRate,
	})
	if err != nil {
		t.Fatalf("Should be able to mine a block: %s", err)
	}

	return block
}

// =============================================================================

func Test_MineBlock(t *testing.T) {
	t.Log("Given the need to mine a block on top of the genesis block.")
	{
		gen := genesis.Default()
		genesisBlock := database.GenesisBlock()
		reward := database.NewRewardTx(recipient, gen)

		block := mine(t, genesisBlock, []database.Tx{reward})

		if block.LastHash != genesisBlock.Hash {
			t.Fatalf("\t%s\tShould link the block to the genesis block: got %s", failed, block.LastHash)
		}
		t.Logf("\t%s\tShould link the block to the genesis block.", success)

		if err := block.ValidateBlock(genesisBlock, nil); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the mined block: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the mined block.", success)

		if block.Difficulty != genesisBlock.Difficulty-1 {
			t.Fatalf("\t%s\tShould lower the difficulty after a slow block: got %d", failed, block.Difficulty)
		}
		t.Logf("\t%s\tShould lower the difficulty after a slow block.", success)

		next := mine(t, block, nil)
		if err := next.ValidateBlock(block, nil); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the next block: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the next block.", success)

		if next.Difficulty != block.Difficulty+1 {
			t.Fatalf("\t%s\tShould raise the difficulty after a fast block: got %d", failed, next.Difficulty)
		}
		t.Logf("\t%s\tShould raise the difficulty after a fast block.", success)
	}
}

func Test_MineCancel(t *testing.T) {
	t.Log("Given the need to stop mining when the tip is superseded.")
	{
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := database.POW(ctx, database.POWArgs{
			PrevBlock: database.GenesisBlock(),
			MineRate:  genesis.Default().MineRate,
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould get back a cancelled error: %v", failed, err)
		}
		t.Logf("\t%s\tShould get back a cancelled error.", success)
	}
}

func Test_AdjustDifficulty(t *testing.T) {
	mineRate := 4 * time.Second

	tt := []struct {
		name       string
		difficulty uint
		elapsed    time.Duration
		exp        uint
	}{
		{"fast", 3, time.Second, 4},
		{"just-under", 3, mineRate - 1, 4},
		{"at-rate", 3, mineRate, 2},
		{"slow", 3, time.Minute, 2},
		{"floor", 1, time.Minute, 1},
		{"floor-from-zero", 0, time.Minute, 1},
	}

	t.Log("Given the need to retarget the difficulty.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				prev := database.Block{Timestamp: uint64(time.Hour), Difficulty: tst.difficulty}

				got := database.AdjustDifficulty(prev, prev.Timestamp+uint64(tst.elapsed), mineRate)
				if got != tst.exp {
					t.Fatalf("\t%s\tTest %d:\tShould get difficulty %d, got %d.", failed, testID, tst.exp, got)
				}
				t.Logf("\t%s\tTest %d:\tShould get difficulty %d.", success, testID, tst.exp)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ValidateBlock(t *testing.T) {
	genesisBlock := database.GenesisBlock()
	block := mine(t, genesisBlock, []database.Tx{database.NewRewardTx(recipient, genesis.Default())})

	tt := []struct {
		name   string
		tamper func(b database.Block) database.Block
		exp    error
	}{
		{
			name: "last-hash",
			tamper: func(b database.Block) database.Block {
				b.LastHash = "evil"
				return b
			},
			exp: database.ErrChainLinkage,
		},
		{
			name: "proof-of-work",
			tamper: func(b database.Block) database.Block {
				b.Hash = "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
				return b
			},
			exp: database.ErrProofOfWorkUnmet,
		},
		{
			name: "difficulty-jump",
			tamper: func(b database.Block) database.Block {
				b.Difficulty = 0
				return b
			},
			exp: database.ErrDifficultyJump,
		},
		{
			name: "hash-mismatch",
			tamper: func(b database.Block) database.Block {
				b.Nonce++
				return b
			},
			exp: database.ErrHashMismatch,
		},
	}

	t.Log("Given the need to reject a tampered block.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := tst.tamper(block).ValidateBlock(genesisBlock, nil)
				if !errors.Is(err, tst.exp) {
					t.Fatalf("\t%s\tTest %d:\tShould get %q, got %v.", failed, testID, tst.exp, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get %q.", success, testID, tst.exp)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ValidateChain(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to validate a chain of blocks.")
	{
		genesisBlock := database.GenesisBlock()
		b1 := mine(t, genesisBlock, []database.Tx{database.NewRewardTx(recipient, gen)})

		if err := database.ValidateChain([]database.Block{genesisBlock}, gen, nil); err != nil {
			t.Fatalf("\t%s\tShould accept a chain with only the genesis block: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept a chain with only the genesis block.", success)

		if err := database.ValidateChain([]database.Block{genesisBlock, b1}, gen, nil); err != nil {
			t.Fatalf("\t%s\tShould accept a mined chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept a mined chain.", success)

		bad := b1
		bad.LastHash = "evil"
		if err := database.ValidateChain([]database.Block{genesisBlock, bad}, gen, nil); !errors.Is(err, database.ErrChainLinkage) {
			t.Fatalf("\t%s\tShould reject a chain with a broken link: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a chain with a broken link.", success)

		badGenesis := genesisBlock
		badGenesis.Hash = "evil"
		if err := database.ValidateChain([]database.Block{badGenesis, b1}, gen, nil); !errors.Is(err, database.ErrBadGenesis) {
			t.Fatalf("\t%s\tShould reject a chain with a bad genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a chain with a bad genesis block.", success)

		if err := database.ValidateChain(nil, gen, nil); !errors.Is(err, database.ErrBadGenesis) {
			t.Fatalf("\t%s\tShould reject an empty chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an empty chain.", success)
	}
}

func Test_Transactions(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to create and validate transactions.")
	{
		sender := newWallet(t, senderHexKey, nil)

		tx, err := database.NewTx(sender, recipient, 40)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to create a transaction.", success)

		if tx.Output[recipient] != 40 || tx.Output[sender.Address()] != 960 {
			t.Fatalf("\t%s\tShould have the right outputs: %v", failed, tx.Output)
		}
		t.Logf("\t%s\tShould have the right outputs.", success)

		if err := tx.Validate(gen); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the transaction: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the transaction.", success)

		forged := tx
		in := forged.Input.(database.TransferInput)
		in.PublicKey = newWallet(t, minerHexKey, nil).PublicKey()
		forged.Input = in
		if err := forged.Validate(gen); !errors.Is(err, database.ErrInvalidSignature) {
			t.Fatalf("\t%s\tShould reject a different public key: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a different public key.", success)

		inflated := tx
		inflated.Output = map[database.Address]uint64{recipient: 40, sender.Address(): 9960}
		if err := inflated.Validate(gen); !errors.Is(err, database.ErrInvalidOutputSum) {
			t.Fatalf("\t%s\tShould reject outputs that don't add up: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject outputs that don't add up.", success)

		if _, err := database.NewTx(sender, recipient, 1001); !errors.Is(err, database.ErrInsufficientBalance) {
			t.Fatalf("\t%s\tShould reject sending more than the balance: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject sending more than the balance.", success)
	}
}

func Test_UpdateTransaction(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to add recipients to a pending transaction.")
	{
		sender := newWallet(t, senderHexKey, nil)

		tx, err := database.NewTx(sender, recipient, 40)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		firstSig := tx.Input.(database.TransferInput).Signature

		if err := tx.Update(sender, other, 60); err != nil {
			t.Fatalf("\t%s\tShould be able to update the transaction: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to update the transaction.", success)

		if err := tx.Update(sender, recipient, 10); err != nil {
			t.Fatalf("\t%s\tShould be able to update an existing recipient: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to update an existing recipient.", success)

		exp := map[database.Address]uint64{recipient: 50, other: 60, sender.Address(): 890}
		for address, value := range exp {
			if tx.Output[address] != value {
				t.Fatalf("\t%s\tShould have %d for %s, got %d.", failed, value, address, tx.Output[address])
			}
		}
		t.Logf("\t%s\tShould have the right outputs.", success)

		if tx.Input.(database.TransferInput).Signature == firstSig {
			t.Fatalf("\t%s\tShould sign the transaction again.", failed)
		}
		t.Logf("\t%s\tShould sign the transaction again.", success)

		if err := tx.Validate(gen); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the updated transaction: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the updated transaction.", success)

		if err := tx.Update(sender, other, 891); !errors.Is(err, database.ErrInsufficientBalance) {
			t.Fatalf("\t%s\tShould reject sending more than what remains: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject sending more than what remains.", success)
	}
}

func Test_RewardTransaction(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to validate mining rewards.")
	{
		reward := database.NewRewardTx(recipient, gen)
		if err := reward.Validate(gen); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the reward: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the reward.", success)

		reward.Output[recipient] = gen.MiningReward + 1
		if err := reward.Validate(gen); !errors.Is(err, database.ErrInvalidReward) {
			t.Fatalf("\t%s\tShould reject an inflated reward: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an inflated reward.", success)

		data, err := json.Marshal(database.NewRewardTx(recipient, gen))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the reward: %s", failed, err)
		}

		var decoded database.Tx
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the reward: %s", failed, err)
		}

		if !decoded.IsReward() {
			t.Fatalf("\t%s\tShould decode the reward marker: %s", failed, string(data))
		}
		t.Logf("\t%s\tShould decode the reward marker.", success)
	}
}

func Test_CalculateBalance(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to calculate balances from the chain.")
	{
		chain := database.Chain{database.GenesisBlock()}
		sender := newWallet(t, senderHexKey, &chain)
		miner := newWallet(t, minerHexKey, &chain)

		tx, err := database.NewTx(sender, recipient, 40)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		chain = append(chain, mine(t, chain[len(chain)-1], []database.Tx{tx, database.NewRewardTx(miner.Address(), gen)}))

		if got := sender.Balance(); got != 960 {
			t.Fatalf("\t%s\tShould have 960 for the sender, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould have 960 for the sender.", success)

		if got := database.CalculateBalance(chain, recipient, gen.StartingBalance); got != 1040 {
			t.Fatalf("\t%s\tShould have 1040 for the recipient, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould have 1040 for the recipient.", success)

		if got := miner.Balance(); got != 1050 {
			t.Fatalf("\t%s\tShould have 1050 for the miner, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould have 1050 for the miner.", success)

		// The miner pays the sender, then the sender sends again which
		// resets its balance to what it kept.
		pay, err := database.NewTx(miner, sender.Address(), 100)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		chain = append(chain, mine(t, chain[len(chain)-1], []database.Tx{pay}))

		if got := sender.Balance(); got != 1060 {
			t.Fatalf("\t%s\tShould add incoming credits, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould add incoming credits.", success)

		again, err := database.NewTx(sender, other, 60)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		chain = append(chain, mine(t, chain[len(chain)-1], []database.Tx{again}))

		if got := sender.Balance(); got != 1000 {
			t.Fatalf("\t%s\tShould reset the balance on an outgoing transaction, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould reset the balance on an outgoing transaction.", success)

		balances := database.Balances(chain, gen.StartingBalance)
		for _, address := range []database.Address{sender.Address(), miner.Address(), recipient, other} {
			if exp := database.CalculateBalance(chain, address, gen.StartingBalance); balances[address] != exp {
				t.Fatalf("\t%s\tShould match the replayed balance for %s: got %d, exp %d.", failed, address, balances[address], exp)
			}
		}
		t.Logf("\t%s\tShould match the replayed balance for every address.", success)

		if err := database.ValidateChain(chain, gen, nil); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the chain.", success)
	}
}

func Test_ValidateTransactionChain(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to reject an invalid set of transactions.")
	{
		genesisBlock := database.GenesisBlock()
		sender := newWallet(t, senderHexKey, database.Chain{genesisBlock})

		t.Logf("\tTest 0:\tWhen a block holds two mining rewards.")
		{
			b1 := mine(t, genesisBlock, []database.Tx{
				database.NewRewardTx(recipient, gen),
				database.NewRewardTx(recipient, gen),
			})

			err := database.ValidateTransactionChain([]database.Block{genesisBlock, b1}, gen, nil)
			if !errors.Is(err, database.ErrMultipleRewards) {
				t.Fatalf("\t%s\tTest 0:\tShould get %q, got %v.", failed, database.ErrMultipleRewards, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get %q.", success, database.ErrMultipleRewards)
		}

		t.Logf("\tTest 1:\tWhen a transaction shows up in two blocks.")
		{
			tx, err := database.NewTx(sender, recipient, 40)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to create a transaction: %s", failed, err)
			}

			b1 := mine(t, genesisBlock, []database.Tx{tx})
			b2 := mine(t, b1, []database.Tx{tx})

			err = database.ValidateTransactionChain([]database.Block{genesisBlock, b1, b2}, gen, nil)
			if !errors.Is(err, database.ErrDuplicateTransaction) {
				t.Fatalf("\t%s\tTest 1:\tShould get %q, got %v.", failed, database.ErrDuplicateTransaction, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get %q.", success, database.ErrDuplicateTransaction)
		}

		t.Logf("\tTest 2:\tWhen a transaction claims the wrong balance.")
		{
			tx, err := database.NewTx(sender, recipient, 40)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to create a transaction: %s", failed, err)
			}

			// The second transaction is signed against the genesis balance
			// after the first one was already mined.
			stale, err := database.NewTx(sender, other, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to create a transaction: %s", failed, err)
			}

			b1 := mine(t, genesisBlock, []database.Tx{tx})
			b2 := mine(t, b1, []database.Tx{stale})

			err = database.ValidateTransactionChain([]database.Block{genesisBlock, b1, b2}, gen, nil)
			if !errors.Is(err, database.ErrInvalidInputAmount) {
				t.Fatalf("\t%s\tTest 2:\tShould get %q, got %v.", failed, database.ErrInvalidInputAmount, err)
			}
			t.Logf("\t%s\tTest 2:\tShould get %q.", success, database.ErrInvalidInputAmount)
		}

		t.Logf("\tTest 3:\tWhen a transaction was tampered with.")
		{
			tx, err := database.NewTx(sender, recipient, 40)
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to create a transaction: %s", failed, err)
			}
			tx.Output = map[database.Address]uint64{recipient: 900, sender.Address(): 100}

			b1 := mine(t, genesisBlock, []database.Tx{tx})

			err = database.ValidateTransactionChain([]database.Block{genesisBlock, b1}, gen, nil)
			if !errors.Is(err, database.ErrInvalidSignature) {
				t.Fatalf("\t%s\tTest 3:\tShould get %q, got %v.", failed, database.ErrInvalidSignature, err)
			}
			t.Logf("\t%s\tTest 3:\tShould get %q.", success, database.ErrInvalidSignature)
		}
	}
}

func Test_BlockJSON(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to move a chain across the wire.")
	{
		genesisBlock := database.GenesisBlock()
		sender := newWallet(t, senderHexKey, database.Chain{genesisBlock})

		tx, err := database.NewTx(sender, recipient, 40)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}

		chain := []database.Block{genesisBlock}
		chain = append(chain, mine(t, genesisBlock, []database.Tx{tx, database.NewRewardTx(recipient, gen)}))

		data, err := json.Marshal(chain)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the chain: %s", failed, err)
		}

		var decoded []database.Block
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to unmarshal the chain.", success)

		if err := database.ValidateChain(decoded, gen, nil); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the decoded chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the decoded chain.", success)
	}
}
