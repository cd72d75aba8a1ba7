package genesis_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	t.Log("Given the need to load the genesis file.")
	{
		t.Logf("\tTest 0:\tWhen handling the project genesis file.")
		{
			gen, err := genesis.Load("../../../zblock/genesis.json")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the genesis file: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the genesis file.", success)

			if gen != genesis.Default() {
				t.Fatalf("\t%s\tTest 0:\tShould match the default values: got %+v", failed, gen)
			}
			t.Logf("\t%s\tTest 0:\tShould match the default values.", success)
		}

		t.Logf("\tTest 1:\tWhen handling a partial genesis file.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(`{"mining_reward": 10}`), 0600); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to write the file: %v", failed, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to load the genesis file: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to load the genesis file.", success)

			if gen.MiningReward != 10 {
				t.Fatalf("\t%s\tTest 1:\tShould override the mining reward: got %d", failed, gen.MiningReward)
			}
			t.Logf("\t%s\tTest 1:\tShould override the mining reward.", success)

			if gen.MineRate != 4*time.Second || gen.StartingBalance != 1000 {
				t.Fatalf("\t%s\tTest 1:\tShould keep the defaults for missing values: got %+v", failed, gen)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the defaults for missing values.", success)
		}

		t.Logf("\tTest 2:\tWhen handling an invalid genesis file.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(`{"mine_rate": 0}`), 0600); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to write the file: %v", failed, err)
			}

			if _, err := genesis.Load(path); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject a zero mine rate.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject a zero mine rate.", success)

			if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould fail on a missing file.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould fail on a missing file.", success)
		}
	}
}

func Test_Validate(t *testing.T) {
	tt := []struct {
		name   string
		mutate func(g *genesis.Genesis)
		valid  bool
	}{
		{"default", func(g *genesis.Genesis) {}, true},
		{"negative-mine-rate", func(g *genesis.Genesis) { g.MineRate = -time.Second }, false},
		{"no-reward", func(g *genesis.Genesis) { g.MiningReward = 0 }, false},
		{"no-reward-address", func(g *genesis.Genesis) { g.RewardAddress = "" }, false},
		{"no-starting-balance", func(g *genesis.Genesis) { g.StartingBalance = 0 }, true},
	}

	t.Log("Given the need to validate genesis values.")
	{
		for testID, test := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %s.", testID, test.name)
				{
					gen := genesis.Default()
					test.mutate(&gen)

					err := gen.Validate()
					if (err == nil) != test.valid {
						t.Fatalf("\t%s\tTest %d:\tShould get valid=%v: err %v", failed, testID, test.valid, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get valid=%v.", success, testID, test.valid)
				}
			}

			t.Run(test.name, f)
		}
	}
}
