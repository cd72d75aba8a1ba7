// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date            time.Time     `json:"date"`
	MineRate        time.Duration `json:"mine_rate"`        // Target time between blocks, used to retarget the difficulty.
	MiningReward    uint64        `json:"mining_reward"`    // Reward for mining a block.
	StartingBalance uint64        `json:"starting_balance"` // Balance every address starts with.
	RewardAddress   string        `json:"reward_address"`   // Input address marking a mining reward transaction.
}

// Default returns the genesis values used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		Date:            time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		MineRate:        4 * time.Second,
		MiningReward:    50,
		StartingBalance: 1000,
		RewardAddress:   "*--official-mining-reward--*",
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Any value missing from the file
// keeps its default.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis values can run a chain.
func (g Genesis) Validate() error {
	if g.MineRate <= 0 {
		return errors.New("mine rate must be positive")
	}

	if g.MiningReward == 0 {
		return errors.New("mining reward must be positive")
	}

	if g.RewardAddress == "" {
		return errors.New("reward address must be set")
	}

	return nil
}
