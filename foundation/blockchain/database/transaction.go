package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Input represents the input side of a transaction. It is either a
// TransferInput signed by a wallet or the RewardInput marker.
type Input interface {
	isInput()
}

// TransferInput is the signed record of the sender of a transaction.
type TransferInput struct {
	Timestamp uint64  `json:"timestamp"`  // Time the input was signed in nanoseconds.
	Amount    uint64  `json:"amount"`     // Balance of the sender when the transaction was created.
	Address   Address `json:"address"`    // Address of the sender.
	PublicKey string  `json:"public_key"` // Public key used to verify the signature.
	Signature string  `json:"signature"`  // Signature over the output of the transaction.
}

func (TransferInput) isInput() {}

// RewardInput marks a transaction as the mining reward for a block.
type RewardInput struct {
	Address string `json:"address"`
}

func (RewardInput) isInput() {}

// =============================================================================

// Tx is the transactional information between a sender and one or more
// recipients.
type Tx struct {
	ID     string             `json:"id"`
	Output map[Address]uint64 `json:"output"`
	Input  Input              `json:"input"`
}

// NewTx constructs a new transaction sending the amount from the wallet to
// the recipient. The remainder of the wallet's balance is returned to it.
func NewTx(w *Wallet, recipient Address, amount uint64) (Tx, error) {
	balance := w.Balance()
	if amount > balance {
		return Tx{}, fmt.Errorf("%w: amount %d, balance %d", ErrInsufficientBalance, amount, balance)
	}

	output := map[Address]uint64{
		w.Address(): balance - amount,
	}
	output[recipient] += amount

	input, err := w.newInput(output, balance)
	if err != nil {
		return Tx{}, err
	}

	tx := Tx{
		ID:     uuid.NewString(),
		Output: output,
		Input:  input,
	}

	return tx, nil
}

// NewRewardTx constructs the transaction that rewards the miner of a block.
func NewRewardTx(miner Address, gen genesis.Genesis) Tx {
	return Tx{
		ID:     uuid.NewString(),
		Output: map[Address]uint64{miner: gen.MiningReward},
		Input:  RewardInput{Address: gen.RewardAddress},
	}
}

// Update adds the amount for the recipient to a transaction that has not been
// mined yet. The amount comes out of what the sender keeps for itself and
// the input is stamped and signed again.
func (tx *Tx) Update(w *Wallet, recipient Address, amount uint64) error {
	in, ok := tx.Input.(TransferInput)
	if !ok || in.Address != w.Address() {
		return errors.New("transaction does not belong to this wallet")
	}

	remaining := tx.Output[w.Address()]
	if amount > remaining {
		return fmt.Errorf("%w: amount %d, remaining %d", ErrInsufficientBalance, amount, remaining)
	}

	output := maps.Clone(tx.Output)
	output[w.Address()] = remaining - amount
	output[recipient] += amount

	input, err := w.newInput(output, in.Amount)
	if err != nil {
		return err
	}

	tx.Output = output
	tx.Input = input

	return nil
}

// Validate checks the transaction is a properly formed mining reward or a
// properly signed transfer whose output adds up to its input.
func (tx Tx) Validate(gen genesis.Genesis) error {
	switch in := tx.Input.(type) {
	case RewardInput:
		if in.Address != gen.RewardAddress {
			return fmt.Errorf("%w: tx[%s]: wrong reward address %q", ErrInvalidReward, tx.ID, in.Address)
		}

		if len(tx.Output) != 1 {
			return fmt.Errorf("%w: tx[%s]: %d outputs", ErrInvalidReward, tx.ID, len(tx.Output))
		}

		for _, value := range tx.Output {
			if value != gen.MiningReward {
				return fmt.Errorf("%w: tx[%s]: got %d, exp %d", ErrInvalidReward, tx.ID, value, gen.MiningReward)
			}
		}

		return nil

	case TransferInput:
		var total uint64
		for _, value := range tx.Output {
			if total+value < total {
				return fmt.Errorf("%w: tx[%s]: output overflows", ErrInvalidOutputSum, tx.ID)
			}
			total += value
		}

		if total != in.Amount {
			return fmt.Errorf("%w: tx[%s]: output %d, input %d", ErrInvalidOutputSum, tx.ID, total, in.Amount)
		}

		if !signature.Verify(tx.Output, in.PublicKey, in.Signature) {
			return fmt.Errorf("%w: tx[%s]", ErrInvalidSignature, tx.ID)
		}

		addr, err := signature.PublicKeyToAddress(in.PublicKey)
		if err != nil || Address(addr) != in.Address {
			return fmt.Errorf("%w: tx[%s]: public key does not own address %s", ErrInvalidSignature, tx.ID, in.Address)
		}

		return nil
	}

	return fmt.Errorf("%w: tx[%s]: missing input", ErrInvalidSignature, tx.ID)
}

// IsReward reports whether this is a mining reward transaction.
func (tx Tx) IsReward() bool {
	_, ok := tx.Input.(RewardInput)
	return ok
}

// Sender returns the address of the sender for a transfer.
func (tx Tx) Sender() (Address, bool) {
	in, ok := tx.Input.(TransferInput)
	if !ok {
		return "", false
	}
	return in.Address, true
}

// Equal reports whether the two transactions hold the same values.
func (tx Tx) Equal(other Tx) bool {
	return tx.ID == other.ID && maps.Equal(tx.Output, other.Output) && tx.Input == other.Input
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	switch in := tx.Input.(type) {
	case RewardInput:
		return fmt.Sprintf("%s:reward", tx.ID)
	case TransferInput:
		return fmt.Sprintf("%s:%s", tx.ID, in.Address)
	}
	return tx.ID
}

// =============================================================================

// UnmarshalJSON decodes the input into the right variant. A reward input only
// carries the address field.
func (tx *Tx) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string             `json:"id"`
		Output map[Address]uint64 `json:"output"`
		Input  json.RawMessage    `json:"input"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw.Input, &fields); err != nil {
		return fmt.Errorf("tx[%s]: decoding input: %w", raw.ID, err)
	}

	var input Input
	switch _, hasAddress := fields["address"]; {
	case fields == nil:
		return fmt.Errorf("tx[%s]: missing input", raw.ID)

	case len(fields) == 1 && hasAddress:
		var in RewardInput
		if err := json.Unmarshal(raw.Input, &in); err != nil {
			return fmt.Errorf("tx[%s]: decoding reward input: %w", raw.ID, err)
		}
		input = in

	default:
		var in TransferInput
		if err := json.Unmarshal(raw.Input, &in); err != nil {
			return fmt.Errorf("tx[%s]: decoding transfer input: %w", raw.ID, err)
		}
		input = in
	}

	tx.ID = raw.ID
	tx.Output = raw.Output
	tx.Input = input

	return nil
}

// =============================================================================

// now returns the current time in nanoseconds.
func now() uint64 {
	return uint64(time.Now().UTC().UnixNano())
}
