package database

import "errors"

// Set of errors returned when a block fails validation.
var (
	ErrChainLinkage     = errors.New("block last hash does not match the previous block hash")
	ErrProofOfWorkUnmet = errors.New("block hash does not meet the proof of work requirement")
	ErrDifficultyJump   = errors.New("block difficulty must only adjust by one")
	ErrHashMismatch     = errors.New("block hash does not match the block fields")
)

// Set of errors returned when a chain fails validation or replacement.
var (
	ErrBadGenesis           = errors.New("chain must start with the genesis block")
	ErrNotLonger            = errors.New("incoming chain must be longer")
	ErrInvalidIncomingChain = errors.New("incoming chain is invalid")
)

// Set of errors returned when a transaction fails validation.
var (
	ErrDuplicateTransaction = errors.New("transaction is not unique")
	ErrMultipleRewards      = errors.New("only one mining reward per block")
	ErrInvalidInputAmount   = errors.New("transaction has an invalid input amount")
	ErrInvalidOutputSum     = errors.New("transaction output values do not match the input amount")
	ErrInvalidSignature     = errors.New("transaction signature is invalid")
	ErrInvalidReward        = errors.New("invalid mining reward")
)

// ErrInsufficientBalance is returned when a wallet tries to send more than
// it owns.
var ErrInsufficientBalance = errors.New("amount exceeds balance")
