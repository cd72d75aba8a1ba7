package database

import (
	"crypto/ecdsa"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
)

// Ledger represents the behavior required to derive balances for a wallet.
type Ledger interface {
	RetrieveChain() []Block
}

// Chain is a plain set of blocks that can be used as a Ledger.
type Chain []Block

// RetrieveChain implements the Ledger interface.
func (c Chain) RetrieveChain() []Block {
	return c
}

// =============================================================================

// Wallet holds the keys for an address and signs transactions for it. The
// balance is never stored, it's calculated from the ledger on every call.
type Wallet struct {
	privateKey      *ecdsa.PrivateKey
	address         Address
	publicKey       string
	ledger          Ledger
	startingBalance uint64
}

// NewWallet constructs a wallet for the private key. The ledger can be nil,
// in which case the wallet always has the starting balance.
func NewWallet(privateKey *ecdsa.PrivateKey, ledger Ledger, startingBalance uint64) *Wallet {
	return &Wallet{
		privateKey:      privateKey,
		address:         PublicKeyToAddress(privateKey.PublicKey),
		publicKey:       signature.PublicKeyString(privateKey.PublicKey),
		ledger:          ledger,
		startingBalance: startingBalance,
	}
}

// Address returns the address owned by the wallet.
func (w *Wallet) Address() Address {
	return w.address
}

// PublicKey returns the hex encoded public key of the wallet.
func (w *Wallet) PublicKey() string {
	return w.publicKey
}

// Balance calculates the current balance of the wallet from the ledger.
func (w *Wallet) Balance() uint64 {
	if w.ledger == nil {
		return w.startingBalance
	}

	return CalculateBalance(w.ledger.RetrieveChain(), w.address, w.startingBalance)
}

// Sign signs the value with the wallet's private key.
func (w *Wallet) Sign(value any) (string, error) {
	return signature.Sign(value, w.privateKey)
}

// newInput stamps and signs the output for a transaction.
func (w *Wallet) newInput(output map[Address]uint64, amount uint64) (TransferInput, error) {
	sig, err := w.Sign(output)
	if err != nil {
		return TransferInput{}, err
	}

	input := TransferInput{
		Timestamp: now(),
		Amount:    amount,
		Address:   w.address,
		PublicKey: w.publicKey,
		Signature: sig,
	}

	return input, nil
}
