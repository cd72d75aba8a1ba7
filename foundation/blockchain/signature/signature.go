// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// separator joins the canonical forms before digesting. A compact JSON
// encoding never contains a raw newline, so the joined form is unambiguous.
const separator = "\n"

// =============================================================================

// Hash returns a unique string for the set of values. The order of the values
// does not matter, the same set in any order produces the same hash.
func Hash(values ...any) string {
	strs := make([]string, len(values))
	for i, value := range values {
		strs[i] = canonical(value)
	}

	return digest(strs)
}

// Hasher produces hashes for a set of values where some of the values never
// change between calls. The fixed values are encoded once, which keeps the
// mining loop from encoding the block data on every attempt.
type Hasher struct {
	fixed []string
}

// NewHasher constructs a hasher with the values that stay the same.
func NewHasher(fixed ...any) Hasher {
	strs := make([]string, len(fixed))
	for i, value := range fixed {
		strs[i] = canonical(value)
	}

	return Hasher{fixed: strs}
}

// Sum returns the same hash Hash would return for the fixed values combined
// with the specified values.
func (h Hasher) Sum(values ...any) string {
	strs := make([]string, len(h.fixed), len(h.fixed)+len(values))
	copy(strs, h.fixed)

	for _, value := range values {
		strs = append(strs, canonical(value))
	}

	return digest(strs)
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// The first difficulty bits of the hash need to be zero.
func IsHashSolved(difficulty uint, hash string) bool {
	data, err := hexutil.Decode(hash)
	if err != nil {
		return false
	}

	if difficulty > uint(len(data))*8 {
		return false
	}

	full := difficulty / 8
	for _, b := range data[:full] {
		if b != 0 {
			return false
		}
	}

	rem := difficulty % 8
	if rem == 0 {
		return true
	}

	return data[full]>>(8-rem) == 0
}

// =============================================================================

// Sign uses the specified private key to sign the data. The signature is
// returned hex encoded in the [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	// Check the signature verifies with the public key of the signer.
	pub := crypto.CompressPubkey(&privateKey.PublicKey)
	if !crypto.VerifySignature(pub, data, sig[:crypto.RecoveryIDOffset]) {
		return "", errors.New("invalid signature")
	}

	return hexutil.Encode(sig), nil
}

// Verify reports whether the signature was produced over the value by the
// private key belonging to the specified hex encoded public key.
func Verify(value any, publicKey string, sig string) bool {
	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return false
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil || len(sigBytes) != crypto.SignatureLength {
		return false
	}

	data, err := stamp(value)
	if err != nil {
		return false
	}

	return crypto.VerifySignature(pub, data, sigBytes[:crypto.RecoveryIDOffset])
}

// PublicKeyString returns the hex encoded compressed form of the public key.
// This is the form embedded into transactions.
func PublicKeyString(pk ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.CompressPubkey(&pk))
}

// PublicKeyToAddress derives the account address owned by the hex encoded
// public key.
func PublicKeyToAddress(publicKey string) (string, error) {
	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return "", fmt.Errorf("decoding public key: %w", err)
	}

	pk, err := crypto.DecompressPubkey(pub)
	if err != nil {
		return "", fmt.Errorf("decompressing public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pk).String(), nil
}

// =============================================================================

// canonical returns the deterministic string form of a value. Maps are
// encoded with sorted keys so the same value always produces the same string.
func canonical(value any) string {
	switch v := value.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(data)
}

// digest sorts and joins the canonical strings and hashes the result.
func digest(strs []string) string {
	sort.Strings(strs)

	h := sha256.New()
	for i, s := range strs {
		if i > 0 {
			io.WriteString(h, separator)
		}
		io.WriteString(h, s)
	}

	return hexutil.Encode(h.Sum(nil))
}

// stamp returns a hash of 32 bytes that represents this data with
// the powchain stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the data.
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := crypto.Keccak256(v)

	// This stamp is used so signatures we produce when signing data
	// are always unique to the powchain blockchain.
	stamp := []byte("\x19Powchain Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	data := crypto.Keccak256(stamp, txHash)

	return data, nil
}
