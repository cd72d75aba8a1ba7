// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// Unwrap returns the wrapped error.
func (re *Trusted) Unwrap() error {
	return re.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

// =============================================================================

// statuses maps the ledger's rule violations to the status reported to
// the client. A rejected chain wraps the rule it broke, so it's matched first.
var statuses = []struct {
	err    error
	status int
}{
	{database.ErrNotLonger, http.StatusNotAcceptable},
	{database.ErrInvalidIncomingChain, http.StatusNotAcceptable},
	{database.ErrDuplicateTransaction, http.StatusBadRequest},
	{database.ErrInsufficientBalance, http.StatusBadRequest},
	{database.ErrInvalidSignature, http.StatusBadRequest},
	{database.ErrInvalidOutputSum, http.StatusBadRequest},
	{database.ErrInvalidInputAmount, http.StatusBadRequest},
	{database.ErrInvalidReward, http.StatusBadRequest},
	{state.ErrStaleTip, http.StatusConflict},
}

// Classify wraps a ledger rule violation as a trusted error so the violated
// rule reaches the client. Any other error is returned as is.
func Classify(err error) error {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return NewTrusted(err, s.status)
		}
	}
	return err
}
