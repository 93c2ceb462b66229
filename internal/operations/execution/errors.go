package execution

import (
	"errors"
	"fmt"
)

// Business-rule failures. Any of these surfacing from a transaction rolls
// back the whole unit of work, order row included.
var (
	// ErrInsufficientFunds rejects a buy whose cost exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientShares rejects a sell larger than the holding at read time.
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrRaceLost rejects a sell whose conditional decrement found the shares
	// already consumed by a concurrent winner. Safe to resubmit.
	ErrRaceLost = errors.New("sell lost race for shares")
)

// ValidationError reports a bad or missing intent field. Raised before any
// transaction opens, so the store is never touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order intent: %s %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown symbol or explicit session id.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// StoreError marks an infrastructure failure (the transaction could not
// run or commit), as opposed to a business-rule rejection.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// isBusinessError reports whether err belongs to the typed taxonomy above,
// i.e. it should surface as-is rather than be wrapped as a store failure.
func isBusinessError(err error) bool {
	var ve *ValidationError
	var nfe *NotFoundError
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientShares) ||
		errors.Is(err, ErrRaceLost) ||
		errors.As(err, &ve) ||
		errors.As(err, &nfe)
}
