package ledger

import "fmt"

// InsufficientHoldingsError reports a sell that exceeds the open quantity
// for a symbol. It means the ledger is inconsistent; no partial results are
// produced for the affected call.
type InsufficientHoldingsError struct {
	Symbol    string
	Requested int64
	Available int64
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings for %s: requested %d, available %d", e.Symbol, e.Requested, e.Available)
}

// InvalidTransactionError reports a malformed transaction rejected before
// it enters replay.
type InvalidTransactionError struct {
	TxnID  int64
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction %d: %s", e.TxnID, e.Reason)
}
