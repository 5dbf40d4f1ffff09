package chain

import (
	"context"
	"errors"
	"net"
	"strings"
)

// TxErrorKind classifies a failed contract interaction into the cases an
// admin can act on.
type TxErrorKind string

const (
	// TxErrPermissionDenied is an access-control revert: the sender lacks
	// the admin capability on the contract.
	TxErrPermissionDenied TxErrorKind = "permission_denied"
	// TxErrUserRejected is an explicit wallet-level rejection.
	TxErrUserRejected TxErrorKind = "user_rejected"
	// TxErrContractCallFailed is a generic revert / unpredictable-gas failure.
	TxErrContractCallFailed TxErrorKind = "contract_call_failed"
	// TxErrNetwork is a connectivity or timeout failure talking to the RPC node.
	TxErrNetwork TxErrorKind = "network_error"
	// TxErrInsufficientFunds means the sender cannot cover gas.
	TxErrInsufficientFunds TxErrorKind = "insufficient_funds"
	// TxErrWouldFail is the fallback classification, carrying the raw reason.
	TxErrWouldFail TxErrorKind = "transaction_would_fail"
)

// TxError wraps a raw chain error with its classification and an
// admin-facing message. Internal stack traces never reach the admin.
type TxError struct {
	Kind   TxErrorKind
	Reason string
	Err    error
}

func (e *TxError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// Message returns the human-readable message shown to the admin.
func (e *TxError) Message() string {
	switch e.Kind {
	case TxErrPermissionDenied:
		return "You do not have permission to update KYC status. Only the contract ADMIN role can approve or reject requests."
	case TxErrUserRejected:
		return "Transaction was rejected in the wallet."
	case TxErrContractCallFailed:
		return "The contract call would fail. The request may already have been processed."
	case TxErrNetwork:
		return "Network error while talking to the blockchain node. Please try again."
	case TxErrInsufficientFunds:
		return "The admin wallet has insufficient funds to pay for gas."
	default:
		if e.Reason != "" {
			return "Transaction would fail: " + e.Reason
		}
		return "Transaction would fail."
	}
}

// ClassifyTxError maps a raw error from gas estimation or transaction
// submission into the taxonomy above. The classification is based on the
// revert reason / error text, which is the only signal most nodes give.
func ClassifyTxError(err error) *TxError {
	if err == nil {
		return nil
	}

	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr
	}

	reason := err.Error()
	lower := strings.ToLower(reason)

	var netErr net.Error
	switch {
	case strings.Contains(lower, "accesscontrol"),
		strings.Contains(lower, "missing role"),
		strings.Contains(lower, "caller is not"),
		strings.Contains(lower, "not authorized"),
		strings.Contains(lower, "onlyadmin"):
		return &TxError{Kind: TxErrPermissionDenied, Reason: reason, Err: err}

	case strings.Contains(lower, "user rejected"),
		strings.Contains(lower, "user denied"),
		strings.Contains(lower, "denied transaction"):
		return &TxError{Kind: TxErrUserRejected, Reason: reason, Err: err}

	case strings.Contains(lower, "insufficient funds"):
		return &TxError{Kind: TxErrInsufficientFunds, Reason: reason, Err: err}

	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "i/o timeout"),
		strings.Contains(lower, "network error"):
		return &TxError{Kind: TxErrNetwork, Reason: reason, Err: err}

	case strings.Contains(lower, "execution reverted"),
		strings.Contains(lower, "always failing transaction"),
		strings.Contains(lower, "cannot estimate gas"),
		strings.Contains(lower, "gas required exceeds"):
		return &TxError{Kind: TxErrContractCallFailed, Reason: reason, Err: err}

	default:
		return &TxError{Kind: TxErrWouldFail, Reason: reason, Err: err}
	}
}
