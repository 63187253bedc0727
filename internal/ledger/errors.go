// Package ledger holds the domain rules of the ledger: the error taxonomy
// and the pure state transitions applied to account snapshots.
package ledger

import "errors"

// Error kinds. Every domain failure wraps exactly one of these so callers can
// branch with errors.Is without inspecting messages.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrUnderageCustomer  = errors.New("underage customer")
	ErrHasLinkedAccounts = errors.New("customer has linked accounts")
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// Detail errors, each tagged with its kind.
var (
	ErrAccountInactive    = &detailError{kind: ErrInvalidOperation, msg: "account is not active"}
	ErrInsufficientFunds  = &detailError{kind: ErrInvalidOperation, msg: "insufficient funds"}
	ErrNonZeroBalance     = &detailError{kind: ErrInvalidOperation, msg: "cannot cancel account with non-zero balance"}
	ErrSameAccount        = &detailError{kind: ErrInvalidOperation, msg: "source and destination accounts must differ"}
	ErrAccountNumberTaken = &detailError{kind: ErrDuplicateIdentity, msg: "account number already allocated"}
	ErrEmailTaken         = &detailError{kind: ErrDuplicateIdentity, msg: "a customer with this email already exists"}
	ErrIdentificationUsed = &detailError{kind: ErrDuplicateIdentity, msg: "a customer with this identification number already exists"}
	ErrNonPositiveAmount  = &detailError{kind: ErrInvalidArgument, msg: "amount must be greater than zero"}
	ErrAmountPrecision    = &detailError{kind: ErrInvalidArgument, msg: "amount must have at most two decimal places"}
)

type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }

func (e *detailError) Unwrap() error { return e.kind }

// Kind reports which taxonomy entry err belongs to, or nil for errors that
// are not domain failures.
func Kind(err error) error {
	for _, k := range []error{
		ErrNotFound,
		ErrInvalidOperation,
		ErrUnderageCustomer,
		ErrHasLinkedAccounts,
		ErrDuplicateIdentity,
		ErrInvalidArgument,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Code returns the stable machine-readable name of err's kind, or "internal"
// when err is not a domain failure.
func Code(err error) string {
	switch Kind(err) {
	case ErrNotFound:
		return "not_found"
	case ErrInvalidOperation:
		return "invalid_operation"
	case ErrUnderageCustomer:
		return "underage_customer"
	case ErrHasLinkedAccounts:
		return "has_linked_accounts"
	case ErrDuplicateIdentity:
		return "duplicate_identity"
	case ErrInvalidArgument:
		return "invalid_argument"
	}
	return "internal"
}
