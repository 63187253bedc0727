package cqrs

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateCustomerCommand struct {
	IdentificationType   string
	IdentificationNumber string
	FirstName            string
	LastName             string
	Email                string
	BirthDate            time.Time
}

// UpdateCustomerCommand replaces every mutable field of the customer at once.
type UpdateCustomerCommand struct {
	CustomerID           int64
	IdentificationType   string
	IdentificationNumber string
	FirstName            string
	LastName             string
	Email                string
	BirthDate            time.Time
}

type DeleteCustomerCommand struct {
	CustomerID int64
}

type CreateAccountCommand struct {
	CustomerID  int64
	AccountType string
	GMFExempt   bool
}

type ChangeAccountStatusCommand struct {
	AccountID int64
	Status    string
}

type CancelAccountCommand struct {
	AccountID int64
}

// CreateTransactionCommand is dispatched on Type. Deposits use only the
// destination, withdrawals only the source, transfers both.
type CreateTransactionCommand struct {
	Type                     string
	Amount                   decimal.Decimal
	SourceAccountNumber      string
	DestinationAccountNumber string
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}
