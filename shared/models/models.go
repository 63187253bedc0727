package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates such as a birth date.
const DateLayout = "2006-01-02"

type AccountType string

const (
	AccountTypeSavings  AccountType = "SAVINGS"
	AccountTypeChecking AccountType = "CHECKING"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusInactive  AccountStatus = "INACTIVE"
	AccountStatusCancelled AccountStatus = "CANCELLED"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

type Customer struct {
	ID                   int64     `json:"id"`
	IdentificationType   string    `json:"identificationType"`
	IdentificationNumber string    `json:"identificationNumber"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	Email                string    `json:"email"`
	BirthDate            time.Time `json:"birthDate"`
	CreatedAt            time.Time `json:"createdTimestamp"`
	UpdatedAt            time.Time `json:"updatedTimestamp"`
}

// FullName is used on account views and statements.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Account struct {
	ID            int64           `json:"id"`
	AccountType   AccountType     `json:"accountType"`
	AccountNumber string          `json:"accountNumber"`
	Status        AccountStatus   `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	GMFExempt     bool            `json:"gmfExempt"`
	CustomerID    int64           `json:"customerId"`
	CreatedAt     time.Time       `json:"createdTimestamp"`
	UpdatedAt     time.Time       `json:"updatedTimestamp"`
}

// Transaction is an append-only ledger record. Source and destination are
// weak references to accounts; which of them is set depends on Type.
type Transaction struct {
	ID                       int64           `json:"id"`
	Type                     TransactionType `json:"transactionType"`
	Amount                   decimal.Decimal `json:"amount"`
	SourceAccountID          *int64          `json:"-"`
	SourceAccountNumber      string          `json:"sourceAccountNumber,omitempty"`
	DestinationAccountID     *int64          `json:"-"`
	DestinationAccountNumber string          `json:"destinationAccountNumber,omitempty"`
	CreatedAt                time.Time       `json:"transactionDate"`
}
