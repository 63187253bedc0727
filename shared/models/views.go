package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerView is the read-optimised projection of a customer.
// AccountCount is derived from the account store when the view is built.
type CustomerView struct {
	ID                   int64     `json:"id"`
	IdentificationType   string    `json:"identificationType"`
	IdentificationNumber string    `json:"identificationNumber"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	Email                string    `json:"email"`
	BirthDate            string    `json:"birthDate"`
	AccountCount         int       `json:"accountCount"`
	CreatedAt            time.Time `json:"createdTimestamp"`
	UpdatedAt            time.Time `json:"updatedTimestamp"`
}

// AccountView is the read-optimised projection of an account, denormalised
// with the owner's name.
type AccountView struct {
	ID            int64           `json:"id"`
	AccountType   AccountType     `json:"accountType"`
	AccountNumber string          `json:"accountNumber"`
	Status        AccountStatus   `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	GMFExempt     bool            `json:"gmfExempt"`
	CustomerID    int64           `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CreatedAt     time.Time       `json:"createdTimestamp"`
	UpdatedAt     time.Time       `json:"updatedTimestamp"`
}

// TransactionView is the read-optimised projection of a transaction.
type TransactionView struct {
	ID                       int64           `json:"id"`
	Type                     TransactionType `json:"transactionType"`
	Amount                   decimal.Decimal `json:"amount"`
	SourceAccountNumber      string          `json:"sourceAccountNumber,omitempty"`
	DestinationAccountNumber string          `json:"destinationAccountNumber,omitempty"`
	CreatedAt                time.Time       `json:"transactionDate"`
}

func CustomerToView(c *Customer, accountCount int) *CustomerView {
	return &CustomerView{
		ID:                   c.ID,
		IdentificationType:   c.IdentificationType,
		IdentificationNumber: c.IdentificationNumber,
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		Email:                c.Email,
		BirthDate:            c.BirthDate.Format(DateLayout),
		AccountCount:         accountCount,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func AccountToView(a *Account, customerName string) *AccountView {
	return &AccountView{
		ID:            a.ID,
		AccountType:   a.AccountType,
		AccountNumber: a.AccountNumber,
		Status:        a.Status,
		Balance:       a.Balance,
		GMFExempt:     a.GMFExempt,
		CustomerID:    a.CustomerID,
		CustomerName:  customerName,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func TransactionToView(t *Transaction) *TransactionView {
	return &TransactionView{
		ID:                       t.ID,
		Type:                     t.Type,
		Amount:                   t.Amount,
		SourceAccountNumber:      t.SourceAccountNumber,
		DestinationAccountNumber: t.DestinationAccountNumber,
		CreatedAt:                t.CreatedAt,
	}
}
