package events

import "time"

// Event types
const (
	CustomerCreated = "customer.created"
	CustomerUpdated = "customer.updated"
	CustomerDeleted = "customer.deleted"

	AccountCreated       = "account.created"
	AccountStatusChanged = "account.status_changed"

	TransactionCreated = "transaction.created"
	BalanceUpdated     = "balance.updated"
)

// Stream names
const (
	CustomerEventsStream    = "customer.events"
	AccountEventsStream     = "account.events"
	TransactionEventsStream = "transaction.events"
)

// Base event structure
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Customer events
type CustomerCreatedEvent struct {
	CustomerID int64  `json:"customerId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

type CustomerUpdatedEvent struct {
	CustomerID int64  `json:"customerId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

type CustomerDeletedEvent struct {
	CustomerID int64 `json:"customerId"`
}

// Account events
type AccountCreatedEvent struct {
	AccountID     int64  `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	CustomerID    int64  `json:"customerId"`
	AccountType   string `json:"accountType"`
}

type AccountStatusChangedEvent struct {
	AccountID     int64  `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	CustomerID    int64  `json:"customerId"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// Transaction events. Amounts travel as decimal strings.
type TransactionCreatedEvent struct {
	TransactionID            int64  `json:"transactionId"`
	Type                     string `json:"type"`
	Amount                   string `json:"amount"`
	SourceAccountNumber      string `json:"sourceAccountNumber,omitempty"`
	DestinationAccountNumber string `json:"destinationAccountNumber,omitempty"`
}

type BalanceUpdatedEvent struct {
	AccountID     int64  `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	NewBalance    string `json:"newBalance"`
	Change        string `json:"change"`
}
