package ledger

import (
	"fmt"
	"time"

	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

// MinimumCustomerAge is the youngest age, in whole years, a customer may have.
const MinimumCustomerAge = 18

// AgeAt returns the number of whole years between birthDate and now.
func AgeAt(birthDate, now time.Time) int {
	by, bm, bd := birthDate.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}

// CheckAdult fails with ErrUnderageCustomer when birthDate implies an age
// below MinimumCustomerAge at now.
func CheckAdult(birthDate, now time.Time) error {
	if AgeAt(birthDate, now) < MinimumCustomerAge {
		return fmt.Errorf("customer must be at least %d years old: %w", MinimumCustomerAge, ErrUnderageCustomer)
	}
	return nil
}

func ParseAccountType(s string) (models.AccountType, error) {
	switch t := models.AccountType(s); t {
	case models.AccountTypeSavings, models.AccountTypeChecking:
		return t, nil
	}
	return "", fmt.Errorf("unknown account type %q: %w", s, ErrInvalidArgument)
}

func ParseAccountStatus(s string) (models.AccountStatus, error) {
	switch st := models.AccountStatus(s); st {
	case models.AccountStatusActive, models.AccountStatusInactive, models.AccountStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown account status %q: %w", s, ErrInvalidArgument)
}

func ParseTransactionType(s string) (models.TransactionType, error) {
	switch t := models.TransactionType(s); t {
	case models.TransactionTypeDeposit, models.TransactionTypeWithdrawal, models.TransactionTypeTransfer:
		return t, nil
	}
	return "", fmt.Errorf("invalid transaction type %q: %w", s, ErrInvalidArgument)
}

// InitialStatus is the status a freshly opened account starts in. Savings
// accounts are activated on creation and so is every other type.
func InitialStatus(models.AccountType) models.AccountStatus {
	return models.AccountStatusActive
}

// OpenAccount builds the snapshot of a new account with a zero balance.
func OpenAccount(customerID int64, t models.AccountType, number string, gmfExempt bool, now time.Time) models.Account {
	return models.Account{
		AccountType:   t,
		AccountNumber: number,
		Status:        InitialStatus(t),
		Balance:       decimal.Zero,
		GMFExempt:     gmfExempt,
		CustomerID:    customerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AmountScale is the number of decimal places money is stored with.
const AmountScale = 2

// ValidateAmount accepts positive amounts the store can hold exactly. Trailing
// zeros beyond the scale are fine; significant digits are not.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return ErrAmountPrecision
	}
	return nil
}

func requireActive(a models.Account) error {
	if a.Status != models.AccountStatusActive {
		return fmt.Errorf("account %s: %w", a.AccountNumber, ErrAccountInactive)
	}
	return nil
}

// Credit returns a copy of a with amount added to its balance.
func Credit(a models.Account, amount decimal.Decimal, now time.Time) (models.Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return a, err
	}
	if err := requireActive(a); err != nil {
		return a, err
	}
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = now
	return a, nil
}

// Debit returns a copy of a with amount subtracted from its balance. The
// balance never goes below zero.
func Debit(a models.Account, amount decimal.Decimal, now time.Time) (models.Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return a, err
	}
	if err := requireActive(a); err != nil {
		return a, err
	}
	if a.Balance.LessThan(amount) {
		return a, fmt.Errorf("account %s: %w", a.AccountNumber, ErrInsufficientFunds)
	}
	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = now
	return a, nil
}

// WithStatus returns a copy of a moved to status. Cancellation requires a
// balance of exactly zero.
func WithStatus(a models.Account, status models.AccountStatus, now time.Time) (models.Account, error) {
	if _, err := ParseAccountStatus(string(status)); err != nil {
		return a, err
	}
	if status == models.AccountStatusCancelled && !a.Balance.IsZero() {
		return a, fmt.Errorf("account %s: %w", a.AccountNumber, ErrNonZeroBalance)
	}
	a.Status = status
	a.UpdatedAt = now
	return a, nil
}

// NewDeposit, NewWithdrawal and NewTransfer build the ledger record for an
// operation. The ID is assigned by the store.
func NewDeposit(dst models.Account, amount decimal.Decimal, now time.Time) models.Transaction {
	return models.Transaction{
		Type:                     models.TransactionTypeDeposit,
		Amount:                   amount,
		DestinationAccountID:     &dst.ID,
		DestinationAccountNumber: dst.AccountNumber,
		CreatedAt:                now,
	}
}

func NewWithdrawal(src models.Account, amount decimal.Decimal, now time.Time) models.Transaction {
	return models.Transaction{
		Type:                models.TransactionTypeWithdrawal,
		Amount:              amount,
		SourceAccountID:     &src.ID,
		SourceAccountNumber: src.AccountNumber,
		CreatedAt:           now,
	}
}

func NewTransfer(src, dst models.Account, amount decimal.Decimal, now time.Time) models.Transaction {
	return models.Transaction{
		Type:                     models.TransactionTypeTransfer,
		Amount:                   amount,
		SourceAccountID:          &src.ID,
		SourceAccountNumber:      src.AccountNumber,
		DestinationAccountID:     &dst.ID,
		DestinationAccountNumber: dst.AccountNumber,
		CreatedAt:                now,
	}
}
