package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"

	"github.com/eaglebank/ledger/shared/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	savingsPrefix  = "53"
	checkingPrefix = "33"

	accountNumberDigits = 8
)

var accountNumberPattern = regexp.MustCompile(`^(53|33)[0-9]{8}$`)

// AccountNumberPrefix returns the two-digit prefix of an account type.
func AccountNumberPrefix(accountType models.AccountType) (string, error) {
	switch accountType {
	case models.AccountTypeSavings:
		return savingsPrefix, nil
	case models.AccountTypeChecking:
		return checkingPrefix, nil
	}
	return "", fmt.Errorf("unknown account type %q", accountType)
}

// GenerateAccountNumber builds a 10-digit account number: the type prefix
// followed by 8 digits drawn from rnd. Pass crypto/rand.Reader in production.
// Uniqueness is probabilistic; the store enforces it.
func GenerateAccountNumber(rnd io.Reader, accountType models.AccountType) (string, error) {
	prefix, err := AccountNumberPrefix(accountType)
	if err != nil {
		return "", err
	}
	limit := big.NewInt(100_000_000)
	num, err := rand.Int(rnd, limit)
	if err != nil {
		return "", fmt.Errorf("failed to draw account number: %w", err)
	}
	return fmt.Sprintf("%s%0*d", prefix, accountNumberDigits, num.Int64()), nil
}

// ValidateAccountNumber validates the account number format
func ValidateAccountNumber(accountNumber string) bool {
	return accountNumberPattern.MatchString(accountNumber)
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
