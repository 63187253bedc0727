// Package repository persists customers, accounts and transactions. Every
// mutation goes through a Store unit of work; the Postgres and memory
// implementations give the same isolation guarantees.
package repository

import (
	"context"

	"github.com/eaglebank/ledger/shared/models"
)

// Store is a unit-of-work boundary over the three repositories.
//
// WithTx runs fn against a Store whose reads and writes are isolated from
// concurrent units and are committed together only if fn returns nil. Rows
// read with a ForUpdate finder stay locked until the unit ends. Calling WithTx
// on the Store passed to fn joins the enclosing unit.
type Store interface {
	Customers() CustomerRepository
	Accounts() AccountRepository
	Transactions() TransactionRepository
	WithTx(ctx context.Context, fn func(Store) error) error
}

// Finders return an error wrapping ledger.ErrNotFound when nothing matches.
type CustomerRepository interface {
	// Save inserts c when c.ID is zero, assigning the new id, and otherwise
	// replaces the stored row.
	Save(ctx context.Context, c *models.Customer) error
	FindByID(ctx context.Context, id int64) (*models.Customer, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Customer, error)
	FindAll(ctx context.Context) ([]models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindByIdentificationNumber(ctx context.Context, number string) (*models.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	HasAnyAccount(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type AccountRepository interface {
	Save(ctx context.Context, a *models.Account) error
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Account, error)
	FindByNumber(ctx context.Context, number string) (*models.Account, error)
	FindByNumberForUpdate(ctx context.Context, number string) (*models.Account, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]models.Account, error)
}

// TransactionRepository is append-only: Save rejects records that already
// have an id and there is no update or delete.
type TransactionRepository interface {
	Save(ctx context.Context, t *models.Transaction) error
	FindByID(ctx context.Context, id int64) (*models.Transaction, error)
	// FindByAccount returns every record where the account is the source or
	// the destination in the order they were applied (ascending id).
	FindByAccount(ctx context.Context, accountID int64) ([]models.Transaction, error)
}
