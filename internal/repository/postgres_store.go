package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/lib/pq"
)

// Postgres error codes the store reacts to.
const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqCheckViolation       = "23514"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqLockNotAvailable     = "55P03"
)

// Constraint names from migrations/001_init.sql.
const (
	constraintCustomerEmail          = "customers_email_key"
	constraintCustomerIdentification = "customers_identification_number_key"
	constraintAccountNumber          = "accounts_account_number_key"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresConfig struct {
	// TxRetries bounds how many times a unit of work is re-run after a
	// serialization failure, deadlock or lock timeout.
	TxRetries int
	// LockTimeout caps how long a statement in a unit waits for a row lock.
	// Zero leaves the server default.
	LockTimeout time.Duration
}

// PostgresStore is the write store. Units of work run at READ COMMITTED and
// take row locks with SELECT ... FOR UPDATE before checking preconditions.
type PostgresStore struct {
	db   *sql.DB
	q    querier
	inTx bool
	cfg  PostgresConfig
}

func NewPostgresStore(db *sql.DB, cfg PostgresConfig) *PostgresStore {
	return &PostgresStore{db: db, q: db, cfg: cfg}
}

func (s *PostgresStore) Customers() CustomerRepository {
	return &pgCustomerRepository{q: s.q}
}

func (s *PostgresStore) Accounts() AccountRepository {
	return &pgAccountRepository{q: s.q}
}

func (s *PostgresStore) Transactions() TransactionRepository {
	return &pgTransactionRepository{q: s.q}
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	for attempt := 0; ; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) || attempt >= s.cfg.TxRetries {
			return err
		}
		log.Printf("Retrying unit of work after transient conflict (attempt %d): %v", attempt+1, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 20 * time.Millisecond):
		}
	}
}

func (s *PostgresStore) runTx(ctx context.Context, fn func(Store) error) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Printf("Failed to roll back transaction: %v", rbErr)
			}
		}
	}()

	if s.cfg.LockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", s.cfg.LockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	if err = fn(&PostgresStore{db: s.db, q: tx, inTx: true, cfg: s.cfg}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case pqSerializationFailure, pqDeadlockDetected, pqLockNotAvailable:
		return true
	}
	return false
}

// translateUnique maps unique violations onto domain errors. Other errors are
// returned unchanged.
func translateUnique(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pqUniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case constraintCustomerEmail:
		return ledger.ErrEmailTaken
	case constraintCustomerIdentification:
		return ledger.ErrIdentificationUsed
	case constraintAccountNumber:
		return ledger.ErrAccountNumberTaken
	}
	return fmt.Errorf("%s: %w", pqErr.Message, ledger.ErrDuplicateIdentity)
}

// translateCheck maps CHECK violations (non-positive amounts, negative
// balances) onto ErrInvalidArgument.
func translateCheck(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pqCheckViolation {
		return err
	}
	return fmt.Errorf("%s: %w", pqErr.Message, ledger.ErrInvalidArgument)
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}

func checkAffected(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, ledger.ErrNotFound)
	}
	return nil
}
