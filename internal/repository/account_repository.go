package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/models"
)

const accountColumns = `id, account_type, account_number, status, balance, gmf_exempt, customer_id, created_at, updated_at`

// pgAccountRepository handles account rows in the PostgreSQL write store.
type pgAccountRepository struct {
	q querier
}

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.AccountType, &a.AccountNumber, &a.Status, &a.Balance,
		&a.GMFExempt, &a.CustomerID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *pgAccountRepository) Save(ctx context.Context, a *models.Account) error {
	if a.ID == 0 {
		query := `
			INSERT INTO accounts (account_type, account_number, status, balance, gmf_exempt, customer_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		err := r.q.QueryRowContext(ctx, query,
			a.AccountType, a.AccountNumber, a.Status, a.Balance,
			a.GMFExempt, a.CustomerID, a.CreatedAt, a.UpdatedAt,
		).Scan(&a.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("customer %d: %w", a.CustomerID, ledger.ErrNotFound)
			}
			if mapped := translateUnique(err); mapped != err {
				return mapped
			}
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	}

	// Type, number and owner never change once opened.
	query := `
		UPDATE accounts
		SET status = $2, balance = $3, gmf_exempt = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query, a.ID, a.Status, a.Balance, a.GMFExempt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return checkAffected(result, "account "+a.AccountNumber)
}

func (r *pgAccountRepository) findOne(ctx context.Context, what, query string, arg any) (*models.Account, error) {
	a, err := scanAccount(r.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (r *pgAccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.findOne(ctx, fmt.Sprintf("account %d", id),
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *pgAccountRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	return r.findOne(ctx, fmt.Sprintf("account %d", id),
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (r *pgAccountRepository) FindByNumber(ctx context.Context, number string) (*models.Account, error) {
	return r.findOne(ctx, "account "+number,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number)
}

func (r *pgAccountRepository) FindByNumberForUpdate(ctx context.Context, number string) (*models.Account, error) {
	return r.findOne(ctx, "account "+number,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1 FOR UPDATE`, number)
}

func (r *pgAccountRepository) FindByCustomer(ctx context.Context, customerID int64) ([]models.Account, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE customer_id = $1 ORDER BY id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
