package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/models"
)

// Account numbers are not stored on the transaction row; they are joined in
// for presentation.
const transactionSelect = `
	SELECT t.id, t.type, t.amount, t.source_account_id, COALESCE(src.account_number, ''),
	       t.destination_account_id, COALESCE(dst.account_number, ''), t.created_at
	FROM transactions t
	LEFT JOIN accounts src ON src.id = t.source_account_id
	LEFT JOIN accounts dst ON dst.id = t.destination_account_id
`

// pgTransactionRepository appends to and reads the transaction log.
type pgTransactionRepository struct {
	q querier
}

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var (
		t        models.Transaction
		src, dst sql.NullInt64
	)
	err := row.Scan(
		&t.ID, &t.Type, &t.Amount,
		&src, &t.SourceAccountNumber,
		&dst, &t.DestinationAccountNumber,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if src.Valid {
		t.SourceAccountID = &src.Int64
	}
	if dst.Valid {
		t.DestinationAccountID = &dst.Int64
	}
	return &t, nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func (r *pgTransactionRepository) Save(ctx context.Context, t *models.Transaction) error {
	if t.ID != 0 {
		return fmt.Errorf("transaction %d already recorded: %w", t.ID, ledger.ErrInvalidOperation)
	}
	query := `
		INSERT INTO transactions (type, amount, source_account_id, destination_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query,
		t.Type, t.Amount, nullInt64(t.SourceAccountID), nullInt64(t.DestinationAccountID), t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		if mapped := translateCheck(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *pgTransactionRepository) FindByID(ctx context.Context, id int64) (*models.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRowContext(ctx, transactionSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *pgTransactionRepository) FindByAccount(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	rows, err := r.q.QueryContext(ctx,
		transactionSelect+` WHERE t.source_account_id = $1 OR t.destination_account_id = $1 ORDER BY t.id`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
