package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/models"
)

const customerColumns = `id, identification_type, identification_number, first_name, last_name, email, birth_date, created_at, updated_at`

// pgCustomerRepository handles customer rows in the PostgreSQL write store.
type pgCustomerRepository struct {
	q querier
}

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.ID, &c.IdentificationType, &c.IdentificationNumber,
		&c.FirstName, &c.LastName, &c.Email, &c.BirthDate,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgCustomerRepository) Save(ctx context.Context, c *models.Customer) error {
	if c.ID == 0 {
		query := `
			INSERT INTO customers (identification_type, identification_number, first_name, last_name, email, birth_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		err := r.q.QueryRowContext(ctx, query,
			c.IdentificationType, c.IdentificationNumber, c.FirstName, c.LastName,
			c.Email, c.BirthDate, c.CreatedAt, c.UpdatedAt,
		).Scan(&c.ID)
		if err != nil {
			if mapped := translateUnique(err); mapped != err {
				return mapped
			}
			return fmt.Errorf("failed to create customer: %w", err)
		}
		return nil
	}

	query := `
		UPDATE customers
		SET identification_type = $2, identification_number = $3, first_name = $4,
		    last_name = $5, email = $6, birth_date = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		c.ID, c.IdentificationType, c.IdentificationNumber, c.FirstName,
		c.LastName, c.Email, c.BirthDate, c.UpdatedAt,
	)
	if err != nil {
		if mapped := translateUnique(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return checkAffected(result, fmt.Sprintf("customer %d", c.ID))
}

func (r *pgCustomerRepository) findOne(ctx context.Context, what, query string, arg any) (*models.Customer, error) {
	c, err := scanCustomer(r.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

func (r *pgCustomerRepository) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	return r.findOne(ctx, fmt.Sprintf("customer %d", id),
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *pgCustomerRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Customer, error) {
	return r.findOne(ctx, fmt.Sprintf("customer %d", id),
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id)
}

func (r *pgCustomerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return r.findOne(ctx, "customer with email "+email,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

func (r *pgCustomerRepository) FindByIdentificationNumber(ctx context.Context, number string) (*models.Customer, error) {
	return r.findOne(ctx, "customer with identification "+number,
		`SELECT `+customerColumns+` FROM customers WHERE identification_number = $1`, number)
}

func (r *pgCustomerRepository) FindAll(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (r *pgCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *pgCustomerRepository) HasAnyAccount(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE customer_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check customer accounts: %w", err)
	}
	return exists, nil
}

func (r *pgCustomerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("customer %d: %w", id, ledger.ErrHasLinkedAccounts)
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return checkAffected(result, fmt.Sprintf("customer %d", id))
}
