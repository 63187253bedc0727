package command

import (
	"context"
	"fmt"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

// TransactionCommandService is the transaction engine. Each operation locks
// the accounts it touches, checks preconditions against the locked rows, and
// writes the new balances together with exactly one ledger record.
type TransactionCommandService struct {
	store        repository.Store
	views        TransactionViewCache
	accountViews AccountViewCache
	publisher    events.Emitter
}

func NewTransactionCommandService(
	store repository.Store,
	views TransactionViewCache,
	accountViews AccountViewCache,
	publisher events.Emitter,
) *TransactionCommandService {
	return &TransactionCommandService{
		store:        store,
		views:        views,
		accountViews: accountViews,
		publisher:    publisher,
	}
}

// unit runs inside the store transaction and returns the record plus the
// post-operation snapshots of every account it changed. Units read the clock
// only once their account rows are locked, so timestamps follow apply order.
type unit func(tx repository.Store) (*models.Transaction, []models.Account, error)

// CreateTransaction dispatches on the declared type.
func (s *TransactionCommandService) CreateTransaction(ctx context.Context, cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
	txType, err := ledger.ParseTransactionType(cmd.Type)
	if err != nil {
		return nil, err
	}
	switch txType {
	case models.TransactionTypeDeposit:
		if cmd.DestinationAccountNumber == "" {
			return nil, missingAccount(txType, "destination")
		}
		return s.Deposit(ctx, cmd.DestinationAccountNumber, cmd.Amount)
	case models.TransactionTypeWithdrawal:
		if cmd.SourceAccountNumber == "" {
			return nil, missingAccount(txType, "source")
		}
		return s.Withdraw(ctx, cmd.SourceAccountNumber, cmd.Amount)
	case models.TransactionTypeTransfer:
		if cmd.SourceAccountNumber == "" {
			return nil, missingAccount(txType, "source")
		}
		if cmd.DestinationAccountNumber == "" {
			return nil, missingAccount(txType, "destination")
		}
		return s.Transfer(ctx, cmd.SourceAccountNumber, cmd.DestinationAccountNumber, cmd.Amount)
	default:
		return nil, fmt.Errorf("unsupported transaction type %s: %w", txType, ledger.ErrInvalidArgument)
	}
}

func missingAccount(t models.TransactionType, side string) error {
	return fmt.Errorf("%s requires a %s account number: %w", t, side, ledger.ErrInvalidArgument)
}

func (s *TransactionCommandService) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.Transaction, error) {
	return s.execute(ctx, models.TransactionTypeDeposit, amount, func(tx repository.Store) (*models.Transaction, []models.Account, error) {
		account, err := tx.Accounts().FindByNumberForUpdate(ctx, accountNumber)
		if err != nil {
			return nil, nil, err
		}
		at := now()
		credited, err := ledger.Credit(*account, amount, at)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Accounts().Save(ctx, &credited); err != nil {
			return nil, nil, err
		}
		rec := ledger.NewDeposit(credited, amount, at)
		if err := tx.Transactions().Save(ctx, &rec); err != nil {
			return nil, nil, err
		}
		return &rec, []models.Account{credited}, nil
	})
}

func (s *TransactionCommandService) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.Transaction, error) {
	return s.execute(ctx, models.TransactionTypeWithdrawal, amount, func(tx repository.Store) (*models.Transaction, []models.Account, error) {
		account, err := tx.Accounts().FindByNumberForUpdate(ctx, accountNumber)
		if err != nil {
			return nil, nil, err
		}
		at := now()
		debited, err := ledger.Debit(*account, amount, at)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Accounts().Save(ctx, &debited); err != nil {
			return nil, nil, err
		}
		rec := ledger.NewWithdrawal(debited, amount, at)
		if err := tx.Transactions().Save(ctx, &rec); err != nil {
			return nil, nil, err
		}
		return &rec, []models.Account{debited}, nil
	})
}

// Transfer moves amount from one account to another. Both rows are locked in
// ascending account-number order so two opposing transfers cannot deadlock.
// When both accounts are missing the source is reported.
func (s *TransactionCommandService) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (*models.Transaction, error) {
	if from == to {
		transactionsTotal.WithLabelValues(string(models.TransactionTypeTransfer), ledger.Code(ledger.ErrSameAccount)).Inc()
		return nil, fmt.Errorf("account %s: %w", from, ledger.ErrSameAccount)
	}
	return s.execute(ctx, models.TransactionTypeTransfer, amount, func(tx repository.Store) (*models.Transaction, []models.Account, error) {
		first, second := from, to
		if second < first {
			first, second = second, first
		}
		locked := make(map[string]*models.Account, 2)
		missing := make(map[string]error, 2)
		for _, number := range []string{first, second} {
			account, err := tx.Accounts().FindByNumberForUpdate(ctx, number)
			if err != nil {
				if ledger.Kind(err) != ledger.ErrNotFound {
					return nil, nil, err
				}
				missing[number] = err
				continue
			}
			locked[number] = account
		}
		if err := missing[from]; err != nil {
			return nil, nil, err
		}
		if err := missing[to]; err != nil {
			return nil, nil, err
		}
		at := now()

		debited, err := ledger.Debit(*locked[from], amount, at)
		if err != nil {
			return nil, nil, err
		}
		credited, err := ledger.Credit(*locked[to], amount, at)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Accounts().Save(ctx, &debited); err != nil {
			return nil, nil, err
		}
		if err := tx.Accounts().Save(ctx, &credited); err != nil {
			return nil, nil, err
		}
		rec := ledger.NewTransfer(debited, credited, amount, at)
		if err := tx.Transactions().Save(ctx, &rec); err != nil {
			return nil, nil, err
		}
		return &rec, []models.Account{debited, credited}, nil
	})
}

// execute validates the amount, runs fn as one unit of work and, once it has
// committed, refreshes read models and publishes events.
func (s *TransactionCommandService) execute(ctx context.Context, txType models.TransactionType, amount decimal.Decimal, fn unit) (*models.Transaction, error) {
	var (
		rec     *models.Transaction
		touched []models.Account
	)
	err := ledger.ValidateAmount(amount)
	if err == nil {
		err = s.store.WithTx(ctx, func(tx repository.Store) error {
			var uerr error
			rec, touched, uerr = fn(tx)
			return uerr
		})
	}
	transactionsTotal.WithLabelValues(string(txType), outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.afterCommit(context.WithoutCancel(ctx), rec, touched)
	return rec, nil
}

func (s *TransactionCommandService) afterCommit(ctx context.Context, rec *models.Transaction, touched []models.Account) {
	s.views.CacheTransactionView(ctx, models.TransactionToView(rec))
	for _, a := range touched {
		s.accountViews.InvalidateAccountView(ctx, a.ID, a.AccountNumber)
	}

	publish(ctx, s.publisher, events.TransactionEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID:            rec.ID,
		Type:                     string(rec.Type),
		Amount:                   rec.Amount.String(),
		SourceAccountNumber:      rec.SourceAccountNumber,
		DestinationAccountNumber: rec.DestinationAccountNumber,
	})
	for _, a := range touched {
		change := rec.Amount
		if rec.SourceAccountID != nil && *rec.SourceAccountID == a.ID {
			change = change.Neg()
		}
		publish(ctx, s.publisher, events.TransactionEventsStream, events.BalanceUpdated, events.BalanceUpdatedEvent{
			AccountID:     a.ID,
			AccountNumber: a.AccountNumber,
			NewBalance:    a.Balance.StringFixed(2),
			Change:        change.StringFixed(2),
		})
	}
}
