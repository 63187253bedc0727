package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

var testTime = time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)

func seedCustomer(t *testing.T, s Store, email, identification string) *models.Customer {
	t.Helper()
	c := &models.Customer{
		IdentificationType:   "CC",
		IdentificationNumber: identification,
		FirstName:            "Ada",
		LastName:             "Lovelace",
		Email:                email,
		BirthDate:            time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:            testTime,
		UpdatedAt:            testTime,
	}
	if err := s.Customers().Save(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func seedAccount(t *testing.T, s Store, customerID int64, number, balance string) *models.Account {
	t.Helper()
	a := ledger.OpenAccount(customerID, models.AccountTypeSavings, number, false, testTime)
	a.Balance = decimal.RequireFromString(balance)
	if err := s.Accounts().Save(context.Background(), &a); err != nil {
		t.Fatal(err)
	}
	return &a
}

func TestMemoryStoreUniqueConstraints(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	first := seedCustomer(t, s, "ada@example.com", "100")

	dupEmail := *first
	dupEmail.ID = 0
	dupEmail.IdentificationNumber = "200"
	if err := s.Customers().Save(ctx, &dupEmail); !errors.Is(err, ledger.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	dupID := *first
	dupID.ID = 0
	dupID.Email = "other@example.com"
	if err := s.Customers().Save(ctx, &dupID); !errors.Is(err, ledger.ErrDuplicateIdentity) {
		t.Fatalf("expected duplicate identity, got %v", err)
	}

	// Re-saving a customer with its own identity is an update, not a clash.
	first.FirstName = "Augusta"
	if err := s.Customers().Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	seedAccount(t, s, first.ID, "5300000001", "0")
	clash := ledger.OpenAccount(first.ID, models.AccountTypeChecking, "5300000001", false, testTime)
	if err := s.Accounts().Save(ctx, &clash); !errors.Is(err, ledger.ErrAccountNumberTaken) {
		t.Fatalf("expected ErrAccountNumberTaken, got %v", err)
	}
}

func TestMemoryStoreDeleteCustomer(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := seedCustomer(t, s, "ada@example.com", "100")
	seedAccount(t, s, c.ID, "5300000001", "0")

	if err := s.Customers().Delete(ctx, c.ID); !errors.Is(err, ledger.ErrHasLinkedAccounts) {
		t.Fatalf("expected ErrHasLinkedAccounts, got %v", err)
	}
	if err := s.Customers().Delete(ctx, 999); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	lonely := seedCustomer(t, s, "grace@example.com", "300")
	if err := s.Customers().Delete(ctx, lonely.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Customers().FindByID(ctx, lonely.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected deleted customer to be gone, got %v", err)
	}
}

func TestMemoryStoreWithTxRollsBackOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := seedCustomer(t, s, "ada@example.com", "100")
	acc := seedAccount(t, s, c.ID, "5300000001", "100")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Store) error {
		a, err := tx.Accounts().FindByNumberForUpdate(ctx, acc.AccountNumber)
		if err != nil {
			return err
		}
		a.Balance = decimal.Zero
		if err := tx.Accounts().Save(ctx, a); err != nil {
			return err
		}
		rec := ledger.NewWithdrawal(*a, decimal.NewFromInt(100), testTime)
		if err := tx.Transactions().Save(ctx, &rec); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := s.Accounts().FindByID(ctx, acc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s, want 100 after rollback", got.Balance)
	}
	txs, err := s.Transactions().FindByAccount(ctx, acc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected no transactions after rollback, got %d", len(txs))
	}
}

func TestMemoryStoreTransactionsAppendOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := seedCustomer(t, s, "ada@example.com", "100")
	src := seedAccount(t, s, c.ID, "5300000001", "10")
	dst := seedAccount(t, s, c.ID, "3300000002", "0")

	rec := ledger.NewTransfer(*src, *dst, decimal.NewFromInt(5), testTime)
	if err := s.Transactions().Save(ctx, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if err := s.Transactions().Save(ctx, &rec); !errors.Is(err, ledger.ErrInvalidOperation) {
		t.Fatalf("re-saving a record should fail, got %v", err)
	}

	for _, id := range []int64{src.ID, dst.ID} {
		txs, err := s.Transactions().FindByAccount(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if len(txs) != 1 || txs[0].ID != rec.ID {
			t.Fatalf("account %d: expected the transfer exactly once, got %+v", id, txs)
		}
	}

	// Mutating a returned record must not reach the store.
	got, err := s.Transactions().FindByID(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	*got.SourceAccountID = 999
	again, _ := s.Transactions().FindByID(ctx, rec.ID)
	if *again.SourceAccountID != src.ID {
		t.Fatal("stored record was mutated through a returned pointer")
	}
}

func TestMemoryStoreReadersNeverSeePartialUnits(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := seedCustomer(t, s, "ada@example.com", "100")
	a := seedAccount(t, s, c.ID, "5300000001", "100")
	b := seedAccount(t, s, c.ID, "3300000002", "100")

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.WithTx(ctx, func(tx Store) error {
				x, _ := tx.Accounts().FindByIDForUpdate(ctx, a.ID)
				y, _ := tx.Accounts().FindByIDForUpdate(ctx, b.ID)
				x.Balance = x.Balance.Sub(decimal.NewFromInt(1))
				y.Balance = y.Balance.Add(decimal.NewFromInt(1))
				if err := tx.Accounts().Save(ctx, x); err != nil {
					return err
				}
				return tx.Accounts().Save(ctx, y)
			})
		}
		close(stop)
	}()

	want := decimal.NewFromInt(200)
	for done := false; !done; {
		select {
		case <-stop:
			done = true
		default:
		}
		var total decimal.Decimal
		_ = s.WithTx(ctx, func(tx Store) error {
			x, _ := tx.Accounts().FindByID(ctx, a.ID)
			y, _ := tx.Accounts().FindByID(ctx, b.ID)
			total = x.Balance.Add(y.Balance)
			return nil
		})
		if !total.Equal(want) {
			t.Fatalf("observed total %s, want %s", total, want)
		}
	}
	wg.Wait()
}
