package command

import (
	"context"
	"errors"
	"testing"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/models"
)

func validCreate(email, identification string) cqrs.CreateCustomerCommand {
	return cqrs.CreateCustomerCommand{
		IdentificationType:   "CC",
		IdentificationNumber: identification,
		FirstName:            "Grace",
		LastName:             "Hopper",
		Email:                email,
		BirthDate:            yearsAgo(30),
	}
}

func TestCreateCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.customers.CreateCustomer(ctx, validCreate("grace@example.com", "200")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		mutate  func(*cqrs.CreateCustomerCommand)
		wantErr error
	}{
		{"exactly eighteen today", func(c *cqrs.CreateCustomerCommand) { c.BirthDate = yearsAgo(18) }, nil},
		{"seventeen", func(c *cqrs.CreateCustomerCommand) { c.BirthDate = yearsAgo(17) }, ledger.ErrUnderageCustomer},
		{"eighteen tomorrow", func(c *cqrs.CreateCustomerCommand) { c.BirthDate = yearsAgo(18).AddDate(0, 0, 1) }, ledger.ErrUnderageCustomer},
		{"email taken", func(c *cqrs.CreateCustomerCommand) { c.Email = "grace@example.com" }, ledger.ErrEmailTaken},
		{"identification used", func(c *cqrs.CreateCustomerCommand) { c.IdentificationNumber = "200" }, ledger.ErrIdentificationUsed},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCreate("new"+string(rune('a'+i))+"@example.com", "30"+string(rune('0'+i)))
			tt.mutate(&cmd)
			view, err := f.customers.CreateCustomer(ctx, cmd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if view.ID == 0 || view.BirthDate != cmd.BirthDate.Format(models.DateLayout) {
				t.Fatalf("unexpected view: %+v", view)
			}
		})
	}
}

func TestUpdateCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	grace := f.customer(t, "grace@example.com", "200")
	alan := f.customer(t, "alan@example.com", "300")
	acc := f.account(t, grace.ID, models.AccountTypeSavings)

	update := func(mutate func(*cqrs.UpdateCustomerCommand)) (*models.CustomerView, error) {
		cmd := cqrs.UpdateCustomerCommand{
			CustomerID:           grace.ID,
			IdentificationType:   "PP",
			IdentificationNumber: "200",
			FirstName:            "Grace B.",
			LastName:             "Hopper",
			Email:                "grace@example.com",
			BirthDate:            yearsAgo(40),
		}
		mutate(&cmd)
		return f.customers.UpdateCustomer(ctx, cmd)
	}

	if _, err := update(func(c *cqrs.UpdateCustomerCommand) { c.CustomerID = 999 }); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := update(func(c *cqrs.UpdateCustomerCommand) { c.BirthDate = yearsAgo(10) }); !errors.Is(err, ledger.ErrUnderageCustomer) {
		t.Fatalf("expected ErrUnderageCustomer, got %v", err)
	}
	if _, err := update(func(c *cqrs.UpdateCustomerCommand) { c.Email = alan.Email }); !errors.Is(err, ledger.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := update(func(c *cqrs.UpdateCustomerCommand) { c.IdentificationNumber = alan.IdentificationNumber }); !errors.Is(err, ledger.ErrDuplicateIdentity) {
		t.Fatalf("expected duplicate identity, got %v", err)
	}

	stored, _ := f.store.Customers().FindByID(ctx, grace.ID)
	if stored.FirstName != "Ada" {
		t.Fatalf("rejected updates must leave the customer untouched, first name = %q", stored.FirstName)
	}

	view, err := update(func(*cqrs.UpdateCustomerCommand) {})
	if err != nil {
		t.Fatal(err)
	}
	if view.FirstName != "Grace B." || view.IdentificationType != "PP" || view.AccountCount != 1 {
		t.Fatalf("unexpected view after update: %+v", view)
	}
	found := false
	for _, n := range f.cache.accountInvalidated {
		if n == acc.AccountNumber {
			found = true
		}
	}
	if !found {
		t.Fatal("owned account views must be invalidated when the owner's name changes")
	}
}

func TestDeleteCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.customer(t, "ada@example.com", "100")
	acc := f.account(t, owner.ID, models.AccountTypeSavings)

	if err := f.customers.DeleteCustomer(ctx, cqrs.DeleteCustomerCommand{CustomerID: 999}); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Cancelled accounts still count as linked.
	if err := f.accounts.CancelAccount(ctx, cqrs.CancelAccountCommand{AccountID: acc.ID}); err != nil {
		t.Fatal(err)
	}
	if err := f.customers.DeleteCustomer(ctx, cqrs.DeleteCustomerCommand{CustomerID: owner.ID}); !errors.Is(err, ledger.ErrHasLinkedAccounts) {
		t.Fatalf("expected ErrHasLinkedAccounts, got %v", err)
	}

	lonely := f.customer(t, "grace@example.com", "200")
	if err := f.customers.DeleteCustomer(ctx, cqrs.DeleteCustomerCommand{CustomerID: lonely.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.Customers().FindByID(ctx, lonely.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected customer to be gone, got %v", err)
	}
	if f.publisher.count(events.CustomerDeleted) != 1 {
		t.Fatal("expected one customer.deleted event")
	}
}

func TestHandleAccountEventInvalidatesOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		event events.Event
		want  []int64
	}{
		{"account created", events.NewEvent(events.AccountCreated, events.AccountCreatedEvent{CustomerID: 4}), []int64{4}},
		{"status changed", events.NewEvent(events.AccountStatusChanged, events.AccountStatusChangedEvent{CustomerID: 5}), []int64{5}},
		{"unrelated", events.NewEvent(events.BalanceUpdated, events.BalanceUpdatedEvent{}), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.cache.customerInvalidated = nil
			if err := f.customers.HandleAccountEvent(ctx, tt.event); err != nil {
				t.Fatal(err)
			}
			if len(f.cache.customerInvalidated) != len(tt.want) {
				t.Fatalf("invalidated %v, want %v", f.cache.customerInvalidated, tt.want)
			}
			for i := range tt.want {
				if f.cache.customerInvalidated[i] != tt.want[i] {
					t.Fatalf("invalidated %v, want %v", f.cache.customerInvalidated, tt.want)
				}
			}
		})
	}
}
