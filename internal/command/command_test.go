package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
)

// ---- fakes ----

type recordingCache struct {
	mu                  sync.Mutex
	customerInvalidated []int64
	accountInvalidated  []string
	cachedTransactions  []int64
}

func (c *recordingCache) InvalidateCustomerView(_ context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customerInvalidated = append(c.customerInvalidated, id)
}

func (c *recordingCache) InvalidateAccountView(_ context.Context, _ int64, number string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountInvalidated = append(c.accountInvalidated, number)
}

func (c *recordingCache) CacheTransactionView(_ context.Context, view *models.TransactionView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cachedTransactions = append(c.cachedTransactions, view.ID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	types  []string
	failed bool
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
	if p.failed {
		return errors.New("redis unavailable")
	}
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.types {
		if t == eventType {
			n++
		}
	}
	return n
}

// ---- fixture ----

type fixture struct {
	store        *repository.MemoryStore
	cache        *recordingCache
	publisher    *recordingPublisher
	customers    *CustomerCommandService
	accounts     *AccountCommandService
	transactions *TransactionCommandService
}

func newFixture() *fixture {
	store := repository.NewMemoryStore()
	cache := &recordingCache{}
	pub := &recordingPublisher{}
	return &fixture{
		store:        store,
		cache:        cache,
		publisher:    pub,
		customers:    NewCustomerCommandService(store, cache, cache, pub),
		accounts:     NewAccountCommandService(store, cache, cache, pub),
		transactions: NewTransactionCommandService(store, cache, cache, pub),
	}
}

func yearsAgo(years int) time.Time {
	y, m, d := time.Now().UTC().AddDate(-years, 0, 0).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) customer(t *testing.T, email, identification string) *models.CustomerView {
	t.Helper()
	c, err := f.customers.CreateCustomer(context.Background(), cqrs.CreateCustomerCommand{
		IdentificationType:   "CC",
		IdentificationNumber: identification,
		FirstName:            "Ada",
		LastName:             "Lovelace",
		Email:                email,
		BirthDate:            yearsAgo(25),
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func (f *fixture) account(t *testing.T, customerID int64, accountType models.AccountType) *models.AccountView {
	t.Helper()
	a, err := f.accounts.CreateAccount(context.Background(), cqrs.CreateAccountCommand{
		CustomerID:  customerID,
		AccountType: string(accountType),
	})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func (f *fixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()
	a, err := f.store.Accounts().FindByNumber(context.Background(), number)
	if err != nil {
		t.Fatal(err)
	}
	return a.Balance
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
