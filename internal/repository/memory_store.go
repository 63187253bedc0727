package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/models"
)

// MemoryStore keeps everything in process. A unit of work holds the write
// lock for its whole duration and mutates a private copy of the state that
// replaces the committed state only when the unit succeeds. Plain reads take
// the read lock, so they never observe a partial unit.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

type memState struct {
	customers    map[int64]models.Customer
	accounts     map[int64]models.Account
	transactions map[int64]models.Transaction

	lastCustomerID    int64
	lastAccountID     int64
	lastTransactionID int64
}

func newMemState() *memState {
	return &memState{
		customers:    map[int64]models.Customer{},
		accounts:     map[int64]models.Account{},
		transactions: map[int64]models.Transaction{},
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		customers:         make(map[int64]models.Customer, len(s.customers)),
		accounts:          make(map[int64]models.Account, len(s.accounts)),
		transactions:      make(map[int64]models.Transaction, len(s.transactions)),
		lastCustomerID:    s.lastCustomerID,
		lastAccountID:     s.lastAccountID,
		lastTransactionID: s.lastTransactionID,
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	return c
}

// commit runs fn on a copy of the state and installs the copy if fn succeeds.
func (m *MemoryStore) commit(fn func(*memState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := m.state.clone()
	if err := fn(staged); err != nil {
		return err
	}
	m.state = staged
	return nil
}

func (m *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.commit(func(staged *memState) error {
		return fn(&memTx{scope: memScope{staged: staged}})
	})
}

func (m *MemoryStore) Customers() CustomerRepository {
	return &memCustomerRepository{scope: memScope{store: m}}
}

func (m *MemoryStore) Accounts() AccountRepository {
	return &memAccountRepository{scope: memScope{store: m}}
}

func (m *MemoryStore) Transactions() TransactionRepository {
	return &memTransactionRepository{scope: memScope{store: m}}
}

// memTx is the Store handed to a unit of work.
type memTx struct {
	scope memScope
}

func (t *memTx) Customers() CustomerRepository {
	return &memCustomerRepository{scope: t.scope}
}

func (t *memTx) Accounts() AccountRepository {
	return &memAccountRepository{scope: t.scope}
}

func (t *memTx) Transactions() TransactionRepository {
	return &memTransactionRepository{scope: t.scope}
}

func (t *memTx) WithTx(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

// memScope routes repository calls either to a unit's staged state or, outside
// a unit, to the committed state under the store's locks.
type memScope struct {
	store  *MemoryStore
	staged *memState
}

func (s memScope) read(fn func(*memState) error) error {
	if s.staged != nil {
		return fn(s.staged)
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return fn(s.store.state)
}

func (s memScope) write(fn func(*memState) error) error {
	if s.staged != nil {
		return fn(s.staged)
	}
	return s.store.commit(fn)
}

// ---------- customers ----------

type memCustomerRepository struct {
	scope memScope
}

func (r *memCustomerRepository) Save(_ context.Context, c *models.Customer) error {
	return r.scope.write(func(st *memState) error {
		for _, other := range st.customers {
			if other.ID == c.ID {
				continue
			}
			if other.Email == c.Email {
				return ledger.ErrEmailTaken
			}
			if other.IdentificationNumber == c.IdentificationNumber {
				return ledger.ErrIdentificationUsed
			}
		}
		if c.ID == 0 {
			st.lastCustomerID++
			c.ID = st.lastCustomerID
		} else if _, ok := st.customers[c.ID]; !ok {
			return fmt.Errorf("customer %d: %w", c.ID, ledger.ErrNotFound)
		}
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *memCustomerRepository) FindByID(_ context.Context, id int64) (*models.Customer, error) {
	var found *models.Customer
	err := r.scope.read(func(st *memState) error {
		c, ok := st.customers[id]
		if !ok {
			return fmt.Errorf("customer %d: %w", id, ledger.ErrNotFound)
		}
		found = &c
		return nil
	})
	return found, err
}

func (r *memCustomerRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r *memCustomerRepository) findFirst(what string, match func(models.Customer) bool) (*models.Customer, error) {
	var found *models.Customer
	err := r.scope.read(func(st *memState) error {
		for _, c := range st.customers {
			if match(c) {
				found = &c
				return nil
			}
		}
		return fmt.Errorf("%s: %w", what, ledger.ErrNotFound)
	})
	return found, err
}

func (r *memCustomerRepository) FindByEmail(_ context.Context, email string) (*models.Customer, error) {
	return r.findFirst("customer with email "+email, func(c models.Customer) bool { return c.Email == email })
}

func (r *memCustomerRepository) FindByIdentificationNumber(_ context.Context, number string) (*models.Customer, error) {
	return r.findFirst("customer with identification "+number, func(c models.Customer) bool {
		return c.IdentificationNumber == number
	})
}

func (r *memCustomerRepository) FindAll(context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	err := r.scope.read(func(st *memState) error {
		for _, c := range st.customers {
			customers = append(customers, c)
		}
		return nil
	})
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, err
}

func (r *memCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if ledger.Kind(err) == ledger.ErrNotFound {
		return false, nil
	}
	return false, err
}

func (r *memCustomerRepository) HasAnyAccount(_ context.Context, id int64) (bool, error) {
	var has bool
	err := r.scope.read(func(st *memState) error {
		has = st.hasAccounts(id)
		return nil
	})
	return has, err
}

func (r *memCustomerRepository) Delete(_ context.Context, id int64) error {
	return r.scope.write(func(st *memState) error {
		if _, ok := st.customers[id]; !ok {
			return fmt.Errorf("customer %d: %w", id, ledger.ErrNotFound)
		}
		if st.hasAccounts(id) {
			return fmt.Errorf("customer %d: %w", id, ledger.ErrHasLinkedAccounts)
		}
		delete(st.customers, id)
		return nil
	})
}

func (s *memState) hasAccounts(customerID int64) bool {
	for _, a := range s.accounts {
		if a.CustomerID == customerID {
			return true
		}
	}
	return false
}

// ---------- accounts ----------

type memAccountRepository struct {
	scope memScope
}

func (r *memAccountRepository) Save(_ context.Context, a *models.Account) error {
	return r.scope.write(func(st *memState) error {
		if a.ID == 0 {
			if _, ok := st.customers[a.CustomerID]; !ok {
				return fmt.Errorf("customer %d: %w", a.CustomerID, ledger.ErrNotFound)
			}
			for _, other := range st.accounts {
				if other.AccountNumber == a.AccountNumber {
					return ledger.ErrAccountNumberTaken
				}
			}
			st.lastAccountID++
			a.ID = st.lastAccountID
			st.accounts[a.ID] = *a
			return nil
		}
		stored, ok := st.accounts[a.ID]
		if !ok {
			return fmt.Errorf("account %s: %w", a.AccountNumber, ledger.ErrNotFound)
		}
		stored.Status = a.Status
		stored.Balance = a.Balance
		stored.GMFExempt = a.GMFExempt
		stored.UpdatedAt = a.UpdatedAt
		st.accounts[a.ID] = stored
		return nil
	})
}

func (r *memAccountRepository) FindByID(_ context.Context, id int64) (*models.Account, error) {
	var found *models.Account
	err := r.scope.read(func(st *memState) error {
		a, ok := st.accounts[id]
		if !ok {
			return fmt.Errorf("account %d: %w", id, ledger.ErrNotFound)
		}
		found = &a
		return nil
	})
	return found, err
}

func (r *memAccountRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	return r.FindByID(ctx, id)
}

func (r *memAccountRepository) FindByNumber(_ context.Context, number string) (*models.Account, error) {
	var found *models.Account
	err := r.scope.read(func(st *memState) error {
		for _, a := range st.accounts {
			if a.AccountNumber == number {
				found = &a
				return nil
			}
		}
		return fmt.Errorf("account %s: %w", number, ledger.ErrNotFound)
	})
	return found, err
}

func (r *memAccountRepository) FindByNumberForUpdate(ctx context.Context, number string) (*models.Account, error) {
	return r.FindByNumber(ctx, number)
}

func (r *memAccountRepository) FindByCustomer(_ context.Context, customerID int64) ([]models.Account, error) {
	accounts := []models.Account{}
	err := r.scope.read(func(st *memState) error {
		for _, a := range st.accounts {
			if a.CustomerID == customerID {
				accounts = append(accounts, a)
			}
		}
		return nil
	})
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, err
}

// ---------- transactions ----------

type memTransactionRepository struct {
	scope memScope
}

func (r *memTransactionRepository) Save(_ context.Context, t *models.Transaction) error {
	if t.ID != 0 {
		return fmt.Errorf("transaction %d already recorded: %w", t.ID, ledger.ErrInvalidOperation)
	}
	return r.scope.write(func(st *memState) error {
		for _, ref := range []*int64{t.SourceAccountID, t.DestinationAccountID} {
			if ref == nil {
				continue
			}
			if _, ok := st.accounts[*ref]; !ok {
				return fmt.Errorf("account %d: %w", *ref, ledger.ErrNotFound)
			}
		}
		st.lastTransactionID++
		t.ID = st.lastTransactionID
		st.transactions[t.ID] = copyTransaction(*t)
		return nil
	})
}

func (r *memTransactionRepository) FindByID(_ context.Context, id int64) (*models.Transaction, error) {
	var found *models.Transaction
	err := r.scope.read(func(st *memState) error {
		t, ok := st.transactions[id]
		if !ok {
			return fmt.Errorf("transaction %d: %w", id, ledger.ErrNotFound)
		}
		t = copyTransaction(t)
		found = &t
		return nil
	})
	return found, err
}

func (r *memTransactionRepository) FindByAccount(_ context.Context, accountID int64) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := r.scope.read(func(st *memState) error {
		for _, t := range st.transactions {
			if refersTo(t.SourceAccountID, accountID) || refersTo(t.DestinationAccountID, accountID) {
				transactions = append(transactions, copyTransaction(t))
			}
		}
		return nil
	})
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID < transactions[j].ID })
	return transactions, err
}

func refersTo(ref *int64, id int64) bool {
	return ref != nil && *ref == id
}

// copyTransaction detaches the account id pointers from the caller's record.
func copyTransaction(t models.Transaction) models.Transaction {
	if t.SourceAccountID != nil {
		id := *t.SourceAccountID
		t.SourceAccountID = &id
	}
	if t.DestinationAccountID != nil {
		id := *t.DestinationAccountID
		t.DestinationAccountID = &id
	}
	return t
}
