package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/models"
	sharedredis "github.com/eaglebank/ledger/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

const (
	customerViewKeyPrefix    = "customer:view:"
	accountViewKeyPrefix     = "account:view:"
	transactionViewKeyPrefix = "transaction:view:"
)

func accountIDKey(id int64) string { return accountViewKeyPrefix + "id:" + strconv.FormatInt(id, 10) }

func accountNumberKey(number string) string { return accountViewKeyPrefix + "number:" + number }

// CustomerReadRepository serves customer views. Redis is tried first and the
// store is the fallback; every cold read warms the cache.
type CustomerReadRepository struct {
	store Store
	cache sharedredis.Cache[models.CustomerView]
}

// NewCustomerReadRepository caches views for ttl. A nil redis client disables
// caching.
func NewCustomerReadRepository(store Store, redisClient *goredis.Client, ttl time.Duration) *CustomerReadRepository {
	return &CustomerReadRepository{
		store: store,
		cache: sharedredis.NewCache[models.CustomerView](redisClient, ttl),
	}
}

func (r *CustomerReadRepository) GetByID(ctx context.Context, id int64) (*models.CustomerView, error) {
	key := customerViewKeyPrefix + strconv.FormatInt(id, 10)
	if view, ok := r.cache.Get(ctx, key); ok {
		return view, nil
	}

	customer, err := r.store.Customers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	accounts, err := r.store.Accounts().FindByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	view := models.CustomerToView(customer, len(accounts))
	r.cache.Set(ctx, key, view)
	return view, nil
}

// ListAll always reads the store.
func (r *CustomerReadRepository) ListAll(ctx context.Context) ([]models.CustomerView, error) {
	customers, err := r.store.Customers().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.CustomerView, 0, len(customers))
	for i := range customers {
		accounts, err := r.store.Accounts().FindByCustomer(ctx, customers[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, *models.CustomerToView(&customers[i], len(accounts)))
	}
	return views, nil
}

func (r *CustomerReadRepository) InvalidateCustomerView(ctx context.Context, id int64) {
	r.cache.Delete(ctx, customerViewKeyPrefix+strconv.FormatInt(id, 10))
}

// AccountReadRepository serves account views. Balances move on every
// transaction, so entries are short-lived and dropped after each commit that
// touches the account.
type AccountReadRepository struct {
	store Store
	cache sharedredis.Cache[models.AccountView]
}

func NewAccountReadRepository(store Store, redisClient *goredis.Client, ttl time.Duration) *AccountReadRepository {
	return &AccountReadRepository{
		store: store,
		cache: sharedredis.NewCache[models.AccountView](redisClient, ttl),
	}
}

func (r *AccountReadRepository) toView(ctx context.Context, a *models.Account) (*models.AccountView, error) {
	owner, err := r.store.Customers().FindByID(ctx, a.CustomerID)
	if err != nil {
		return nil, err
	}
	return models.AccountToView(a, owner.FullName()), nil
}

func (r *AccountReadRepository) cached(ctx context.Context, key string, load func() (*models.Account, error)) (*models.AccountView, error) {
	if view, ok := r.cache.Get(ctx, key); ok {
		return view, nil
	}
	account, err := load()
	if err != nil {
		return nil, err
	}
	view, err := r.toView(ctx, account)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, view)
	return view, nil
}

func (r *AccountReadRepository) GetByID(ctx context.Context, id int64) (*models.AccountView, error) {
	return r.cached(ctx, accountIDKey(id), func() (*models.Account, error) {
		return r.store.Accounts().FindByID(ctx, id)
	})
}

func (r *AccountReadRepository) GetByAccountNumber(ctx context.Context, number string) (*models.AccountView, error) {
	return r.cached(ctx, accountNumberKey(number), func() (*models.Account, error) {
		return r.store.Accounts().FindByNumber(ctx, number)
	})
}

// ListByCustomer returns every account of the customer in any status. An
// unknown customer is ErrNotFound rather than an empty list.
func (r *AccountReadRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.AccountView, error) {
	owner, err := r.store.Customers().FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	accounts, err := r.store.Accounts().FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	views := make([]models.AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, *models.AccountToView(&accounts[i], owner.FullName()))
	}
	return views, nil
}

func (r *AccountReadRepository) InvalidateAccountView(ctx context.Context, id int64, number string) {
	r.cache.Delete(ctx, accountIDKey(id), accountNumberKey(number))
}

// TransactionReadRepository serves transaction views. Records never change,
// so single-transaction entries do not expire.
type TransactionReadRepository struct {
	store Store
	cache sharedredis.Cache[models.TransactionView]
}

func NewTransactionReadRepository(store Store, redisClient *goredis.Client) *TransactionReadRepository {
	return &TransactionReadRepository{
		store: store,
		cache: sharedredis.NewCache[models.TransactionView](redisClient, 0),
	}
}

func transactionKey(id int64) string {
	return transactionViewKeyPrefix + strconv.FormatInt(id, 10)
}

func (r *TransactionReadRepository) GetByID(ctx context.Context, id int64) (*models.TransactionView, error) {
	if view, ok := r.cache.Get(ctx, transactionKey(id)); ok {
		return view, nil
	}
	t, err := r.store.Transactions().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := models.TransactionToView(t)
	r.cache.Set(ctx, transactionKey(id), view)
	return view, nil
}

// ListByAccountNumber returns the account's transactions oldest first. An
// unknown account yields an empty list.
func (r *TransactionReadRepository) ListByAccountNumber(ctx context.Context, number string) ([]models.TransactionView, error) {
	account, err := r.store.Accounts().FindByNumber(ctx, number)
	if ledger.Kind(err) == ledger.ErrNotFound {
		return []models.TransactionView{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account %s: %w", number, err)
	}
	transactions, err := r.store.Transactions().FindByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	views := make([]models.TransactionView, 0, len(transactions))
	for i := range transactions {
		views = append(views, *models.TransactionToView(&transactions[i]))
	}
	return views, nil
}

// AccountLog reads an account and its full log in one unit with the account
// row locked, so the balance agrees with the records. It bypasses the cache.
// An unknown account is ErrNotFound.
func (r *TransactionReadRepository) AccountLog(ctx context.Context, number string) (*models.AccountView, []models.TransactionView, error) {
	var (
		account *models.AccountView
		views   []models.TransactionView
	)
	err := r.store.WithTx(ctx, func(tx Store) error {
		a, err := tx.Accounts().FindByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		owner, err := tx.Customers().FindByID(ctx, a.CustomerID)
		if err != nil {
			return err
		}
		transactions, err := tx.Transactions().FindByAccount(ctx, a.ID)
		if err != nil {
			return err
		}
		account = models.AccountToView(a, owner.FullName())
		views = make([]models.TransactionView, 0, len(transactions))
		for i := range transactions {
			views = append(views, *models.TransactionToView(&transactions[i]))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return account, views, nil
}

// CacheTransactionView stores the read model for a freshly committed record.
func (r *TransactionReadRepository) CacheTransactionView(ctx context.Context, view *models.TransactionView) {
	r.cache.Set(ctx, transactionKey(view.ID), view)
}
