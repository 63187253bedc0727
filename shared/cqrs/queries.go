package cqrs

// ---------- Customer queries ----------

type GetCustomerQuery struct {
	CustomerID int64
}

type ListCustomersQuery struct{}

// ---------- Account queries ----------

type GetAccountQuery struct {
	AccountID int64
}

type GetAccountByNumberQuery struct {
	AccountNumber string
}

// ListAccountsQuery fetches every account, in any status, owned by a customer.
type ListAccountsQuery struct {
	CustomerID int64
}

// ---------- Transaction queries ----------

type GetTransactionQuery struct {
	TransactionID int64
}

// ListTransactionsQuery fetches every transaction where the account is the
// source or the destination.
type ListTransactionsQuery struct {
	AccountNumber string
}

// StatementQuery renders an account's transaction log. Format is "pdf" or "xlsx".
type StatementQuery struct {
	AccountNumber string
	Format        string
}
