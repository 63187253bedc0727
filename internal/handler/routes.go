package handler

import "github.com/gin-gonic/gin"

// Routes groups the handlers served under /v1.
type Routes struct {
	Auth         *AuthHandler
	Customers    *CustomerHandler
	Accounts     *AccountHandler
	Transactions *TransactionHandler
}

// Register mounts every /v1 route on r. All routes except /v1/auth sit
// behind auth.
func (rt *Routes) Register(r gin.IRouter, auth gin.HandlerFunc) {
	a := r.Group("/v1/auth")
	{
		a.POST("/login", rt.Auth.Login)
		a.POST("/refresh", rt.Auth.RefreshToken)
	}

	v1 := r.Group("/v1", auth)

	customers := v1.Group("/customers")
	{
		customers.POST("", rt.Customers.CreateCustomer)
		customers.GET("", rt.Customers.ListCustomers)
		customers.GET("/:customerId", rt.Customers.GetCustomer)
		customers.PUT("/:customerId", rt.Customers.UpdateCustomer)
		customers.DELETE("/:customerId", rt.Customers.DeleteCustomer)
		customers.POST("/:customerId/accounts", rt.Accounts.CreateAccount)
		customers.GET("/:customerId/accounts", rt.Accounts.ListAccounts)
	}

	accounts := v1.Group("/accounts")
	{
		accounts.GET("/:accountId", rt.Accounts.GetAccount)
		accounts.PATCH("/:accountId/status", rt.Accounts.ChangeStatus)
		accounts.DELETE("/:accountId", rt.Accounts.CancelAccount)
		accounts.GET("/number/:accountNumber", rt.Accounts.GetAccountByNumber)
		accounts.GET("/number/:accountNumber/transactions", rt.Transactions.ListTransactions)
		accounts.GET("/number/:accountNumber/statement", rt.Transactions.Statement)
	}

	transactions := v1.Group("/transactions")
	{
		transactions.POST("", rt.Transactions.CreateTransaction)
		transactions.GET("/:transactionId", rt.Transactions.GetTransaction)
	}
}
