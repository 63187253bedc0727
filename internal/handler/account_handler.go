package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.AccountView, error)
	ChangeStatus(context.Context, cqrs.ChangeAccountStatusCommand) (*models.AccountView, error)
	CancelAccount(context.Context, cqrs.CancelAccountCommand) error
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
	GetAccountByNumber(context.Context, cqrs.GetAccountByNumberQuery) (*models.AccountView, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type CreateAccountRequest struct {
	AccountType string `json:"accountType" validate:"required,oneof=SAVINGS CHECKING"`
	GMFExempt   bool   `json:"gmfExempt"`
}

type ListAccountsResponse struct {
	Accounts []models.AccountView `json:"accounts"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	customerID, ok := pathID(c, "customerId")
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		CustomerID:  customerID,
		AccountType: req.AccountType,
		GMFExempt:   req.GMFExempt,
	})
	if err != nil {
		respondWithDomainError(c, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	customerID, ok := pathID(c, "customerId")
	if !ok {
		return
	}

	views, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{CustomerID: customerID})
	if err != nil {
		respondWithDomainError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: views})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := pathID(c, "accountId")
	if !ok {
		return
	}

	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: id})
	if err != nil {
		respondWithDomainError(c, err, "Failed to fetch account")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) GetAccountByNumber(c *gin.Context) {
	view, err := h.queries.GetAccountByNumber(c.Request.Context(), cqrs.GetAccountByNumberQuery{
		AccountNumber: c.Param("accountNumber"),
	})
	if err != nil {
		respondWithDomainError(c, err, "Failed to fetch account")
		return
	}
	c.JSON(http.StatusOK, view)
}

// ChangeStatus takes the target status from the status query parameter.
func (h *AccountHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "accountId")
	if !ok {
		return
	}
	status := c.Query("status")
	if status == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_argument", "status query parameter is required")
		return
	}

	view, err := h.commands.ChangeStatus(c.Request.Context(), cqrs.ChangeAccountStatusCommand{
		AccountID: id,
		Status:    status,
	})
	if err != nil {
		respondWithDomainError(c, err, "Failed to change account status")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) CancelAccount(c *gin.Context) {
	id, ok := pathID(c, "accountId")
	if !ok {
		return
	}

	if err := h.commands.CancelAccount(c.Request.Context(), cqrs.CancelAccountCommand{AccountID: id}); err != nil {
		respondWithDomainError(c, err, "Failed to cancel account")
		return
	}
	c.Status(http.StatusNoContent)
}
